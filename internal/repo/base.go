package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is the shared foundation the domain repositories embed. It owns the
// GORM connection and hands out context-bound handles so repositories never
// touch the raw connection directly.
type Base struct {
	db *gorm.DB
}

// NewBase wraps a GORM connection for embedding in a repository.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Transaction runs fn inside a database transaction bound to ctx. The
// transaction commits when fn returns nil and rolls back otherwise.
func (b Base) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return b.DB(ctx).Transaction(fn)
}
