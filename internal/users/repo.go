package users

import (
	"context"
	"errors"

	"github.com/leadflowhq/leadflow-backend/internal/repo"
	"github.com/leadflowhq/leadflow-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes user persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Ensure inserts the user if absent and returns the stored row either way.
// An existing row is never overwritten; startup calls this to seed the demo
// account idempotently.
func (r *Repository) Ensure(ctx context.Context, user models.User) (*models.User, error) {
	err := r.DB(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&user).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, user.ID)
}

// FindByID loads a user, returning nil when no row matches.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
