package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/leadflowhq/leadflow-backend/internal/repo"
	"github.com/leadflowhq/leadflow-backend/pkg/db/models"
	"gorm.io/gorm"
)

// DefaultRecentLimit is how many trail entries a detail view carries.
const DefaultRecentLimit = 5

// Repository exposes the append-only change trail. Entries are written and
// read, never edited; they disappear only when their buyer does.
type Repository struct {
	repo.Base
}

// NewRepository constructs a history repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Record appends one trail entry, filling in the id and timestamp when the
// caller left them zero.
func (r *Repository) Record(ctx context.Context, entry *models.BuyerHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now().UTC()
	}
	return r.DB(ctx).Create(entry).Error
}

// Recent returns the newest entries for a buyer, newest first. A
// non-positive limit falls back to DefaultRecentLimit.
func (r *Repository) Recent(ctx context.Context, buyerID string, limit int) ([]models.BuyerHistory, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	var entries []models.BuyerHistory
	err := r.DB(ctx).
		Where("buyer_id = ?", buyerID).
		Order("changed_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteForBuyer drops every entry of one buyer. Used inside the buyer
// delete transaction so storage engines without cascading foreign keys stay
// consistent.
func (r *Repository) DeleteForBuyer(ctx context.Context, buyerID string) error {
	return r.DB(ctx).
		Where("buyer_id = ?", buyerID).
		Delete(&models.BuyerHistory{}).Error
}
