package leads

import (
	"context"
	"errors"
	"strings"

	"github.com/leadflowhq/leadflow-backend/internal/repo"
	"github.com/leadflowhq/leadflow-backend/pkg/db/models"
	"github.com/leadflowhq/leadflow-backend/pkg/pagination"
	"gorm.io/gorm"
)

// sortColumns maps the validated sort keys onto storage columns.
var sortColumns = map[SortKey]string{
	SortByUpdatedAt: "updated_at",
	SortByCreatedAt: "created_at",
	SortByFullName:  "full_name",
}

// Repository encapsulates buyer persistence. Every read and write is scoped
// to an owner; a record belonging to someone else behaves as absent.
type Repository struct {
	repo.Base
}

// NewRepository constructs a buyers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads an owner's buyer, returning nil when no row matches.
func (r *Repository) FindByID(ctx context.Context, ownerID, buyerID string) (*models.Buyer, error) {
	var buyer models.Buyer
	err := r.DB(ctx).
		Where("id = ? AND owner_id = ?", buyerID, ownerID).
		First(&buyer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &buyer, nil
}

// FindDuplicate looks for an existing record colliding with the candidate:
// same phone first, then same non-empty email, both within the owner's
// records. Returns nil when the candidate is clean.
func (r *Repository) FindDuplicate(ctx context.Context, ownerID, phone, email string) (*models.Buyer, error) {
	var buyer models.Buyer
	err := r.DB(ctx).
		Where("owner_id = ? AND phone = ?", ownerID, phone).
		First(&buyer).Error
	if err == nil {
		return &buyer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if email == "" {
		return nil, nil
	}
	err = r.DB(ctx).
		Where("owner_id = ? AND email = ?", ownerID, email).
		First(&buyer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &buyer, nil
}

// Create inserts a buyer.
func (r *Repository) Create(ctx context.Context, buyer *models.Buyer) error {
	return r.DB(ctx).Create(buyer).Error
}

// Update applies the changed columns to an owner's buyer and returns the
// reloaded row. The caller includes a fresh updated_at in the map.
func (r *Repository) Update(ctx context.Context, ownerID, buyerID string, columns map[string]any) (*models.Buyer, error) {
	err := r.DB(ctx).
		Model(&models.Buyer{}).
		Where("id = ? AND owner_id = ?", buyerID, ownerID).
		Updates(columns).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, ownerID, buyerID)
}

// Delete removes an owner's buyer together with its change trail, in one
// transaction. Reports whether a row was actually deleted.
func (r *Repository) Delete(ctx context.Context, ownerID, buyerID string) (bool, error) {
	deleted := false
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("buyer_id = ?", buyerID).Delete(&models.BuyerHistory{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND owner_id = ?", buyerID, ownerID).Delete(&models.Buyer{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// buildPredicate layers the search conditions onto a query: owner scope
// first, then the free-text LIKE across name/email/phone/notes, then the
// equality filters.
func buildPredicate(query *gorm.DB, ownerID string, filters SearchFilters) *gorm.DB {
	query = query.Where("owner_id = ?", ownerID)

	if filters.Search != "" {
		like := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where(
			"(LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(notes) LIKE ?)",
			like, like, like, like,
		)
	}
	if filters.City != nil {
		query = query.Where("city = ?", filters.City.String())
	}
	if filters.PropertyType != nil {
		query = query.Where("property_type = ?", filters.PropertyType.String())
	}
	if filters.Status != nil {
		query = query.Where("status = ?", filters.Status.String())
	}
	if filters.Timeline != nil {
		query = query.Where("timeline = ?", filters.Timeline.String())
	}
	return query
}

func orderClause(filters SearchFilters) string {
	column, ok := sortColumns[filters.SortBy]
	if !ok {
		column = "updated_at"
	}
	direction := "DESC"
	if filters.SortOrder == SortAsc {
		direction = "ASC"
	}
	return column + " " + direction
}

// Search returns one page of an owner's buyers plus the unpaged total.
func (r *Repository) Search(ctx context.Context, ownerID string, filters SearchFilters) ([]models.Buyer, int64, error) {
	var total int64
	countQuery := buildPredicate(r.DB(ctx).Model(&models.Buyer{}), ownerID, filters)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var buyers []models.Buyer
	dataQuery := buildPredicate(r.DB(ctx).Model(&models.Buyer{}), ownerID, filters).
		Order(orderClause(filters)).
		Offset(pagination.Offset(filters.Page, filters.Limit)).
		Limit(filters.Limit)
	if err := dataQuery.Find(&buyers).Error; err != nil {
		return nil, 0, err
	}
	return buyers, total, nil
}

// ExportAll returns the full filtered set in sort order, unpaged.
func (r *Repository) ExportAll(ctx context.Context, ownerID string, filters SearchFilters) ([]models.Buyer, error) {
	var buyers []models.Buyer
	err := buildPredicate(r.DB(ctx).Model(&models.Buyer{}), ownerID, filters).
		Order(orderClause(filters)).
		Find(&buyers).Error
	if err != nil {
		return nil, err
	}
	return buyers, nil
}
