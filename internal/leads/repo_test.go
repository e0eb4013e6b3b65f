package leads

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leadflowhq/leadflow-backend/pkg/db/models"
	dbtypes "github.com/leadflowhq/leadflow-backend/pkg/db/types"
	"github.com/leadflowhq/leadflow-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLeadsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  created_at DATETIME
);`
	buyers := `
CREATE TABLE IF NOT EXISTS buyers (
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL,
  email TEXT,
  phone TEXT NOT NULL,
  city TEXT NOT NULL,
  property_type TEXT NOT NULL,
  bhk TEXT,
  purpose TEXT NOT NULL,
  budget_min INTEGER,
  budget_max INTEGER,
  timeline TEXT NOT NULL,
  source TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'New',
  notes TEXT,
  tags TEXT,
  owner_id TEXT NOT NULL,
  updated_at DATETIME,
  created_at DATETIME
);`
	buyerHistory := `
CREATE TABLE IF NOT EXISTS buyer_history (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  changed_by TEXT NOT NULL,
  changed_at DATETIME,
  diff TEXT NOT NULL
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(buyers).Error)
	require.NoError(t, db.Exec(buyerHistory).Error)
	return db
}

var phoneSeq atomic.Int64

func newBuyer(t *testing.T, db *gorm.DB, ownerID string, mutate func(*models.Buyer)) *models.Buyer {
	t.Helper()

	buyer := &models.Buyer{
		ID:           uuid.NewString(),
		FullName:     "Asha Verma",
		Phone:        fmt.Sprintf("98%08d", phoneSeq.Add(1)),
		City:         enums.CityChandigarh,
		PropertyType: enums.PropertyTypePlot,
		Purpose:      enums.PurposeBuy,
		Timeline:     enums.TimelineZeroToThreeMonths,
		Source:       enums.SourceWebsite,
		Status:       enums.StatusNew,
		Tags:         dbtypes.StringList{},
		OwnerID:      ownerID,
	}
	if mutate != nil {
		mutate(buyer)
	}
	require.NoError(t, db.Create(buyer).Error)
	return buyer
}

func TestRepositoryFindByIDScopedToOwner(t *testing.T) {
	db := setupLeadsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	ownerID := uuid.NewString()
	buyer := newBuyer(t, db, ownerID, nil)

	found, err := repo.FindByID(ctx, ownerID, buyer.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, buyer.ID, found.ID)

	// Another owner's lookup behaves as absent.
	other, err := repo.FindByID(ctx, uuid.NewString(), buyer.ID)
	require.NoError(t, err)
	assert.Nil(t, other)

	missing, err := repo.FindByID(ctx, ownerID, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepositoryFindDuplicate(t *testing.T) {
	db := setupLeadsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	ownerID := uuid.NewString()
	email := "asha@example.com"
	stored := newBuyer(t, db, ownerID, func(b *models.Buyer) {
		b.Phone = "9876501234"
		b.Email = &email
	})

	byPhone, err := repo.FindDuplicate(ctx, ownerID, "9876501234", "other@example.com")
	require.NoError(t, err)
	require.NotNil(t, byPhone)
	assert.Equal(t, stored.ID, byPhone.ID)

	byEmail, err := repo.FindDuplicate(ctx, ownerID, "9000000001", "asha@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, stored.ID, byEmail.ID)

	// An empty candidate email never matches rows without email.
	clean, err := repo.FindDuplicate(ctx, ownerID, "9000000002", "")
	require.NoError(t, err)
	assert.Nil(t, clean)

	// Duplicates are per owner.
	crossOwner, err := repo.FindDuplicate(ctx, uuid.NewString(), "9876501234", "asha@example.com")
	require.NoError(t, err)
	assert.Nil(t, crossOwner)
}

func TestRepositoryUpdateAppliesColumns(t *testing.T) {
	db := setupLeadsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	ownerID := uuid.NewString()
	buyer := newBuyer(t, db, ownerID, nil)

	now := time.Now().UTC()
	updated, err := repo.Update(ctx, ownerID, buyer.ID, map[string]any{
		"status":     enums.StatusQualified.String(),
		"notes":      "called twice",
		"updated_at": now,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, enums.StatusQualified, updated.Status)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "called twice", *updated.Notes)
}

func TestRepositoryDeleteRemovesHistory(t *testing.T) {
	db := setupLeadsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	ownerID := uuid.NewString()
	buyer := newBuyer(t, db, ownerID, nil)
	require.NoError(t, db.Create(&models.BuyerHistory{
		ID:        uuid.NewString(),
		BuyerID:   buyer.ID,
		ChangedBy: ownerID,
		ChangedAt: time.Now().UTC(),
		Diff:      dbtypes.ChangeDiff{Action: dbtypes.DiffActionCreated},
	}).Error)

	deleted, err := repo.Delete(ctx, ownerID, buyer.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	var historyCount int64
	require.NoError(t, db.Model(&models.BuyerHistory{}).Where("buyer_id = ?", buyer.ID).Count(&historyCount).Error)
	assert.Zero(t, historyCount)

	// Deleting again reports nothing removed.
	deleted, err = repo.Delete(ctx, ownerID, buyer.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRepositorySearchFreeTextAndFilters(t *testing.T) {
	db := setupLeadsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	ownerID := uuid.NewString()
	newBuyer(t, db, ownerID, func(b *models.Buyer) {
		b.FullName = "Rohan Gupta"
		b.City = enums.CityMohali
		b.Status = enums.StatusQualified
	})
	newBuyer(t, db, ownerID, func(b *models.Buyer) {
		b.FullName = "Asha Verma"
		notes := "rohan referred her"
		b.Notes = &notes
	})
	newBuyer(t, db, ownerID, func(b *models.Buyer) {
		b.FullName = "Unrelated Lead"
	})
	// Another owner's rows stay invisible.
	newBuyer(t, db, uuid.NewString(), func(b *models.Buyer) {
		b.FullName = "Rohan Shadow"
	})

	filters, violations := ValidateSearchFilters(SearchFilterParams{Search: "ROHAN"})
	require.Empty(t, violations)

	buyers, total, err := repo.Search(ctx, ownerID, filters)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "matches name and notes, case-insensitive")
	assert.Len(t, buyers, 2)

	filters, violations = ValidateSearchFilters(SearchFilterParams{Search: "rohan", City: "Mohali"})
	require.Empty(t, violations)

	buyers, total, err = repo.Search(ctx, ownerID, filters)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, buyers, 1)
	assert.Equal(t, "Rohan Gupta", buyers[0].FullName)
}

func TestRepositorySearchPagination(t *testing.T) {
	db := setupLeadsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	ownerID := uuid.NewString()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		idx := i
		newBuyer(t, db, ownerID, func(b *models.Buyer) {
			b.FullName = fmt.Sprintf("Lead %02d", idx)
			b.UpdatedAt = base.Add(time.Duration(idx) * time.Minute)
			b.CreatedAt = b.UpdatedAt
		})
	}

	filters, violations := ValidateSearchFilters(SearchFilterParams{Page: "2", Limit: "10"})
	require.Empty(t, violations)

	buyers, total, err := repo.Search(ctx, ownerID, filters)
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	require.Len(t, buyers, 10)

	// Default sort is updated_at descending: page 2 starts at the 11th newest.
	assert.Equal(t, "Lead 14", buyers[0].FullName)
	assert.Equal(t, "Lead 05", buyers[9].FullName)
}

func TestRepositoryExportAllIgnoresPaging(t *testing.T) {
	db := setupLeadsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	ownerID := uuid.NewString()
	for i := 0; i < 15; i++ {
		idx := i
		newBuyer(t, db, ownerID, func(b *models.Buyer) {
			b.FullName = fmt.Sprintf("Export %02d", idx)
		})
	}

	filters, violations := ValidateSearchFilters(SearchFilterParams{SortBy: "fullName", SortOrder: "asc"})
	require.Empty(t, violations)

	buyers, err := repo.ExportAll(ctx, ownerID, filters)
	require.NoError(t, err)
	require.Len(t, buyers, 15)
	assert.Equal(t, "Export 00", buyers[0].FullName)
	assert.Equal(t, "Export 14", buyers[14].FullName)
}
