package leads

import (
	"time"

	"github.com/leadflowhq/leadflow-backend/pkg/db/models"
	dbtypes "github.com/leadflowhq/leadflow-backend/pkg/db/types"
	"github.com/leadflowhq/leadflow-backend/pkg/enums"
)

// LeadPayload is the raw create payload as submitted at the boundary.
// Everything is loosely typed; ValidateLead turns it into a LeadInput or a
// full list of violations.
type LeadPayload struct {
	FullName     string   `json:"fullName"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	City         string   `json:"city"`
	PropertyType string   `json:"propertyType"`
	BHK          string   `json:"bhk"`
	Purpose      string   `json:"purpose"`
	BudgetMin    *int     `json:"budgetMin"`
	BudgetMax    *int     `json:"budgetMax"`
	Timeline     string   `json:"timeline"`
	Source       string   `json:"source"`
	Status       string   `json:"status"`
	Notes        string   `json:"notes"`
	Tags         []string `json:"tags"`
}

// CSVRowPayload is a lead candidate where every field is still text, as it
// arrives from a parsed CSV row.
type CSVRowPayload struct {
	FullName     string
	Email        string
	Phone        string
	City         string
	PropertyType string
	BHK          string
	Purpose      string
	BudgetMin    string
	BudgetMax    string
	Timeline     string
	Source       string
	Notes        string
	Tags         string
	Status       string
}

// LeadInput is a normalized, typed lead ready to persist.
type LeadInput struct {
	FullName     string
	Email        string
	Phone        string
	City         enums.City
	PropertyType enums.PropertyType
	BHK          *enums.BHK
	Purpose      enums.Purpose
	BudgetMin    *int
	BudgetMax    *int
	Timeline     enums.Timeline
	Source       enums.Source
	Status       enums.Status
	Notes        string
	Tags         []string
}

// FieldNames returns the names of the fields carried by the input, for the
// "created" history entry. Optional fields are listed only when set.
func (in LeadInput) FieldNames() []string {
	names := []string{"fullName", "phone", "city", "propertyType", "purpose", "timeline", "source", "status"}
	if in.Email != "" {
		names = append(names, "email")
	}
	if in.BHK != nil {
		names = append(names, "bhk")
	}
	if in.BudgetMin != nil {
		names = append(names, "budgetMin")
	}
	if in.BudgetMax != nil {
		names = append(names, "budgetMax")
	}
	if in.Notes != "" {
		names = append(names, "notes")
	}
	if len(in.Tags) > 0 {
		names = append(names, "tags")
	}
	return names
}

// LeadUpdatePayload is a partial update: nil means "field not submitted".
// UpdatedAt is the optimistic-concurrency watermark the client read before
// editing.
type LeadUpdatePayload struct {
	FullName     *string    `json:"fullName"`
	Email        *string    `json:"email"`
	Phone        *string    `json:"phone"`
	City         *string    `json:"city"`
	PropertyType *string    `json:"propertyType"`
	BHK          *string    `json:"bhk"`
	Purpose      *string    `json:"purpose"`
	BudgetMin    *int       `json:"budgetMin"`
	BudgetMax    *int       `json:"budgetMax"`
	Timeline     *string    `json:"timeline"`
	Source       *string    `json:"source"`
	Status       *string    `json:"status"`
	Notes        *string    `json:"notes"`
	Tags         *[]string  `json:"tags"`
	UpdatedAt    *time.Time `json:"updatedAt"`
}

// LeadUpdate is the validated, typed form of a partial update.
type LeadUpdate struct {
	FullName     *string
	Email        *string
	Phone        *string
	City         *enums.City
	PropertyType *enums.PropertyType
	BHK          *enums.BHK
	Purpose      *enums.Purpose
	BudgetMin    *int
	BudgetMax    *int
	Timeline     *enums.Timeline
	Source       *enums.Source
	Status       *enums.Status
	Notes        *string
	Tags         *[]string
	UpdatedAt    *time.Time
}

// SortKey restricts sortable columns.
type SortKey string

const (
	SortByUpdatedAt SortKey = "updatedAt"
	SortByCreatedAt SortKey = "createdAt"
	SortByFullName  SortKey = "fullName"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SearchFilterParams are the raw query parameters of a list/export request.
type SearchFilterParams struct {
	Search       string
	City         string
	PropertyType string
	Status       string
	Timeline     string
	Page         string
	Limit        string
	SortBy       string
	SortOrder    string
}

// SearchFilters is the validated filter set.
type SearchFilters struct {
	Search       string
	City         *enums.City
	PropertyType *enums.PropertyType
	Status       *enums.Status
	Timeline     *enums.Timeline
	Page         int
	Limit        int
	SortBy       SortKey
	SortOrder    SortOrder
}

// BuyerDTO is the canonical record shape returned by every operation.
type BuyerDTO struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        *string   `json:"email"`
	Phone        string    `json:"phone"`
	City         string    `json:"city"`
	PropertyType string    `json:"propertyType"`
	BHK          *string   `json:"bhk"`
	Purpose      string    `json:"purpose"`
	BudgetMin    *int      `json:"budgetMin"`
	BudgetMax    *int      `json:"budgetMax"`
	Timeline     string    `json:"timeline"`
	Source       string    `json:"source"`
	Status       string    `json:"status"`
	Notes        *string   `json:"notes"`
	Tags         []string  `json:"tags"`
	OwnerID      string    `json:"ownerId"`
	UpdatedAt    time.Time `json:"updatedAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HistoryEntryDTO is one change-trail entry attached to a detail view.
type HistoryEntryDTO struct {
	ID        string             `json:"id"`
	ChangedBy string             `json:"changedBy"`
	ChangedAt time.Time          `json:"changedAt"`
	Diff      dbtypes.ChangeDiff `json:"diff"`
}

// BuyerWithHistoryDTO is a record plus its most recent history entries.
type BuyerWithHistoryDTO struct {
	BuyerDTO
	History []HistoryEntryDTO `json:"history"`
}

// PaginatedBuyersDTO is one search page plus its totals.
type PaginatedBuyersDTO struct {
	Buyers     []BuyerDTO `json:"buyers"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
}

// ExistingBuyerSummary identifies the stored record a duplicate collided
// with.
type ExistingBuyerSummary struct {
	FullName string  `json:"fullName"`
	Phone    string  `json:"phone"`
	Email    *string `json:"email"`
}

// ImportFailure is one rejected bulk-import payload and the reason.
type ImportFailure struct {
	Data  LeadPayload `json:"data"`
	Error string      `json:"error"`
}

// ImportDuplicate is one skipped payload and the stored record it matched.
type ImportDuplicate struct {
	Data          LeadPayload          `json:"data"`
	ExistingBuyer ExistingBuyerSummary `json:"existingBuyer"`
}

// BulkImportResult partitions a bulk import run.
type BulkImportResult struct {
	Imported   int               `json:"imported"`
	Failed     int               `json:"failed"`
	Duplicates int               `json:"duplicates"`
	Successful []BuyerDTO        `json:"successful"`
	FailedRows []ImportFailure   `json:"failedRows"`
	Duplicated []ImportDuplicate `json:"duplicated"`
}

func toDTO(buyer *models.Buyer) BuyerDTO {
	tags := []string(buyer.Tags)
	if tags == nil {
		tags = []string{}
	}
	dto := BuyerDTO{
		ID:           buyer.ID,
		FullName:     buyer.FullName,
		Email:        buyer.Email,
		Phone:        buyer.Phone,
		City:         buyer.City.String(),
		PropertyType: buyer.PropertyType.String(),
		Purpose:      buyer.Purpose.String(),
		BudgetMin:    buyer.BudgetMin,
		BudgetMax:    buyer.BudgetMax,
		Timeline:     buyer.Timeline.String(),
		Source:       buyer.Source.String(),
		Status:       buyer.Status.String(),
		Notes:        buyer.Notes,
		Tags:         tags,
		OwnerID:      buyer.OwnerID,
		UpdatedAt:    buyer.UpdatedAt,
		CreatedAt:    buyer.CreatedAt,
	}
	if buyer.BHK != nil {
		value := buyer.BHK.String()
		dto.BHK = &value
	}
	return dto
}

func toDTOs(buyers []models.Buyer) []BuyerDTO {
	out := make([]BuyerDTO, 0, len(buyers))
	for i := range buyers {
		out = append(out, toDTO(&buyers[i]))
	}
	return out
}
