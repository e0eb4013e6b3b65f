package leads

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/leadflowhq/leadflow-backend/internal/history"
	"github.com/leadflowhq/leadflow-backend/pkg/db/models"
	dbtypes "github.com/leadflowhq/leadflow-backend/pkg/db/types"
	pkgerrors "github.com/leadflowhq/leadflow-backend/pkg/errors"
	"github.com/leadflowhq/leadflow-backend/pkg/pagination"
)

const (
	msgBuyerNotFound  = "Buyer not found"
	msgDuplicatePhone = "A buyer with this phone number already exists"
	msgDuplicateEmail = "A buyer with this email already exists"
)

type buyersRepository interface {
	FindByID(ctx context.Context, ownerID, buyerID string) (*models.Buyer, error)
	FindDuplicate(ctx context.Context, ownerID, phone, email string) (*models.Buyer, error)
	Create(ctx context.Context, buyer *models.Buyer) error
	Update(ctx context.Context, ownerID, buyerID string, columns map[string]any) (*models.Buyer, error)
	Delete(ctx context.Context, ownerID, buyerID string) (bool, error)
	Search(ctx context.Context, ownerID string, filters SearchFilters) ([]models.Buyer, int64, error)
	ExportAll(ctx context.Context, ownerID string, filters SearchFilters) ([]models.Buyer, error)
}

type historyRepository interface {
	Record(ctx context.Context, entry *models.BuyerHistory) error
	Recent(ctx context.Context, buyerID string, limit int) ([]models.BuyerHistory, error)
}

// Service exposes the buyer-lead lifecycle: capture, lookup, partial update
// with optimistic concurrency, removal, search, export, and bulk import.
type Service interface {
	Create(ctx context.Context, ownerID string, payload LeadPayload) (*BuyerDTO, error)
	Get(ctx context.Context, ownerID, buyerID string) (*BuyerWithHistoryDTO, error)
	Update(ctx context.Context, ownerID, buyerID string, payload LeadUpdatePayload) (*BuyerDTO, error)
	Delete(ctx context.Context, ownerID, buyerID string) error
	Search(ctx context.Context, ownerID string, params SearchFilterParams) (*PaginatedBuyersDTO, error)
	ExportAll(ctx context.Context, ownerID string, params SearchFilterParams) ([]BuyerDTO, error)
	BulkImport(ctx context.Context, ownerID string, payloads []LeadPayload) (*BulkImportResult, error)
}

type service struct {
	buyers  buyersRepository
	history historyRepository
}

// NewService builds a lead service backed by the provided repositories.
func NewService(buyers buyersRepository, historyRepo historyRepository) (Service, error) {
	if buyers == nil {
		return nil, fmt.Errorf("buyers repository required")
	}
	if historyRepo == nil {
		return nil, fmt.Errorf("history repository required")
	}
	return &service{buyers: buyers, history: historyRepo}, nil
}

func (s *service) Create(ctx context.Context, ownerID string, payload LeadPayload) (*BuyerDTO, error) {
	input, violations := ValidateLead(payload)
	if len(violations) > 0 {
		return nil, ValidationError(violations)
	}
	return s.insert(ctx, ownerID, input)
}

// insert is the shared create path for single capture and bulk import: a
// duplicate check, the row insert, then the "created" trail entry.
func (s *service) insert(ctx context.Context, ownerID string, input LeadInput) (*BuyerDTO, error) {
	existing, err := s.buyers.FindDuplicate(ctx, ownerID, input.Phone, input.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "duplicate lookup failed")
	}
	if existing != nil {
		return nil, duplicateError(existing, input.Phone)
	}

	buyer := modelFromInput(ownerID, input)
	if err := s.buyers.Create(ctx, buyer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create buyer")
	}

	entry := &models.BuyerHistory{
		BuyerID:   buyer.ID,
		ChangedBy: ownerID,
		Diff: dbtypes.ChangeDiff{
			Action: dbtypes.DiffActionCreated,
			Fields: input.FieldNames(),
		},
	}
	if err := s.history.Record(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to record buyer history")
	}

	dto := toDTO(buyer)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, ownerID, buyerID string) (*BuyerWithHistoryDTO, error) {
	buyer, err := s.buyers.FindByID(ctx, ownerID, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buyer lookup failed")
	}
	if buyer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgBuyerNotFound)
	}

	entries, err := s.history.Recent(ctx, buyerID, history.DefaultRecentLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "history lookup failed")
	}

	result := &BuyerWithHistoryDTO{
		BuyerDTO: toDTO(buyer),
		History:  make([]HistoryEntryDTO, 0, len(entries)),
	}
	for _, entry := range entries {
		result.History = append(result.History, HistoryEntryDTO{
			ID:        entry.ID,
			ChangedBy: entry.ChangedBy,
			ChangedAt: entry.ChangedAt,
			Diff:      entry.Diff,
		})
	}
	return result, nil
}

func (s *service) Update(ctx context.Context, ownerID, buyerID string, payload LeadUpdatePayload) (*BuyerDTO, error) {
	update, violations := ValidateLeadUpdate(payload)
	if len(violations) > 0 {
		return nil, ValidationError(violations)
	}

	stored, err := s.buyers.FindByID(ctx, ownerID, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buyer lookup failed")
	}
	if stored == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgBuyerNotFound)
	}

	// Optimistic concurrency: a watermark strictly earlier than the stored
	// timestamp means the client edited a stale copy.
	if update.UpdatedAt != nil && update.UpdatedAt.Before(stored.UpdatedAt) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Record changed, please refresh")
	}

	columns, diff := applyUpdate(stored, update)
	if len(diff.Fields) == 0 {
		dto := toDTO(stored)
		return &dto, nil
	}

	updated, err := s.buyers.Update(ctx, ownerID, buyerID, columns)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update buyer")
	}

	entry := &models.BuyerHistory{
		BuyerID:   buyerID,
		ChangedBy: ownerID,
		Diff:      diff,
	}
	if err := s.history.Record(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to record buyer history")
	}

	dto := toDTO(updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, ownerID, buyerID string) error {
	deleted, err := s.buyers.Delete(ctx, ownerID, buyerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete buyer")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgBuyerNotFound)
	}
	return nil
}

func (s *service) Search(ctx context.Context, ownerID string, params SearchFilterParams) (*PaginatedBuyersDTO, error) {
	filters, violations := ValidateSearchFilters(params)
	if len(violations) > 0 {
		return nil, ValidationError(violations)
	}

	buyers, total, err := s.buyers.Search(ctx, ownerID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buyer search failed")
	}

	return &PaginatedBuyersDTO{
		Buyers:     toDTOs(buyers),
		Total:      total,
		Page:       filters.Page,
		Limit:      filters.Limit,
		TotalPages: pagination.TotalPages(total, filters.Limit),
	}, nil
}

func (s *service) ExportAll(ctx context.Context, ownerID string, params SearchFilterParams) ([]BuyerDTO, error) {
	// Export ignores paging; everything matching the filters goes out.
	params.Page = ""
	params.Limit = ""
	filters, violations := ValidateSearchFilters(params)
	if len(violations) > 0 {
		return nil, ValidationError(violations)
	}

	buyers, err := s.buyers.ExportAll(ctx, ownerID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "buyer export failed")
	}
	return toDTOs(buyers), nil
}

func (s *service) BulkImport(ctx context.Context, ownerID string, payloads []LeadPayload) (*BulkImportResult, error) {
	result := &BulkImportResult{
		Successful: []BuyerDTO{},
		FailedRows: []ImportFailure{},
		Duplicated: []ImportDuplicate{},
	}

	for _, payload := range payloads {
		input, violations := ValidateLead(payload)
		if len(violations) > 0 {
			first := violations[0]
			result.FailedRows = append(result.FailedRows, ImportFailure{
				Data:  payload,
				Error: first.Field + ": " + first.Message,
			})
			continue
		}

		existing, err := s.buyers.FindDuplicate(ctx, ownerID, input.Phone, input.Email)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "duplicate lookup failed")
		}
		if existing != nil {
			result.Duplicated = append(result.Duplicated, ImportDuplicate{
				Data:          payload,
				ExistingBuyer: summarize(existing),
			})
			continue
		}

		dto, err := s.insert(ctx, ownerID, input)
		if err != nil {
			result.FailedRows = append(result.FailedRows, ImportFailure{
				Data:  payload,
				Error: err.Error(),
			})
			continue
		}
		result.Successful = append(result.Successful, *dto)
	}

	result.Imported = len(result.Successful)
	result.Failed = len(result.FailedRows)
	result.Duplicates = len(result.Duplicated)
	return result, nil
}

func duplicateError(existing *models.Buyer, phone string) error {
	message := msgDuplicateEmail
	if existing.Phone == phone {
		message = msgDuplicatePhone
	}
	return pkgerrors.New(pkgerrors.CodeDuplicate, message)
}

func summarize(buyer *models.Buyer) ExistingBuyerSummary {
	return ExistingBuyerSummary{
		FullName: buyer.FullName,
		Phone:    buyer.Phone,
		Email:    buyer.Email,
	}
}

func modelFromInput(ownerID string, input LeadInput) *models.Buyer {
	buyer := &models.Buyer{
		ID:           uuid.NewString(),
		FullName:     input.FullName,
		Phone:        input.Phone,
		City:         input.City,
		PropertyType: input.PropertyType,
		BHK:          input.BHK,
		Purpose:      input.Purpose,
		BudgetMin:    input.BudgetMin,
		BudgetMax:    input.BudgetMax,
		Timeline:     input.Timeline,
		Source:       input.Source,
		Status:       input.Status,
		Tags:         dbtypes.StringList(input.Tags),
		OwnerID:      ownerID,
	}
	if input.Email != "" {
		email := input.Email
		buyer.Email = &email
	}
	if input.Notes != "" {
		notes := input.Notes
		buyer.Notes = &notes
	}
	return buyer
}

// applyUpdate diffs the submitted fields against the stored row. The diff
// covers only fields that were both submitted and actually changed; the
// column map mirrors it one to one.
func applyUpdate(stored *models.Buyer, update LeadUpdate) (map[string]any, dbtypes.ChangeDiff) {
	columns := map[string]any{}
	diff := dbtypes.ChangeDiff{
		Action:  dbtypes.DiffActionUpdated,
		Changes: map[string]dbtypes.FieldChange{},
	}

	change := func(field, column string, from, to any) {
		columns[column] = to
		diff.Fields = append(diff.Fields, field)
		diff.Changes[field] = dbtypes.FieldChange{From: from, To: to}
	}

	if update.FullName != nil && *update.FullName != stored.FullName {
		change("fullName", "full_name", stored.FullName, *update.FullName)
	}
	if update.Email != nil {
		from := strValue(stored.Email)
		if *update.Email != from {
			var to any
			if *update.Email != "" {
				to = *update.Email
			}
			change("email", "email", nullable(stored.Email), to)
		}
	}
	if update.Phone != nil && *update.Phone != stored.Phone {
		change("phone", "phone", stored.Phone, *update.Phone)
	}
	if update.City != nil && *update.City != stored.City {
		change("city", "city", stored.City.String(), update.City.String())
	}
	if update.PropertyType != nil && *update.PropertyType != stored.PropertyType {
		change("propertyType", "property_type", stored.PropertyType.String(), update.PropertyType.String())
	}
	if update.BHK != nil && (stored.BHK == nil || *update.BHK != *stored.BHK) {
		var from any
		if stored.BHK != nil {
			from = stored.BHK.String()
		}
		change("bhk", "bhk", from, update.BHK.String())
	}
	if update.Purpose != nil && *update.Purpose != stored.Purpose {
		change("purpose", "purpose", stored.Purpose.String(), update.Purpose.String())
	}
	if update.BudgetMin != nil && (stored.BudgetMin == nil || *update.BudgetMin != *stored.BudgetMin) {
		change("budgetMin", "budget_min", intValue(stored.BudgetMin), *update.BudgetMin)
	}
	if update.BudgetMax != nil && (stored.BudgetMax == nil || *update.BudgetMax != *stored.BudgetMax) {
		change("budgetMax", "budget_max", intValue(stored.BudgetMax), *update.BudgetMax)
	}
	if update.Timeline != nil && *update.Timeline != stored.Timeline {
		change("timeline", "timeline", stored.Timeline.String(), update.Timeline.String())
	}
	if update.Source != nil && *update.Source != stored.Source {
		change("source", "source", stored.Source.String(), update.Source.String())
	}
	if update.Status != nil && *update.Status != stored.Status {
		change("status", "status", stored.Status.String(), update.Status.String())
	}
	if update.Notes != nil {
		from := strValue(stored.Notes)
		if *update.Notes != from {
			var to any
			if *update.Notes != "" {
				to = *update.Notes
			}
			change("notes", "notes", nullable(stored.Notes), to)
		}
	}
	if update.Tags != nil && !slices.Equal(*update.Tags, []string(stored.Tags)) {
		tags := *update.Tags
		if tags == nil {
			tags = []string{}
		}
		columns["tags"] = dbtypes.StringList(tags)
		diff.Fields = append(diff.Fields, "tags")
		diff.Changes["tags"] = dbtypes.FieldChange{From: []string(stored.Tags), To: tags}
	}

	if len(diff.Fields) > 0 {
		columns["updated_at"] = time.Now().UTC()
	}
	return columns, diff
}

func strValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func nullable(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func intValue(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
