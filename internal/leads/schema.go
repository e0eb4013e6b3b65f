package leads

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/leadflowhq/leadflow-backend/pkg/errors"
	"github.com/leadflowhq/leadflow-backend/pkg/enums"
	"github.com/leadflowhq/leadflow-backend/pkg/pagination"
)

// FieldViolation names one failed rule. A validation pass reports every
// field-level violation at once, not just the first.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const (
	msgFullNameReq  = "Full name is required"
	msgFullNameMin  = "Full name must be at least 2 characters"
	msgFullNameMax  = "Full name must be less than 80 characters"
	msgEmailInvalid = "Invalid email address"
	msgPhoneDigits  = "Phone must be 10-15 digits"
	msgBudgetInt    = "Budget must be a non-negative integer"
	msgNotesMax     = "Notes must be less than 1000 characters"
	msgBHKRequired  = "BHK is required for Apartment and Villa properties"
	msgBudgetOrder  = "Maximum budget must be greater than or equal to minimum budget"
)

var (
	phonePattern = regexp.MustCompile(`^\d{10,15}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidationError wraps a violation list in the shared error taxonomy so the
// transport layer can render it uniformly.
func ValidationError(violations []FieldViolation) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(violations)
}

// ValidateLead checks a create payload. All field-level rules run first and
// accumulate; the cross-field refinements only run once every field-level
// rule has passed.
func ValidateLead(payload LeadPayload) (LeadInput, []FieldViolation) {
	return validateLead(payload, false)
}

// validateLead holds the field rules shared by create and CSV import. The
// import schema only requires the name to be present; the create schema
// bounds its length.
func validateLead(payload LeadPayload, fromCSV bool) (LeadInput, []FieldViolation) {
	var (
		input      LeadInput
		violations []FieldViolation
	)

	input.FullName = strings.TrimSpace(payload.FullName)
	nameLen := utf8.RuneCountInString(input.FullName)
	switch {
	case fromCSV:
		if nameLen == 0 {
			violations = append(violations, FieldViolation{Field: "fullName", Message: msgFullNameReq})
		}
	case nameLen < 2:
		violations = append(violations, FieldViolation{Field: "fullName", Message: msgFullNameMin})
	case nameLen > 80:
		violations = append(violations, FieldViolation{Field: "fullName", Message: msgFullNameMax})
	}

	input.Email = strings.TrimSpace(payload.Email)
	if input.Email != "" && !emailPattern.MatchString(input.Email) {
		violations = append(violations, FieldViolation{Field: "email", Message: msgEmailInvalid})
	}

	input.Phone = strings.TrimSpace(payload.Phone)
	if !phonePattern.MatchString(input.Phone) {
		violations = append(violations, FieldViolation{Field: "phone", Message: msgPhoneDigits})
	}

	city, err := enums.ParseCity(payload.City)
	if err != nil {
		violations = append(violations, FieldViolation{Field: "city", Message: "Invalid city"})
	}
	input.City = city

	propertyType, err := enums.ParsePropertyType(payload.PropertyType)
	if err != nil {
		violations = append(violations, FieldViolation{Field: "propertyType", Message: "Invalid property type"})
	}
	input.PropertyType = propertyType

	if payload.BHK != "" {
		bhk, err := enums.ParseBHK(payload.BHK)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "bhk", Message: "Invalid BHK"})
		} else {
			input.BHK = &bhk
		}
	}

	purpose, err := enums.ParsePurpose(payload.Purpose)
	if err != nil {
		violations = append(violations, FieldViolation{Field: "purpose", Message: "Invalid purpose"})
	}
	input.Purpose = purpose

	if payload.BudgetMin != nil {
		if *payload.BudgetMin < 0 {
			violations = append(violations, FieldViolation{Field: "budgetMin", Message: msgBudgetInt})
		} else {
			input.BudgetMin = payload.BudgetMin
		}
	}
	if payload.BudgetMax != nil {
		if *payload.BudgetMax < 0 {
			violations = append(violations, FieldViolation{Field: "budgetMax", Message: msgBudgetInt})
		} else {
			input.BudgetMax = payload.BudgetMax
		}
	}

	timeline, err := enums.ParseTimeline(payload.Timeline)
	if err != nil {
		violations = append(violations, FieldViolation{Field: "timeline", Message: "Invalid timeline"})
	}
	input.Timeline = timeline

	source, err := enums.ParseSource(payload.Source)
	if err != nil {
		violations = append(violations, FieldViolation{Field: "source", Message: "Invalid source"})
	}
	input.Source = source

	input.Status = enums.StatusNew
	if payload.Status != "" {
		status, err := enums.ParseStatus(payload.Status)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "status", Message: "Invalid status"})
		} else {
			input.Status = status
		}
	}

	input.Notes = payload.Notes
	if utf8.RuneCountInString(input.Notes) > 1000 {
		violations = append(violations, FieldViolation{Field: "notes", Message: msgNotesMax})
	}

	input.Tags = payload.Tags
	if input.Tags == nil {
		input.Tags = []string{}
	}

	if len(violations) > 0 {
		return LeadInput{}, violations
	}

	if refined := refineLead(input.PropertyType, input.BHK, input.BudgetMin, input.BudgetMax); len(refined) > 0 {
		return LeadInput{}, refined
	}
	return input, nil
}

// refineLead holds the cross-field rules shared by create, CSV, and update
// validation.
func refineLead(propertyType enums.PropertyType, bhk *enums.BHK, budgetMin, budgetMax *int) []FieldViolation {
	var violations []FieldViolation
	if propertyType.RequiresBHK() && bhk == nil {
		violations = append(violations, FieldViolation{Field: "bhk", Message: msgBHKRequired})
	}
	if budgetMin != nil && budgetMax != nil && *budgetMax < *budgetMin {
		violations = append(violations, FieldViolation{Field: "budgetMax", Message: msgBudgetOrder})
	}
	return violations
}

// ValidateCSVRow checks a row whose every field is still text, coercing
// budgets to integers and splitting tags on commas before applying the same
// rules as ValidateLead.
func ValidateCSVRow(row CSVRowPayload) (LeadInput, []FieldViolation) {
	payload := LeadPayload{
		FullName:     row.FullName,
		Email:        row.Email,
		Phone:        row.Phone,
		City:         row.City,
		PropertyType: row.PropertyType,
		BHK:          row.BHK,
		Purpose:      row.Purpose,
		Timeline:     row.Timeline,
		Source:       row.Source,
		Status:       row.Status,
		Notes:        row.Notes,
		Tags:         splitTags(row.Tags),
	}
	if payload.Status == "" {
		payload.Status = enums.StatusNew.String()
	}

	var coercions []FieldViolation
	if value, ok, violation := coerceBudget("budgetMin", row.BudgetMin); violation != nil {
		coercions = append(coercions, *violation)
	} else if ok {
		payload.BudgetMin = &value
	}
	if value, ok, violation := coerceBudget("budgetMax", row.BudgetMax); violation != nil {
		coercions = append(coercions, *violation)
	} else if ok {
		payload.BudgetMax = &value
	}

	input, violations := validateLead(payload, true)
	if len(coercions) > 0 {
		return LeadInput{}, append(coercions, violations...)
	}
	return input, violations
}

func coerceBudget(field, raw string) (int, bool, *FieldViolation) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, false, &FieldViolation{Field: field, Message: msgBudgetInt}
	}
	return value, true, nil
}

func splitTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// ValidateLeadUpdate checks a partial update. Only submitted fields are
// validated; the cross-field refinements run over the submitted subset.
func ValidateLeadUpdate(payload LeadUpdatePayload) (LeadUpdate, []FieldViolation) {
	var (
		update     LeadUpdate
		violations []FieldViolation
	)

	if payload.FullName != nil {
		name := strings.TrimSpace(*payload.FullName)
		if utf8.RuneCountInString(name) < 2 {
			violations = append(violations, FieldViolation{Field: "fullName", Message: msgFullNameMin})
		} else if utf8.RuneCountInString(name) > 80 {
			violations = append(violations, FieldViolation{Field: "fullName", Message: msgFullNameMax})
		} else {
			update.FullName = &name
		}
	}
	if payload.Email != nil {
		email := strings.TrimSpace(*payload.Email)
		if email != "" && !emailPattern.MatchString(email) {
			violations = append(violations, FieldViolation{Field: "email", Message: msgEmailInvalid})
		} else {
			update.Email = &email
		}
	}
	if payload.Phone != nil {
		phone := strings.TrimSpace(*payload.Phone)
		if !phonePattern.MatchString(phone) {
			violations = append(violations, FieldViolation{Field: "phone", Message: msgPhoneDigits})
		} else {
			update.Phone = &phone
		}
	}
	if payload.City != nil {
		city, err := enums.ParseCity(*payload.City)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "city", Message: "Invalid city"})
		} else {
			update.City = &city
		}
	}
	if payload.PropertyType != nil {
		propertyType, err := enums.ParsePropertyType(*payload.PropertyType)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "propertyType", Message: "Invalid property type"})
		} else {
			update.PropertyType = &propertyType
		}
	}
	if payload.BHK != nil && *payload.BHK != "" {
		bhk, err := enums.ParseBHK(*payload.BHK)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "bhk", Message: "Invalid BHK"})
		} else {
			update.BHK = &bhk
		}
	}
	if payload.Purpose != nil {
		purpose, err := enums.ParsePurpose(*payload.Purpose)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "purpose", Message: "Invalid purpose"})
		} else {
			update.Purpose = &purpose
		}
	}
	if payload.BudgetMin != nil {
		if *payload.BudgetMin < 0 {
			violations = append(violations, FieldViolation{Field: "budgetMin", Message: msgBudgetInt})
		} else {
			update.BudgetMin = payload.BudgetMin
		}
	}
	if payload.BudgetMax != nil {
		if *payload.BudgetMax < 0 {
			violations = append(violations, FieldViolation{Field: "budgetMax", Message: msgBudgetInt})
		} else {
			update.BudgetMax = payload.BudgetMax
		}
	}
	if payload.Timeline != nil {
		timeline, err := enums.ParseTimeline(*payload.Timeline)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "timeline", Message: "Invalid timeline"})
		} else {
			update.Timeline = &timeline
		}
	}
	if payload.Source != nil {
		source, err := enums.ParseSource(*payload.Source)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "source", Message: "Invalid source"})
		} else {
			update.Source = &source
		}
	}
	if payload.Status != nil {
		status, err := enums.ParseStatus(*payload.Status)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "status", Message: "Invalid status"})
		} else {
			update.Status = &status
		}
	}
	if payload.Notes != nil {
		if utf8.RuneCountInString(*payload.Notes) > 1000 {
			violations = append(violations, FieldViolation{Field: "notes", Message: msgNotesMax})
		} else {
			update.Notes = payload.Notes
		}
	}
	if payload.Tags != nil {
		update.Tags = payload.Tags
	}
	update.UpdatedAt = payload.UpdatedAt

	if len(violations) > 0 {
		return LeadUpdate{}, violations
	}

	if update.PropertyType != nil || (update.BudgetMin != nil && update.BudgetMax != nil) {
		var (
			propertyType enums.PropertyType
			bhk          = update.BHK
		)
		if update.PropertyType != nil {
			propertyType = *update.PropertyType
		}
		if refined := refineLead(propertyType, bhk, update.BudgetMin, update.BudgetMax); len(refined) > 0 {
			return LeadUpdate{}, refined
		}
	}
	return update, nil
}

// ValidateSearchFilters normalizes list/export query parameters. Unknown
// filter values fail; paging falls back to defaults.
func ValidateSearchFilters(params SearchFilterParams) (SearchFilters, []FieldViolation) {
	var (
		filters    SearchFilters
		violations []FieldViolation
	)

	filters.Search = strings.TrimSpace(params.Search)

	if params.City != "" {
		city, err := enums.ParseCity(params.City)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "city", Message: "Invalid city"})
		} else {
			filters.City = &city
		}
	}
	if params.PropertyType != "" {
		propertyType, err := enums.ParsePropertyType(params.PropertyType)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "propertyType", Message: "Invalid property type"})
		} else {
			filters.PropertyType = &propertyType
		}
	}
	if params.Status != "" {
		status, err := enums.ParseStatus(params.Status)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "status", Message: "Invalid status"})
		} else {
			filters.Status = &status
		}
	}
	if params.Timeline != "" {
		timeline, err := enums.ParseTimeline(params.Timeline)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "timeline", Message: "Invalid timeline"})
		} else {
			filters.Timeline = &timeline
		}
	}

	page := 0
	if params.Page != "" {
		parsed, err := strconv.Atoi(params.Page)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "page", Message: "Page must be a number"})
		} else {
			page = parsed
		}
	}
	filters.Page = pagination.NormalizePage(page)

	limit := 0
	if params.Limit != "" {
		parsed, err := strconv.Atoi(params.Limit)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "limit", Message: "Limit must be a number"})
		} else {
			limit = parsed
		}
	}
	filters.Limit = pagination.NormalizeLimit(limit)

	filters.SortBy = SortByUpdatedAt
	if params.SortBy != "" {
		switch SortKey(params.SortBy) {
		case SortByUpdatedAt, SortByCreatedAt, SortByFullName:
			filters.SortBy = SortKey(params.SortBy)
		default:
			violations = append(violations, FieldViolation{Field: "sortBy", Message: fmt.Sprintf("Cannot sort by %q", params.SortBy)})
		}
	}

	filters.SortOrder = SortDesc
	if params.SortOrder != "" {
		switch SortOrder(params.SortOrder) {
		case SortAsc, SortDesc:
			filters.SortOrder = SortOrder(params.SortOrder)
		default:
			violations = append(violations, FieldViolation{Field: "sortOrder", Message: "Sort order must be asc or desc"})
		}
	}

	if len(violations) > 0 {
		return SearchFilters{}, violations
	}
	return filters, nil
}
