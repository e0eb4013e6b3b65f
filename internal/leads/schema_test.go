package leads

import (
	"strings"
	"testing"

	"github.com/leadflowhq/leadflow-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() LeadPayload {
	return LeadPayload{
		FullName:     "Asha Verma",
		Email:        "asha@example.com",
		Phone:        "9876543210",
		City:         "Chandigarh",
		PropertyType: "Apartment",
		BHK:          "2",
		Purpose:      "Buy",
		Timeline:     "0-3m",
		Source:       "Website",
		Notes:        "Prefers top floor",
		Tags:         []string{"hot"},
	}
}

func TestValidateLeadHappyPath(t *testing.T) {
	input, violations := ValidateLead(validPayload())
	require.Empty(t, violations)

	assert.Equal(t, "Asha Verma", input.FullName)
	assert.Equal(t, enums.CityChandigarh, input.City)
	assert.Equal(t, enums.PropertyTypeApartment, input.PropertyType)
	require.NotNil(t, input.BHK)
	assert.Equal(t, enums.BHKTwo, *input.BHK)
	assert.Equal(t, enums.StatusNew, input.Status, "status defaults to New")
	assert.Equal(t, []string{"hot"}, input.Tags)
}

func TestValidateLeadCollectsAllViolations(t *testing.T) {
	payload := validPayload()
	payload.FullName = "A"
	payload.Phone = "12ab"
	payload.City = "Atlantis"
	payload.Email = "not-an-email"

	_, violations := ValidateLead(payload)
	require.Len(t, violations, 4)

	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"fullName", "phone", "city", "email"}, fields)
}

func TestValidateLeadFieldRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LeadPayload)
		field   string
		message string
	}{
		{
			name:    "full name too short",
			mutate:  func(p *LeadPayload) { p.FullName = "X" },
			field:   "fullName",
			message: "Full name must be at least 2 characters",
		},
		{
			name:    "phone too short",
			mutate:  func(p *LeadPayload) { p.Phone = "123456789" },
			field:   "phone",
			message: "Phone must be 10-15 digits",
		},
		{
			name:    "phone with separators",
			mutate:  func(p *LeadPayload) { p.Phone = "98765-43210" },
			field:   "phone",
			message: "Phone must be 10-15 digits",
		},
		{
			name:    "invalid email",
			mutate:  func(p *LeadPayload) { p.Email = "nope@" },
			field:   "email",
			message: "Invalid email address",
		},
		{
			name:    "negative budget",
			mutate:  func(p *LeadPayload) { v := -1; p.BudgetMin = &v },
			field:   "budgetMin",
			message: "Budget must be a non-negative integer",
		},
		{
			name:    "unknown status",
			mutate:  func(p *LeadPayload) { p.Status = "Archived" },
			field:   "status",
			message: "Invalid status",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(&payload)

			_, violations := ValidateLead(payload)
			require.Len(t, violations, 1)
			assert.Equal(t, tt.field, violations[0].Field)
			assert.Equal(t, tt.message, violations[0].Message)
		})
	}
}

func TestValidateLeadEmptyEmailAllowed(t *testing.T) {
	payload := validPayload()
	payload.Email = ""

	input, violations := ValidateLead(payload)
	require.Empty(t, violations)
	assert.Empty(t, input.Email)
}

func TestValidateLeadBHKRequiredRefinement(t *testing.T) {
	for _, propertyType := range []string{"Apartment", "Villa"} {
		payload := validPayload()
		payload.PropertyType = propertyType
		payload.BHK = ""

		_, violations := ValidateLead(payload)
		require.Len(t, violations, 1, propertyType)
		assert.Equal(t, "bhk", violations[0].Field)
		assert.Equal(t, "BHK is required for Apartment and Villa properties", violations[0].Message)
	}

	for _, propertyType := range []string{"Plot", "Office", "Retail"} {
		payload := validPayload()
		payload.PropertyType = propertyType
		payload.BHK = ""

		_, violations := ValidateLead(payload)
		assert.Empty(t, violations, propertyType)
	}
}

func TestValidateLeadBudgetOrderRefinement(t *testing.T) {
	payload := validPayload()
	min, max := 5000000, 4000000
	payload.BudgetMin = &min
	payload.BudgetMax = &max

	_, violations := ValidateLead(payload)
	require.Len(t, violations, 1)
	assert.Equal(t, "budgetMax", violations[0].Field)
	assert.Equal(t, "Maximum budget must be greater than or equal to minimum budget", violations[0].Message)

	// Equal budgets pass.
	max = min
	payload.BudgetMax = &max
	_, violations = ValidateLead(payload)
	assert.Empty(t, violations)
}

func TestValidateLeadRefinementsRunAfterFieldRules(t *testing.T) {
	payload := validPayload()
	payload.Phone = "bad"
	payload.BHK = ""

	_, violations := ValidateLead(payload)
	require.Len(t, violations, 1)
	assert.Equal(t, "phone", violations[0].Field, "refinements are skipped while field rules fail")
}

func validCSVRow() CSVRowPayload {
	return CSVRowPayload{
		FullName:     "Rohan Gupta",
		Email:        "rohan@example.com",
		Phone:        "9998887776",
		City:         "Mohali",
		PropertyType: "Plot",
		Purpose:      "Buy",
		BudgetMin:    "1000000",
		BudgetMax:    "2000000",
		Timeline:     ">6m",
		Source:       "Referral",
		Tags:         "investor, nri",
	}
}

func TestValidateCSVRowCoercion(t *testing.T) {
	input, violations := ValidateCSVRow(validCSVRow())
	require.Empty(t, violations)

	require.NotNil(t, input.BudgetMin)
	assert.Equal(t, 1000000, *input.BudgetMin)
	require.NotNil(t, input.BudgetMax)
	assert.Equal(t, 2000000, *input.BudgetMax)
	assert.Equal(t, []string{"investor", "nri"}, input.Tags)
	assert.Equal(t, enums.StatusNew, input.Status, "blank status defaults to New")
}

func TestValidateCSVRowBudgetNotNumeric(t *testing.T) {
	row := validCSVRow()
	row.BudgetMin = "one million"

	_, violations := ValidateCSVRow(row)
	require.NotEmpty(t, violations)
	assert.Equal(t, "budgetMin", violations[0].Field)
	assert.Equal(t, "Budget must be a non-negative integer", violations[0].Message)
}

func TestValidateCSVRowEmptyBudgetsAbsent(t *testing.T) {
	row := validCSVRow()
	row.BudgetMin = ""
	row.BudgetMax = "  "

	input, violations := ValidateCSVRow(row)
	require.Empty(t, violations)
	assert.Nil(t, input.BudgetMin)
	assert.Nil(t, input.BudgetMax)
}

func TestValidateCSVRowNameOnlyNeedsToBePresent(t *testing.T) {
	row := validCSVRow()
	row.FullName = "R"

	_, violations := ValidateCSVRow(row)
	assert.Empty(t, violations, "the import schema accepts single-character names")

	row.FullName = "  "
	_, violations = ValidateCSVRow(row)
	require.Len(t, violations, 1)
	assert.Equal(t, "fullName", violations[0].Field)
	assert.Equal(t, "Full name is required", violations[0].Message)
}

func TestValidateLeadCountsCharactersNotBytes(t *testing.T) {
	payload := validPayload()
	payload.FullName = strings.Repeat("ख", 79)

	_, violations := ValidateLead(payload)
	assert.Empty(t, violations, "79 multibyte characters fit the 80-character bound")

	payload.FullName = "आशा"
	_, violations = ValidateLead(payload)
	assert.Empty(t, violations)

	payload = validPayload()
	payload.Notes = strings.Repeat("ख", 1000)
	_, violations = ValidateLead(payload)
	assert.Empty(t, violations)
}

func TestValidateCSVRowTagSplitting(t *testing.T) {
	row := validCSVRow()
	row.Tags = " hot , , follow-up ,"

	input, violations := ValidateCSVRow(row)
	require.Empty(t, violations)
	assert.Equal(t, []string{"hot", "follow-up"}, input.Tags)
}

func TestValidateLeadUpdatePartial(t *testing.T) {
	status := "Qualified"
	update, violations := ValidateLeadUpdate(LeadUpdatePayload{Status: &status})
	require.Empty(t, violations)
	require.NotNil(t, update.Status)
	assert.Equal(t, enums.StatusQualified, *update.Status)
	assert.Nil(t, update.FullName)
	assert.Nil(t, update.UpdatedAt)
}

func TestValidateLeadUpdateRejectsBadFields(t *testing.T) {
	phone := "123"
	city := "Gotham"
	_, violations := ValidateLeadUpdate(LeadUpdatePayload{Phone: &phone, City: &city})
	require.Len(t, violations, 2)
}

func TestValidateLeadUpdateRefinementOnSubmittedSubset(t *testing.T) {
	propertyType := "Villa"
	_, violations := ValidateLeadUpdate(LeadUpdatePayload{PropertyType: &propertyType})
	require.Len(t, violations, 1)
	assert.Equal(t, "bhk", violations[0].Field)

	bhk := "3"
	update, violations := ValidateLeadUpdate(LeadUpdatePayload{PropertyType: &propertyType, BHK: &bhk})
	require.Empty(t, violations)
	require.NotNil(t, update.BHK)
	assert.Equal(t, enums.BHKThree, *update.BHK)
}

func TestValidateSearchFiltersDefaults(t *testing.T) {
	filters, violations := ValidateSearchFilters(SearchFilterParams{})
	require.Empty(t, violations)

	assert.Equal(t, 1, filters.Page)
	assert.Equal(t, 10, filters.Limit)
	assert.Equal(t, SortByUpdatedAt, filters.SortBy)
	assert.Equal(t, SortDesc, filters.SortOrder)
	assert.Nil(t, filters.City)
}

func TestValidateSearchFiltersNormalization(t *testing.T) {
	filters, violations := ValidateSearchFilters(SearchFilterParams{
		Page:      "0",
		Limit:     "500",
		City:      "Zirakpur",
		SortBy:    "fullName",
		SortOrder: "asc",
		Search:    "  rohan  ",
	})
	require.Empty(t, violations)

	assert.Equal(t, 1, filters.Page)
	assert.Equal(t, 100, filters.Limit, "limit is capped")
	require.NotNil(t, filters.City)
	assert.Equal(t, enums.CityZirakpur, *filters.City)
	assert.Equal(t, SortByFullName, filters.SortBy)
	assert.Equal(t, SortAsc, filters.SortOrder)
	assert.Equal(t, "rohan", filters.Search)
}

func TestValidateSearchFiltersRejectsUnknownValues(t *testing.T) {
	_, violations := ValidateSearchFilters(SearchFilterParams{SortBy: "phone"})
	require.Len(t, violations, 1)
	assert.Equal(t, "sortBy", violations[0].Field)

	_, violations = ValidateSearchFilters(SearchFilterParams{Timeline: "someday"})
	require.Len(t, violations, 1)
	assert.Equal(t, "timeline", violations[0].Field)
}
