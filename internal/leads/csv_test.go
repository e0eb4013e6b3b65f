package leads

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVSkipsHeaderAndBlankLines(t *testing.T) {
	content := strings.Join([]string{
		CSVHeader,
		"",
		"Asha Verma,asha@example.com,9876543210,Chandigarh,Apartment,2,Buy,1000000,2000000,0-3m,Website,,hot,New",
		"   ",
		"Rohan Gupta,,9998887776,Mohali,Plot,,Buy,,,>6m,Referral,,,",
	}, "\n")

	rows := ParseCSV(content)
	require.Len(t, rows, 2)
	assert.Equal(t, "Asha Verma", rows[0].FullName)
	assert.Equal(t, "Rohan Gupta", rows[1].FullName)
	assert.Empty(t, rows[1].Email)
}

func TestParseCSVQuotedCommas(t *testing.T) {
	content := CSVHeader + "\n" +
		`"Verma, Asha",asha@example.com,9876543210,Chandigarh,Apartment,2,Buy,,,0-3m,Website,"top floor, corner unit","hot,nri",New`

	rows := ParseCSV(content)
	require.Len(t, rows, 1)
	assert.Equal(t, "Verma, Asha", rows[0].FullName)
	assert.Equal(t, "top floor, corner unit", rows[0].Notes)
	assert.Equal(t, "hot,nri", rows[0].Tags)
}

func TestParseCSVShortRowPadsMissingFields(t *testing.T) {
	content := CSVHeader + "\nAsha Verma,asha@example.com,9876543210"

	rows := ParseCSV(content)
	require.Len(t, rows, 1)
	assert.Equal(t, "9876543210", rows[0].Phone)
	assert.Empty(t, rows[0].City)
	assert.Empty(t, rows[0].Status)
}

func TestParseCSVCRLF(t *testing.T) {
	content := CSVHeader + "\r\nAsha Verma,,9876543210,Chandigarh,Plot,,Buy,,,0-3m,Website,,,\r\n"

	rows := ParseCSV(content)
	require.Len(t, rows, 1)
	assert.Equal(t, "Chandigarh", rows[0].City)
}

func TestValidateCSVRowsReportsRowNumbers(t *testing.T) {
	rows := []CSVRowPayload{
		validCSVRow(),
		{FullName: "Bad Phone", Phone: "12", City: "Mohali", PropertyType: "Plot", Purpose: "Buy", Timeline: ">6m", Source: "Call"},
		validCSVRow(),
		{FullName: "No City", Phone: "9876543210", City: "Shimla", PropertyType: "Plot", Purpose: "Buy", Timeline: ">6m", Source: "Call"},
	}
	rows[2].Phone = "9123456780"
	rows[2].Email = ""

	result := ValidateCSVRows(rows)
	require.Len(t, result.Valid, 2)
	require.Len(t, result.Errors, 2)

	// Row numbers count the header, so the first data row is row 2.
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, "phone: Phone must be 10-15 digits", result.Errors[0].Message)
	assert.Equal(t, 5, result.Errors[1].Row)
	assert.Equal(t, "city: Invalid city", result.Errors[1].Message)
}

func TestValidateCSVRowsSkipsEmptyRows(t *testing.T) {
	content := strings.Join([]string{
		CSVHeader,
		",,,,,,,,,,,,,",
		"Rohan Gupta,,9998887776,Mohali,Plot,,Buy,,,>6m,Referral,,,",
	}, "\n")

	result := ValidateCSVRows(ParseCSV(content))
	assert.Empty(t, result.Errors)
	require.Len(t, result.Valid, 1)
	assert.Equal(t, "Rohan Gupta", result.Valid[0].FullName)
}

func TestValidateCSVRowsNumbersPastEmptyRows(t *testing.T) {
	content := strings.Join([]string{
		CSVHeader,
		",,,,,,,,,,,,,",
		"Bad Phone,,12,Mohali,Plot,,Buy,,,>6m,Call,,,",
	}, "\n")

	result := ValidateCSVRows(ParseCSV(content))
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
}

func TestGenerateCSVEscapesFields(t *testing.T) {
	email := "asha@example.com"
	notes := `wants "corner" unit, top floor`
	budgetMin := 1000000
	buyers := []BuyerDTO{{
		FullName:     "Verma, Asha",
		Email:        &email,
		Phone:        "9876543210",
		City:         "Chandigarh",
		PropertyType: "Apartment",
		Purpose:      "Buy",
		BudgetMin:    &budgetMin,
		Timeline:     "0-3m",
		Source:       "Website",
		Status:       "New",
		Notes:        &notes,
		Tags:         []string{"hot", "nri"},
	}}
	bhk := "2"
	buyers[0].BHK = &bhk

	out := GenerateCSV(buyers)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		`"fullName","email","phone","city","propertyType","bhk","purpose","budgetMin","budgetMax","timeline","source","notes","tags","status"`,
		lines[0])
	assert.Equal(t,
		`"Verma, Asha","asha@example.com","9876543210","Chandigarh","Apartment","2","Buy","1000000","","0-3m","Website","wants ""corner"" unit, top floor","hot,nri","New"`,
		lines[1])
}

func TestGenerateCSVAbsentOptionalsAreEmpty(t *testing.T) {
	buyers := []BuyerDTO{{
		FullName:     "Rohan Gupta",
		Phone:        "9998887776",
		City:         "Mohali",
		PropertyType: "Plot",
		Purpose:      "Buy",
		Timeline:     ">6m",
		Source:       "Referral",
		Status:       "New",
		Tags:         []string{},
	}}

	out := GenerateCSV(buyers)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		`"Rohan Gupta","","9998887776","Mohali","Plot","","Buy","","",">6m","Referral","","","New"`,
		lines[1])
}

func TestCSVExportRoundTrip(t *testing.T) {
	email := "rohan@example.com"
	budgetMax := 2500000
	buyers := []BuyerDTO{{
		FullName:     "Rohan Gupta",
		Email:        &email,
		Phone:        "9998887776",
		City:         "Mohali",
		PropertyType: "Office",
		Purpose:      "Rent",
		BudgetMax:    &budgetMax,
		Timeline:     "3-6m",
		Source:       "Walk-in",
		Status:       "Contacted",
		Tags:         []string{"investor"},
	}}

	rows := ParseCSV(GenerateCSV(buyers))
	require.Len(t, rows, 1)

	input, violations := ValidateCSVRow(rows[0])
	require.Empty(t, violations)
	assert.Equal(t, "Rohan Gupta", input.FullName)
	assert.Equal(t, "rohan@example.com", input.Email)
	require.NotNil(t, input.BudgetMax)
	assert.Equal(t, 2500000, *input.BudgetMax)
	assert.Equal(t, []string{"investor"}, input.Tags)
}
