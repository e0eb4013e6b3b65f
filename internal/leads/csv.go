package leads

import (
	"strconv"
	"strings"
)

// csvColumns is the fixed column order for both import and export.
var csvColumns = []string{
	"fullName", "email", "phone", "city", "propertyType", "bhk", "purpose",
	"budgetMin", "budgetMax", "timeline", "source", "notes", "tags", "status",
}

// CSVHeader is the column list joined as a plain header line. Export writes
// the same columns with every cell quoted.
var CSVHeader = strings.Join(csvColumns, ",")

// RowError reports why one data row was rejected. Row numbers count the
// file's non-blank lines from 1, so the header is row 1 and the first data
// row is row 2.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// CSVValidationResult partitions a parsed file into importable inputs and
// per-row rejections.
type CSVValidationResult struct {
	Valid  []LeadInput
	Errors []RowError
}

// ParseCSV splits raw CSV text into row payloads. The first non-empty line
// is treated as the header and skipped; blank lines are ignored. Fields are
// split by a quote-toggle scanner: commas inside double quotes do not
// separate fields, but escaped quotes ("") and quoted newlines are not
// supported.
func ParseCSV(text string) []CSVRowPayload {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var rows []CSVRowPayload
	seenHeader := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !seenHeader {
			seenHeader = true
			continue
		}
		rows = append(rows, rowFromFields(splitCSVLine(line)))
	}
	return rows
}

// splitCSVLine walks the line toggling an in-quotes flag: a comma only
// terminates a field while outside quotes. Quote characters themselves are
// dropped from the output.
func splitCSVLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}

func rowFromFields(fields []string) CSVRowPayload {
	at := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	return CSVRowPayload{
		FullName:     at(0),
		Email:        at(1),
		Phone:        at(2),
		City:         at(3),
		PropertyType: at(4),
		BHK:          at(5),
		Purpose:      at(6),
		BudgetMin:    at(7),
		BudgetMax:    at(8),
		Timeline:     at(9),
		Source:       at(10),
		Notes:        at(11),
		Tags:         at(12),
		Status:       at(13),
	}
}

// ValidateCSVRows runs the row schema over every parsed row, keeping the
// valid inputs in order and reporting the first violation of each bad row.
// Rows whose every cell is empty (",,,,," lines) are skipped entirely; they
// still occupy a row number.
func ValidateCSVRows(rows []CSVRowPayload) CSVValidationResult {
	var result CSVValidationResult
	for i, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		input, violations := ValidateCSVRow(row)
		if len(violations) > 0 {
			first := violations[0]
			result.Errors = append(result.Errors, RowError{
				Row:     i + 2,
				Message: first.Field + ": " + first.Message,
			})
			continue
		}
		result.Valid = append(result.Valid, input)
	}
	return result
}

func isEmptyRow(row CSVRowPayload) bool {
	for _, cell := range []string{
		row.FullName, row.Email, row.Phone, row.City, row.PropertyType,
		row.BHK, row.Purpose, row.BudgetMin, row.BudgetMax, row.Timeline,
		row.Source, row.Notes, row.Tags, row.Status,
	} {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// GenerateCSV renders records in the fixed column order. Every cell,
// header included, is double-quoted with embedded quotes doubled. Unlike
// the tolerant import scanner, output is proper CSV.
func GenerateCSV(buyers []BuyerDTO) string {
	rows := [][]string{csvColumns}
	for _, buyer := range buyers {
		rows = append(rows, []string{
			buyer.FullName,
			deref(buyer.Email),
			buyer.Phone,
			buyer.City,
			buyer.PropertyType,
			deref(buyer.BHK),
			buyer.Purpose,
			formatBudget(buyer.BudgetMin),
			formatBudget(buyer.BudgetMax),
			buyer.Timeline,
			buyer.Source,
			deref(buyer.Notes),
			strings.Join(buyer.Tags, ","),
			buyer.Status,
		})
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, escapeCSVField(cell))
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

func escapeCSVField(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func formatBudget(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
