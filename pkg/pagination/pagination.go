package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizePage clamps a 1-based page number.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Offset converts a 1-based page and limit into a row offset.
func Offset(page, limit int) int {
	return (NormalizePage(page) - 1) * NormalizeLimit(limit)
}

// TotalPages returns ceil(total/limit); zero rows means zero pages.
func TotalPages(total int64, limit int) int {
	normalized := int64(NormalizeLimit(limit))
	return int((total + normalized - 1) / normalized)
}
