package enums

import "fmt"

// Purpose distinguishes buying from renting intent.
type Purpose string

const (
	PurposeBuy  Purpose = "Buy"
	PurposeRent Purpose = "Rent"
)

var validPurposes = []Purpose{
	PurposeBuy,
	PurposeRent,
}

// String implements fmt.Stringer.
func (p Purpose) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Purpose.
func (p Purpose) IsValid() bool {
	for _, candidate := range validPurposes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePurpose converts raw input into a Purpose.
func ParsePurpose(value string) (Purpose, error) {
	for _, candidate := range validPurposes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purpose %q", value)
}
