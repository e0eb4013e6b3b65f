package enums

import "fmt"

// BHK is the bedroom-count shorthand captured for residential leads.
type BHK string

const (
	BHKOne    BHK = "1"
	BHKTwo    BHK = "2"
	BHKThree  BHK = "3"
	BHKFour   BHK = "4"
	BHKStudio BHK = "Studio"
)

var validBHKs = []BHK{
	BHKOne,
	BHKTwo,
	BHKThree,
	BHKFour,
	BHKStudio,
}

// String implements fmt.Stringer.
func (b BHK) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BHK.
func (b BHK) IsValid() bool {
	for _, candidate := range validBHKs {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBHK converts raw input into a BHK.
func ParseBHK(value string) (BHK, error) {
	for _, candidate := range validBHKs {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bhk %q", value)
}
