package enums

import "fmt"

// Status is the lead's position in the funnel. The order of the constants is
// the funnel order.
type Status string

const (
	StatusNew         Status = "New"
	StatusQualified   Status = "Qualified"
	StatusContacted   Status = "Contacted"
	StatusVisited     Status = "Visited"
	StatusNegotiation Status = "Negotiation"
	StatusConverted   Status = "Converted"
	StatusDropped     Status = "Dropped"
)

var validStatuses = []Status{
	StatusNew,
	StatusQualified,
	StatusContacted,
	StatusVisited,
	StatusNegotiation,
	StatusConverted,
	StatusDropped,
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Status.
func (s Status) IsValid() bool {
	for _, candidate := range validStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStatus converts raw input into a Status.
func ParseStatus(value string) (Status, error) {
	for _, candidate := range validStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid status %q", value)
}
