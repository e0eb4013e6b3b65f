package enums

import "fmt"

// Timeline is the lead's purchase horizon.
type Timeline string

const (
	TimelineZeroToThreeMonths  Timeline = "0-3m"
	TimelineThreeToSixMonths   Timeline = "3-6m"
	TimelineMoreThanSixMonths  Timeline = ">6m"
	TimelineExploring          Timeline = "Exploring"
)

var validTimelines = []Timeline{
	TimelineZeroToThreeMonths,
	TimelineThreeToSixMonths,
	TimelineMoreThanSixMonths,
	TimelineExploring,
}

// String implements fmt.Stringer.
func (t Timeline) String() string {
	return string(t)
}

// IsValid reports whether the value is a known Timeline.
func (t Timeline) IsValid() bool {
	for _, candidate := range validTimelines {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTimeline converts raw input into a Timeline.
func ParseTimeline(value string) (Timeline, error) {
	for _, candidate := range validTimelines {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid timeline %q", value)
}
