package enums

import "fmt"

// Source records where a lead came from.
type Source string

const (
	SourceWebsite  Source = "Website"
	SourceReferral Source = "Referral"
	SourceWalkIn   Source = "Walk-in"
	SourceCall     Source = "Call"
	SourceOther    Source = "Other"
)

var validSources = []Source{
	SourceWebsite,
	SourceReferral,
	SourceWalkIn,
	SourceCall,
	SourceOther,
}

// String implements fmt.Stringer.
func (s Source) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Source.
func (s Source) IsValid() bool {
	for _, candidate := range validSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSource converts raw input into a Source.
func ParseSource(value string) (Source, error) {
	for _, candidate := range validSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid source %q", value)
}
