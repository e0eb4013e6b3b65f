package enums

import "fmt"

// City is the fixed set of locations a lead can target.
type City string

const (
	CityChandigarh City = "Chandigarh"
	CityMohali     City = "Mohali"
	CityZirakpur   City = "Zirakpur"
	CityPanchkula  City = "Panchkula"
	CityOther      City = "Other"
)

var validCities = []City{
	CityChandigarh,
	CityMohali,
	CityZirakpur,
	CityPanchkula,
	CityOther,
}

// String implements fmt.Stringer.
func (c City) String() string {
	return string(c)
}

// IsValid reports whether the value is a known City.
func (c City) IsValid() bool {
	for _, candidate := range validCities {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCity converts raw input into a City.
func ParseCity(value string) (City, error) {
	for _, candidate := range validCities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid city %q", value)
}
