package enums

import "fmt"

// PropertyType classifies the property a lead is interested in.
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "Apartment"
	PropertyTypeVilla     PropertyType = "Villa"
	PropertyTypePlot      PropertyType = "Plot"
	PropertyTypeOffice    PropertyType = "Office"
	PropertyTypeRetail    PropertyType = "Retail"
)

var validPropertyTypes = []PropertyType{
	PropertyTypeApartment,
	PropertyTypeVilla,
	PropertyTypePlot,
	PropertyTypeOffice,
	PropertyTypeRetail,
}

// String implements fmt.Stringer.
func (p PropertyType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PropertyType.
func (p PropertyType) IsValid() bool {
	for _, candidate := range validPropertyTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// RequiresBHK reports whether a bedroom count must accompany this type.
func (p PropertyType) RequiresBHK() bool {
	return p == PropertyTypeApartment || p == PropertyTypeVilla
}

// ParsePropertyType converts raw input into a PropertyType.
func ParsePropertyType(value string) (PropertyType, error) {
	for _, candidate := range validPropertyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid property type %q", value)
}
