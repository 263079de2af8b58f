package enums

import "fmt"

// SpotType describes the physical category of a parking spot.
type SpotType string

const (
	SpotTypeStandard SpotType = "standard"
	SpotTypeDisabled SpotType = "disabled"
	SpotTypeElectric SpotType = "electric"
	SpotTypeVIP      SpotType = "vip"
)

var validSpotTypes = []SpotType{
	SpotTypeStandard,
	SpotTypeDisabled,
	SpotTypeElectric,
	SpotTypeVIP,
}

// String implements fmt.Stringer.
func (s SpotType) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s SpotType) IsValid() bool {
	for _, candidate := range validSpotTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSpotType converts raw input into a SpotType.
func ParseSpotType(value string) (SpotType, error) {
	for _, candidate := range validSpotTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid spot type %q", value)
}
