package taxonomy

import "fmt"

// LocationType names a rung of the fixed location hierarchy.
type LocationType string

const (
	LocationCountry  LocationType = "country"
	LocationState    LocationType = "state"
	LocationDistrict LocationType = "district"
	LocationTaluka   LocationType = "taluka"
	LocationVillage  LocationType = "village"
	LocationArea     LocationType = "area"
	LocationLocality LocationType = "locality"
)

// LocationTypeLadder is the fixed total order of location types, top to
// bottom. A root must be the first entry; every child must be exactly the
// successor of its parent's type.
var LocationTypeLadder = []LocationType{
	LocationCountry,
	LocationState,
	LocationDistrict,
	LocationTaluka,
	LocationVillage,
	LocationArea,
	LocationLocality,
}

func ladderIndex(t LocationType) int {
	for i, lt := range LocationTypeLadder {
		if lt == t {
			return i
		}
	}
	return -1
}

// IsLocationType reports whether t is one of the ladder entries.
func IsLocationType(t LocationType) bool {
	return ladderIndex(t) >= 0
}

// NextType returns the child type one rung below t. ok is false at the
// bottom of the ladder or for an unknown type.
func NextType(t LocationType) (next LocationType, ok bool) {
	i := ladderIndex(t)
	if i < 0 || i >= len(LocationTypeLadder)-1 {
		return "", false
	}
	return LocationTypeLadder[i+1], true
}

// ParentType returns the type one rung above t. ok is false at the top of
// the ladder or for an unknown type.
func ParentType(t LocationType) (parent LocationType, ok bool) {
	i := ladderIndex(t)
	if i <= 0 {
		return "", false
	}
	return LocationTypeLadder[i-1], true
}

// ValidatePlacement checks a location's type against its position in the
// hierarchy and returns user-facing field errors. parentType is nil for a
// root placement.
func ValidatePlacement(t LocationType, parentType *LocationType) []string {
	var errs []string

	if !IsLocationType(t) {
		errs = append(errs, "Invalid location type.")
		return errs
	}

	if parentType == nil {
		if t != LocationCountry {
			errs = append(errs, "Root location must be type Country.")
		}
		return errs
	}

	expected, ok := NextType(*parentType)
	if !ok {
		errs = append(errs, fmt.Sprintf("Locations of type %s cannot have children.", *parentType))
		return errs
	}
	if t != expected {
		errs = append(errs, fmt.Sprintf("Child type must be: %s", expected))
	}

	return errs
}
