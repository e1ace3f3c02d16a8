package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextAndParentType(t *testing.T) {
	next, ok := NextType(LocationCountry)
	assert.True(t, ok)
	assert.Equal(t, LocationState, next)

	_, ok = NextType(LocationLocality)
	assert.False(t, ok)

	parent, ok := ParentType(LocationState)
	assert.True(t, ok)
	assert.Equal(t, LocationCountry, parent)

	_, ok = ParentType(LocationCountry)
	assert.False(t, ok)

	_, ok = NextType(LocationType("continent"))
	assert.False(t, ok)
}

func TestValidatePlacement(t *testing.T) {
	state := LocationState
	country := LocationCountry
	locality := LocationLocality

	// district under state is the correct rung
	assert.Empty(t, ValidatePlacement(LocationDistrict, &state))

	// district under country skips a level
	errs := ValidatePlacement(LocationDistrict, &country)
	assert.Equal(t, []string{"Child type must be: state"}, errs)

	// same-level nesting is rejected too
	errs = ValidatePlacement(LocationState, &state)
	assert.Equal(t, []string{"Child type must be: district"}, errs)

	// a root must be a country
	errs = ValidatePlacement(LocationState, nil)
	assert.Equal(t, []string{"Root location must be type Country."}, errs)
	assert.Empty(t, ValidatePlacement(LocationCountry, nil))

	// the bottom rung cannot have children
	errs = ValidatePlacement(LocationLocality, &locality)
	assert.Len(t, errs, 1)

	// unknown type
	errs = ValidatePlacement(LocationType("continent"), nil)
	assert.Equal(t, []string{"Invalid location type."}, errs)
}
