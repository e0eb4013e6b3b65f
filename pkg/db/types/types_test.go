package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListValueScanRoundTrip(t *testing.T) {
	list := StringList{"hot", "follow-up", "nri"}

	value, err := list.Value()
	require.NoError(t, err)

	var scanned StringList
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, list, scanned)
}

func TestStringListScanNilYieldsEmpty(t *testing.T) {
	var scanned StringList
	require.NoError(t, scanned.Scan(nil))
	assert.NotNil(t, scanned)
	assert.Len(t, scanned, 0)
}

func TestStringListNilValueEncodesEmptyArray(t *testing.T) {
	var list StringList
	value, err := list.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
}

func TestChangeDiffRoundTrip(t *testing.T) {
	diff := ChangeDiff{
		Action: DiffActionUpdated,
		Changes: map[string]FieldChange{
			"status": {From: "New", To: "Qualified"},
		},
	}

	value, err := diff.Value()
	require.NoError(t, err)

	var scanned ChangeDiff
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, DiffActionUpdated, scanned.Action)
	require.Contains(t, scanned.Changes, "status")
	assert.Equal(t, "New", scanned.Changes["status"].From)
}

func TestChangeDiffCreatedShape(t *testing.T) {
	diff := ChangeDiff{Action: DiffActionCreated, Fields: []string{"fullName", "phone"}}

	value, err := diff.Value()
	require.NoError(t, err)
	assert.Contains(t, value.(string), `"fields":["fullName","phone"]`)
}
