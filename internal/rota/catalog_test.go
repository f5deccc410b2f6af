package rota

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftTypeCatalog(t *testing.T) {
	assert.Equal(t, 7.5, ShiftOpening.Hours())
	assert.Equal(t, 8.5, ShiftMiddle.Hours())
	assert.Equal(t, 8.0, ShiftClosing.Hours())
	assert.Equal(t, 4.0, ShiftPeakLunch.Hours())
	assert.Equal(t, 4.0, ShiftPeakDinner.Hours())

	assert.False(t, ShiftOpening.FlexOnly())
	assert.False(t, ShiftMiddle.FlexOnly())
	assert.False(t, ShiftClosing.FlexOnly())
	assert.True(t, ShiftPeakLunch.FlexOnly())
	assert.True(t, ShiftPeakDinner.FlexOnly())

	assert.Equal(t, "OPN", ShiftOpening.Code())
	assert.Equal(t, "PKD", ShiftPeakDinner.Code())
	assert.Equal(t, "", ShiftNone.Code())
}

func TestParseShiftType(t *testing.T) {
	s, ok := ParseShiftType("peak lunch")
	require.True(t, ok)
	assert.Equal(t, ShiftPeakLunch, s)

	s, ok = ParseShiftType(" Closing ")
	require.True(t, ok)
	assert.Equal(t, ShiftClosing, s)

	_, ok = ParseShiftType("Graveyard")
	assert.False(t, ok)
}

func TestShiftTypeJSON(t *testing.T) {
	data, err := json.Marshal(ShiftPeakDinner)
	require.NoError(t, err)
	assert.Equal(t, `"Peak Dinner"`, string(data))

	var s ShiftType
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, ShiftPeakDinner, s)

	data, err = json.Marshal(ShiftNone)
	require.NoError(t, err)
	assert.Equal(t, `""`, string(data))

	require.NoError(t, json.Unmarshal([]byte(`""`), &s))
	assert.Equal(t, ShiftNone, s)

	assert.Error(t, json.Unmarshal([]byte(`"Graveyard"`), &s))
}
