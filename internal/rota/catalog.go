package rota

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ShiftType enumerates the fixed catalog of shift slots a site runs each day.
type ShiftType int

const (
	ShiftOpening ShiftType = iota
	ShiftMiddle
	ShiftClosing
	ShiftPeakLunch
	ShiftPeakDinner

	numShiftTypes
)

// ShiftTypes lists every shift type in model order.
var ShiftTypes = [numShiftTypes]ShiftType{ShiftOpening, ShiftMiddle, ShiftClosing, ShiftPeakLunch, ShiftPeakDinner}

// ShiftNone marks an unassigned cell in an extracted schedule.
const ShiftNone ShiftType = -1

// durationTenths holds each shift length in tenths of an hour. Keeping hours
// as scaled integers avoids floating-point comparisons inside the solver.
var durationTenths = [numShiftTypes]int64{
	ShiftOpening:    75,
	ShiftMiddle:     85,
	ShiftClosing:    80,
	ShiftPeakLunch:  40,
	ShiftPeakDinner: 40,
}

var shiftNames = [numShiftTypes]string{
	ShiftOpening:    "Opening",
	ShiftMiddle:     "Middle",
	ShiftClosing:    "Closing",
	ShiftPeakLunch:  "Peak Lunch",
	ShiftPeakDinner: "Peak Dinner",
}

var shiftCodes = [numShiftTypes]string{
	ShiftOpening:    "OPN",
	ShiftMiddle:     "MID",
	ShiftClosing:    "CLS",
	ShiftPeakLunch:  "PKL",
	ShiftPeakDinner: "PKD",
}

func (s ShiftType) String() string {
	if s < 0 || int(s) >= int(numShiftTypes) {
		return ""
	}
	return shiftNames[s]
}

// Code returns the short column code used in schedule tables and exports.
func (s ShiftType) Code() string {
	if s < 0 || int(s) >= int(numShiftTypes) {
		return ""
	}
	return shiftCodes[s]
}

// DurationTenths returns the shift length in tenths of an hour.
func (s ShiftType) DurationTenths() int64 {
	return durationTenths[s]
}

// Hours returns the shift length in hours.
func (s ShiftType) Hours() float64 {
	return float64(durationTenths[s]) / 10
}

// FlexOnly reports whether the shift is restricted to flexible-hours staff.
func (s ShiftType) FlexOnly() bool {
	return s == ShiftPeakLunch || s == ShiftPeakDinner
}

// MarshalJSON encodes the shift as its display name; ShiftNone becomes "".
func (s ShiftType) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a display name or "" for ShiftNone.
func (s *ShiftType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if name == "" {
		*s = ShiftNone
		return nil
	}
	parsed, ok := ParseShiftType(name)
	if !ok {
		return fmt.Errorf("unknown shift type %q", name)
	}
	*s = parsed
	return nil
}

// ParseShiftType resolves a display name ("Opening", "Peak Lunch", ...) to its
// shift type, case-insensitively.
func ParseShiftType(name string) (ShiftType, bool) {
	name = strings.TrimSpace(name)
	for _, s := range ShiftTypes {
		if strings.EqualFold(shiftNames[s], name) {
			return s, true
		}
	}
	return ShiftNone, false
}
