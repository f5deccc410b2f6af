package rota

import (
	"strings"

	"go.uber.org/zap"
)

// RequestKind enumerates the four supported scheduling request shapes.
type RequestKind int

const (
	OffSpecificDate RequestKind = iota
	OffRecurringDay
	WorkSpecificShift
	WorkRecurringShift
)

func (k RequestKind) String() string {
	switch k {
	case OffSpecificDate:
		return "OFF_SPECIFIC_DATE"
	case OffRecurringDay:
		return "OFF_RECURRING_DAY"
	case WorkSpecificShift:
		return "WORK_SPECIFIC_SHIFT"
	case WorkRecurringShift:
		return "WORK_RECURRING_SHIFT"
	default:
		return "UNKNOWN"
	}
}

// ParseRequestKind resolves the wire encoding of a request kind.
func ParseRequestKind(raw string) (RequestKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "OFF_SPECIFIC_DATE":
		return OffSpecificDate, true
	case "OFF_RECURRING_DAY":
		return OffRecurringDay, true
	case "WORK_SPECIFIC_SHIFT":
		return WorkSpecificShift, true
	case "WORK_RECURRING_SHIFT":
		return WorkRecurringShift, true
	}
	return OffSpecificDate, false
}

// Request is a raw per-employee scheduling request as stored at the boundary.
// Value carries a bare ISO date, a weekday name, or "<date-or-weekday> | <shift>"
// depending on Kind.
type Request struct {
	StaffName string
	Kind      RequestKind
	Value     string
}

// Constraint is a request reduced to a concrete per-day rule. ForceOn pins the
// employee to Shift on Day; otherwise the whole day is forced off.
type Constraint struct {
	EmployeeID string
	Day        int
	ForceOn    bool
	Shift      ShiftType
}

// Dropped records a request that compiled to no constraint and why.
type Dropped struct {
	Request Request `json:"request"`
	Reason  string  `json:"reason"`
}

// Compiler binds raw requests to day indices and employee IDs. Requests that
// cannot be resolved never fail a solve: they compile to nothing, get logged,
// and are reported back so a manager can see what was not honored.
type Compiler struct {
	cal    *Calendar
	byName map[string]string
	logger *zap.Logger
}

// NewCompiler indexes the employee directory by display name.
func NewCompiler(cal *Calendar, employees []Employee, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]string, len(employees))
	for _, e := range employees {
		byName[strings.ToLower(e.Name)] = e.ID
	}
	return &Compiler{cal: cal, byName: byName, logger: logger}
}

// Compile turns raw requests into hard constraints. Contradictory constraints
// are passed through untouched; the contradiction surfaces as infeasibility.
func (c *Compiler) Compile(requests []Request) ([]Constraint, []Dropped) {
	var constraints []Constraint
	var dropped []Dropped

	drop := func(req Request, reason string) {
		c.logger.Warn("schedule request dropped",
			zap.String("staff", req.StaffName),
			zap.String("kind", req.Kind.String()),
			zap.String("value", req.Value),
			zap.String("reason", reason),
		)
		dropped = append(dropped, Dropped{Request: req, Reason: reason})
	}

	for _, req := range requests {
		empID, ok := c.byName[strings.ToLower(strings.TrimSpace(req.StaffName))]
		if !ok {
			drop(req, "unknown employee")
			continue
		}

		switch req.Kind {
		case OffSpecificDate:
			date, ok := ParseDate(req.Value)
			if !ok {
				drop(req, "unparseable date")
				continue
			}
			day, ok := c.cal.DayIndexOf(date)
			if !ok {
				drop(req, "date outside roster period")
				continue
			}
			constraints = append(constraints, Constraint{EmployeeID: empID, Day: day})

		case OffRecurringDay:
			weekday, ok := ParseWeekday(req.Value)
			if !ok {
				drop(req, "unparseable weekday")
				continue
			}
			for _, day := range c.cal.DayIndicesFor(weekday) {
				constraints = append(constraints, Constraint{EmployeeID: empID, Day: day})
			}

		case WorkSpecificShift:
			target, shift, ok := splitShiftValue(req.Value)
			if !ok {
				drop(req, "unparseable shift value")
				continue
			}
			date, ok := ParseDate(target)
			if !ok {
				drop(req, "unparseable date")
				continue
			}
			day, ok := c.cal.DayIndexOf(date)
			if !ok {
				drop(req, "date outside roster period")
				continue
			}
			constraints = append(constraints, Constraint{EmployeeID: empID, Day: day, ForceOn: true, Shift: shift})

		case WorkRecurringShift:
			target, shift, ok := splitShiftValue(req.Value)
			if !ok {
				drop(req, "unparseable shift value")
				continue
			}
			weekday, ok := ParseWeekday(target)
			if !ok {
				drop(req, "unparseable weekday")
				continue
			}
			for _, day := range c.cal.DayIndicesFor(weekday) {
				constraints = append(constraints, Constraint{EmployeeID: empID, Day: day, ForceOn: true, Shift: shift})
			}

		default:
			drop(req, "unknown request kind")
		}
	}

	return constraints, dropped
}

// splitShiftValue parses "<date-or-weekday> | <shift name>".
func splitShiftValue(raw string) (target string, shift ShiftType, ok bool) {
	parts := strings.SplitN(raw, "|", 2)
	if len(parts) != 2 {
		return "", ShiftNone, false
	}
	shift, ok = ParseShiftType(parts[1])
	if !ok {
		return "", ShiftNone, false
	}
	return strings.TrimSpace(parts[0]), shift, true
}
