package rota

import "time"

// EmployeeRow is one employee's line in the schedule table: one cell per day
// (ShiftNone when unassigned) plus total scheduled hours.
type EmployeeRow struct {
	EmployeeID string      `json:"employeeId"`
	Name       string      `json:"name"`
	Role       string      `json:"role"`
	Shifts     []ShiftType `json:"shifts"`
	TotalHours float64     `json:"totalHours"`
}

// DaySummary compares scheduled non-GeneralManager hours against the day's budget.
type DaySummary struct {
	Day            int       `json:"day"`
	Date           time.Time `json:"date"`
	Weekday        string    `json:"weekday"`
	ScheduledHours float64   `json:"scheduledHours"`
	BudgetHours    float64   `json:"budgetHours"`
}

// Schedule is the decoded solver output: per-employee rows, the daily
// budget-utilization summary, and the scalar objective score. Created fresh
// per solve and never mutated afterwards.
type Schedule struct {
	StartDate time.Time     `json:"startDate"`
	NumDays   int           `json:"numDays"`
	Rows      []EmployeeRow `json:"rows"`
	Days      []DaySummary  `json:"days"`
	Objective int64         `json:"objective"`
}

// Extract decodes a valuation into a schedule. It is a pure function of the
// valuation and the model metadata: it trusts the backend's feasibility
// guarantee and re-derives nothing.
func Extract(v *Valuation) *Schedule {
	m := v.model
	numDays := m.cal.NumDays()

	schedule := &Schedule{
		StartDate: m.cal.StartDate(),
		NumDays:   numDays,
		Rows:      make([]EmployeeRow, 0, len(m.employees)),
		Days:      make([]DaySummary, 0, numDays),
		Objective: v.Objective(),
	}

	dayTenths := make([]int64, numDays)
	for e, emp := range m.employees {
		row := EmployeeRow{
			EmployeeID: emp.ID,
			Name:       emp.Name,
			Role:       emp.Role.String(),
			Shifts:     make([]ShiftType, numDays),
		}
		var totalTenths int64
		for d := 0; d < numDays; d++ {
			row.Shifts[d] = ShiftNone
			for _, s := range ShiftTypes {
				if !v.Assigned(e, d, s) {
					continue
				}
				row.Shifts[d] = s
				totalTenths += s.DurationTenths()
				if emp.Role != RoleGeneralManager {
					dayTenths[d] += s.DurationTenths()
				}
				break
			}
		}
		row.TotalHours = float64(totalTenths) / 10
		schedule.Rows = append(schedule.Rows, row)
	}

	for d := 0; d < numDays; d++ {
		schedule.Days = append(schedule.Days, DaySummary{
			Day:            d,
			Date:           m.cal.DateOf(d),
			Weekday:        m.cal.WeekdayOf(d).String(),
			ScheduledHours: float64(dayTenths[d]) / 10,
			BudgetHours:    float64(m.period.BudgetTenthsFor(d)) / 10,
		})
	}

	return schedule
}
