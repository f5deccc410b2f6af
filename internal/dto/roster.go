package dto

import (
	"github.com/shiftwise/rota-api/internal/rota"
)

// GenerateRosterRequest instructs the solver to build a roster proposal.
// ClosingStaff and DailyBudgets hold one value per weekday slot, aligned to
// the period's first day.
type GenerateRosterRequest struct {
	StartDate        string    `json:"startDate" validate:"required,datetime=2006-01-02"`
	NumDays          int       `json:"numDays" validate:"required,min=1,max=28"`
	ClosingStaff     []int     `json:"closingStaff" validate:"required,len=7,dive,min=1,max=12"`
	DailyBudgets     []float64 `json:"dailyBudgets" validate:"required,len=7,dive,gt=0"`
	TimeLimitSeconds int       `json:"timeLimitSeconds" validate:"omitempty,min=1,max=120"`
}

// DroppedRequest reports a scheduling wish that could not be applied.
type DroppedRequest struct {
	StaffName string `json:"staffName"`
	Kind      string `json:"kind"`
	Value     string `json:"value"`
	Reason    string `json:"reason"`
}

// GenerateRosterResponse returns the solved proposal.
type GenerateRosterResponse struct {
	ProposalID      string           `json:"proposalId"`
	Outcome         string           `json:"outcome"`
	Schedule        *rota.Schedule   `json:"schedule"`
	DroppedRequests []DroppedRequest `json:"droppedRequests"`
	ElapsedMillis   int64            `json:"elapsedMillis"`
}

// SaveRosterRequest persists a generated proposal.
type SaveRosterRequest struct {
	ProposalID string `json:"proposalId" validate:"required,uuid4"`
	Label      string `json:"label" validate:"omitempty,max=120"`
}

// ListRostersQuery filters saved rosters by period start date.
type ListRostersQuery struct {
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
