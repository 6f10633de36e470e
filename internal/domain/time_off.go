package domain

import "time"

// TimeOffStatus is the approval state of a time-off request.
type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "pending"
	TimeOffApproved TimeOffStatus = "approved"
	TimeOffRejected TimeOffStatus = "rejected"
)

// TimeOff is an agent absence over an inclusive date range.
type TimeOff struct {
	ID        string
	AgentID   string
	StartDate time.Time
	EndDate   time.Time
	Status    TimeOffStatus
	Reason    string
}

// Covers reports whether the record is approved and spans date.
func (t TimeOff) Covers(date time.Time) bool {
	if t.Status != TimeOffApproved {
		return false
	}
	d := DateOnly(date)
	return !d.Before(DateOnly(t.StartDate)) && !d.After(DateOnly(t.EndDate))
}
