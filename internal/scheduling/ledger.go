package scheduling

import (
	"time"

	"github.com/spec-kit/workforce-service/internal/domain"
)

type interval struct {
	start time.Time
	end   time.Time
}

type weekKey struct {
	year int
	week int
}

// Ledger tracks what each agent has been assigned so far in one run.
type Ledger struct {
	shifts map[string][]interval
	hours  map[string]map[weekKey]float64
	days   map[string]map[string]float64
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		shifts: make(map[string][]interval),
		hours:  make(map[string]map[weekKey]float64),
		days:   make(map[string]map[string]float64),
	}
}

// Record adds an assignment to the agent's history.
func (l *Ledger) Record(a Assignment) {
	l.add(a.AgentID, a.Start, a.End)
}

// RecordShift seeds the ledger from an already persisted shift.
func (l *Ledger) RecordShift(s domain.Shift) {
	l.add(s.AgentID, s.StartTime, s.StartTime.Add(s.Duration()))
}

func (l *Ledger) add(agentID string, start, end time.Time) {
	hours := end.Sub(start).Hours()
	l.shifts[agentID] = append(l.shifts[agentID], interval{start: start, end: end})

	wk := isoWeek(start)
	if l.hours[agentID] == nil {
		l.hours[agentID] = make(map[weekKey]float64)
	}
	l.hours[agentID][wk] += hours

	if l.days[agentID] == nil {
		l.days[agentID] = make(map[string]float64)
	}
	l.days[agentID][domain.DateKey(start)] += hours
}

// WeeklyHours returns hours assigned in the ISO week containing date.
func (l *Ledger) WeeklyHours(agentID string, date time.Time) float64 {
	return l.hours[agentID][isoWeek(date)]
}

// DailyHours returns hours assigned on date.
func (l *Ledger) DailyHours(agentID string, date time.Time) float64 {
	return l.days[agentID][domain.DateKey(date)]
}

// WorksOn reports whether the agent already has a shift on date.
func (l *Ledger) WorksOn(agentID string, date time.Time) bool {
	_, ok := l.days[agentID][domain.DateKey(date)]
	return ok
}

// RestSatisfied reports whether [start,end) keeps at least gap from every
// shift already held by the agent.
func (l *Ledger) RestSatisfied(agentID string, start, end time.Time, gap time.Duration) bool {
	for _, iv := range l.shifts[agentID] {
		if !start.Before(iv.end.Add(gap)) {
			continue
		}
		if !end.Add(gap).After(iv.start) {
			continue
		}
		return false
	}
	return true
}

// ConsecutiveDaysBefore counts the unbroken run of worked days ending the day before date.
func (l *Ledger) ConsecutiveDaysBefore(agentID string, date time.Time) int {
	count := 0
	for d := domain.DateOnly(date).AddDate(0, 0, -1); ; d = d.AddDate(0, 0, -1) {
		if !l.WorksOn(agentID, d) {
			return count
		}
		count++
	}
}

// DaysWorkedInWeek counts distinct worked days in the ISO week of date.
func (l *Ledger) DaysWorkedInWeek(agentID string, date time.Time) int {
	wk := isoWeek(date)
	count := 0
	for key := range l.days[agentID] {
		d, err := time.Parse(time.DateOnly, key)
		if err == nil && isoWeek(d) == wk {
			count++
		}
	}
	return count
}

func isoWeek(t time.Time) weekKey {
	y, w := t.ISOWeek()
	return weekKey{year: y, week: w}
}
