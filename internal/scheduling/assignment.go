package scheduling

import (
	"sort"
	"time"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// Assignment is one agent placed on one template for one date.
type Assignment struct {
	AgentID  string
	Date     time.Time
	Template ShiftTemplate
	Start    time.Time
	End      time.Time
	Type     domain.ShiftType
	Priority int
	Score    float64
}

// Hours returns the assignment length.
func (a Assignment) Hours() float64 {
	return a.End.Sub(a.Start).Hours()
}

// ScoreWeights weight the suitability components.
type ScoreWeights struct {
	Satisfaction float64
	Resolution   float64
	Weekend      float64
	Overtime     float64
}

// DefaultScoreWeights favours performance over flexibility.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Satisfaction: 0.4, Resolution: 0.4, Weekend: 0.1, Overtime: 0.1}
}

// SuitabilityScore rates an agent for assignment. Satisfaction is on a 0-5 scale.
func SuitabilityScore(agent domain.Agent, w ScoreWeights) float64 {
	score := w.Satisfaction*(agent.Performance.SatisfactionScore/5) +
		w.Resolution*agent.Performance.ResolutionRate
	if agent.Flexibility.WeekendEligible {
		score += w.Weekend
	}
	if agent.Flexibility.OvertimeEligible {
		score += w.Overtime
	}
	return score
}

// RankedAgent pairs an agent with its suitability score.
type RankedAgent struct {
	Agent domain.Agent
	Score float64
}

// RankAgents sorts by score descending; equal scores keep input order.
func RankAgents(agents []domain.Agent, w ScoreWeights) []RankedAgent {
	ranked := make([]RankedAgent, len(agents))
	for i, a := range agents {
		ranked[i] = RankedAgent{Agent: a, Score: SuitabilityScore(a, w)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// ExcludeTimeOff drops agents holding approved time off on date.
func ExcludeTimeOff(agents []domain.Agent, timeOff []domain.TimeOff, date time.Time) []domain.Agent {
	blocked := make(map[string]struct{})
	for _, off := range timeOff {
		if off.Covers(date) {
			blocked[off.AgentID] = struct{}{}
		}
	}
	out := make([]domain.Agent, 0, len(agents))
	for _, a := range agents {
		if _, ok := blocked[a.ID]; !ok {
			out = append(out, a)
		}
	}
	return out
}

// AssignmentEngine greedily places ranked agents on ranked templates.
type AssignmentEngine struct {
	Constraints      domain.ScheduleConstraints
	AllowSplitShifts bool
	Weights          ScoreWeights
	IsHoliday        func(time.Time) bool
}

// NewAssignmentEngine builds an engine with default weights.
func NewAssignmentEngine(constraints domain.ScheduleConstraints, prefs domain.OptimizationPreferences, isHoliday func(time.Time) bool) *AssignmentEngine {
	return &AssignmentEngine{
		Constraints:      constraints,
		AllowSplitShifts: prefs.AllowSplitShifts,
		Weights:          DefaultScoreWeights(),
		IsHoliday:        isHoliday,
	}
}

// Assign gives each template, in order, to the highest-ranked eligible
// agent. Templates without an eligible agent produce no assignment.
func (e *AssignmentEngine) Assign(date time.Time, templates []RankedTemplate, agents []domain.Agent, ledger *Ledger) []Assignment {
	date = domain.DateOnly(date)
	ranked := RankAgents(e.available(date, agents), e.Weights)

	var out []Assignment
	for _, tpl := range templates {
		start := tpl.Start.On(date)
		end := tpl.End.On(date)
		for _, ra := range ranked {
			shiftType, ok := e.eligible(ra.Agent, date, start, end, tpl, ledger)
			if !ok {
				continue
			}
			a := Assignment{
				AgentID:  ra.Agent.ID,
				Date:     date,
				Template: tpl.ShiftTemplate,
				Start:    start,
				End:      end,
				Type:     shiftType,
				Priority: tpl.Priority,
				Score:    ra.Score,
			}
			ledger.Record(a)
			out = append(out, a)
			break
		}
	}
	return out
}

func (e *AssignmentEngine) available(date time.Time, agents []domain.Agent) []domain.Agent {
	weekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday
	holiday := e.IsHoliday != nil && e.IsHoliday(date)

	out := make([]domain.Agent, 0, len(agents))
	for _, a := range agents {
		if a.Status != domain.AgentStatusActive {
			continue
		}
		if weekend && !a.Flexibility.WeekendEligible {
			continue
		}
		if holiday && !a.Flexibility.HolidayEligible {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (e *AssignmentEngine) eligible(agent domain.Agent, date, start, end time.Time, tpl RankedTemplate, ledger *Ledger) (domain.ShiftType, bool) {
	hours := end.Sub(start).Hours()
	c := e.Constraints

	worksToday := ledger.WorksOn(agent.ID, date)
	if worksToday && !e.AllowSplitShifts {
		return "", false
	}
	if ledger.DailyHours(agent.ID, date)+hours > e.dailyLimit(agent) {
		return "", false
	}

	projected := ledger.WeeklyHours(agent.ID, date) + hours
	if projected > e.weeklyLimit(agent) {
		return "", false
	}

	gap := time.Duration(c.MinTimeBetweenShifts * float64(time.Hour))
	if !ledger.RestSatisfied(agent.ID, start, end, gap) {
		return "", false
	}

	if !worksToday {
		if c.MaxConsecutiveDays > 0 && ledger.ConsecutiveDaysBefore(agent.ID, date) >= c.MaxConsecutiveDays {
			return "", false
		}
		if c.MinDaysOffPerWeek > 0 && ledger.DaysWorkedInWeek(agent.ID, date) >= 7-c.MinDaysOffPerWeek {
			return "", false
		}
	}

	if c.MaxHoursPerWeek > 0 && projected > c.MaxHoursPerWeek {
		return domain.ShiftTypeOvertime, true
	}
	return tpl.Type, true
}

func (e *AssignmentEngine) dailyLimit(agent domain.Agent) float64 {
	return DailyLimit(agent, e.Constraints)
}

func (e *AssignmentEngine) weeklyLimit(agent domain.Agent) float64 {
	return WeeklyLimit(agent, e.Constraints)
}

// DailyLimit is the tighter of the agent's and the schedule's daily hours.
func DailyLimit(agent domain.Agent, c domain.ScheduleConstraints) float64 {
	return lowestPositive(agent.MaxHoursPerDay, c.MaxHoursPerDay)
}

// WeeklyLimit caps non-overtime agents at the standard week.
func WeeklyLimit(agent domain.Agent, c domain.ScheduleConstraints) float64 {
	limit := agent.MaxHoursPerWeek
	if limit <= 0 {
		limit = c.MaxHoursPerWeek
	}
	if !agent.Flexibility.OvertimeEligible {
		limit = lowestPositive(limit, c.MaxHoursPerWeek)
	}
	if limit <= 0 {
		return 7 * 24
	}
	return limit
}

func lowestPositive(a, b float64) float64 {
	switch {
	case a <= 0 && b <= 0:
		return 24
	case a <= 0:
		return b
	case b <= 0:
		return a
	default:
		return min(a, b)
	}
}
