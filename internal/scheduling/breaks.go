package scheduling

import (
	"sort"
	"time"

	"github.com/spec-kit/workforce-service/internal/domain"
)

const (
	defaultBreakMinutes = 15
	defaultLunchMinutes = 60
	breakBlock          = 4 * time.Hour
	lunchThreshold      = 6 * time.Hour
)

// PlaceBreaks lays out one break per completed four-hour block, evenly
// spaced from the start, plus a lunch centered on the midpoint for shifts
// of six hours or more. Every window lies strictly inside the shift.
func PlaceBreaks(start, end time.Time, constraints domain.ScheduleConstraints) []domain.Break {
	length := domain.ShiftDuration(start, end)
	end = start.Add(length)
	if length < breakBlock {
		return nil
	}

	breakLen := minutesOr(constraints.MinBreakDuration, defaultBreakMinutes)
	lunchLen := minutesOr(constraints.LunchBreakDuration, defaultLunchMinutes)

	var placed []domain.Break
	var lunch *domain.Break
	if length >= lunchThreshold {
		mid := start.Add(length / 2)
		l := domain.Break{Kind: domain.BreakKindLunch, Start: mid.Add(-lunchLen / 2), End: mid.Add(lunchLen - lunchLen/2)}
		if strictlyInside(l, start, end) {
			lunch = &l
			placed = append(placed, l)
		}
	}

	n := int(length / breakBlock)
	for k := 1; k <= n; k++ {
		at := start.Add(length * time.Duration(k) / time.Duration(n+1))
		b := domain.Break{Kind: domain.BreakKindBreak, Start: at, End: at.Add(breakLen)}
		if lunch != nil && overlaps(b, *lunch) {
			b = domain.Break{Kind: domain.BreakKindBreak, Start: lunch.End, End: lunch.End.Add(breakLen)}
		}
		if !strictlyInside(b, start, end) || overlapsAny(b, placed) {
			continue
		}
		placed = append(placed, b)
	}

	sort.Slice(placed, func(i, j int) bool {
		return placed[i].Start.Before(placed[j].Start)
	})
	return placed
}

func minutesOr(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Minute
}

func strictlyInside(b domain.Break, start, end time.Time) bool {
	return b.Start.After(start) && b.End.Before(end) && b.End.After(b.Start)
}

func overlaps(a, b domain.Break) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

func overlapsAny(b domain.Break, others []domain.Break) bool {
	for _, o := range others {
		if overlaps(b, o) {
			return true
		}
	}
	return false
}
