package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workforce-service/internal/domain"
)

func at(clock string) time.Time {
	return domain.MustClockTime(clock).On(monday)
}

func TestPlaceBreaks(t *testing.T) {
	type window struct {
		kind  domain.BreakKind
		start string
		end   string
	}

	tests := []struct {
		name        string
		start, end  string
		constraints domain.ScheduleConstraints
		expected    []window
	}{
		{
			name:        "eight hours gets two breaks around lunch",
			start:       "08:00",
			end:         "16:00",
			constraints: domain.DefaultConstraints(),
			expected: []window{
				{domain.BreakKindBreak, "10:40", "11:10"},
				{domain.BreakKindLunch, "11:30", "12:30"},
				{domain.BreakKindBreak, "13:20", "13:50"},
			},
		},
		{
			name:        "break colliding with lunch moves after it",
			start:       "08:00",
			end:         "14:00",
			constraints: domain.DefaultConstraints(),
			expected: []window{
				{domain.BreakKindLunch, "10:30", "11:30"},
				{domain.BreakKindBreak, "11:30", "12:00"},
			},
		},
		{
			name:        "four hours gets a single break",
			start:       "08:00",
			end:         "12:00",
			constraints: domain.DefaultConstraints(),
			expected: []window{
				{domain.BreakKindBreak, "10:00", "10:30"},
			},
		},
		{
			name:        "unset durations use defaults",
			start:       "08:00",
			end:         "16:00",
			constraints: domain.ScheduleConstraints{},
			expected: []window{
				{domain.BreakKindBreak, "10:40", "10:55"},
				{domain.BreakKindLunch, "11:30", "12:30"},
				{domain.BreakKindBreak, "13:20", "13:35"},
			},
		},
		{
			name:        "short shift has no breaks",
			start:       "08:00",
			end:         "11:00",
			constraints: domain.DefaultConstraints(),
			expected:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlaceBreaks(at(tt.start), at(tt.end), tt.constraints)
			require.Len(t, got, len(tt.expected))
			for i, w := range tt.expected {
				assert.Equal(t, w.kind, got[i].Kind)
				assert.Equal(t, at(w.start), got[i].Start)
				assert.Equal(t, at(w.end), got[i].End)
			}
		})
	}
}

func TestPlaceBreaksStayInsideShift(t *testing.T) {
	for _, tpl := range DefaultCatalog() {
		start, end := tpl.Start.On(monday), tpl.End.On(monday)
		breaks := PlaceBreaks(start, end, domain.DefaultConstraints())
		for i, b := range breaks {
			assert.True(t, b.Start.After(start), tpl.Name)
			assert.True(t, b.End.Before(end), tpl.Name)
			if i > 0 {
				assert.False(t, b.Start.Before(breaks[i-1].End), tpl.Name)
			}
		}
	}
}

func TestPlaceBreaksOvernight(t *testing.T) {
	start := at("22:00")
	breaks := PlaceBreaks(start, at("06:00"), domain.DefaultConstraints())

	require.Len(t, breaks, 3)
	assert.Equal(t, domain.BreakKindLunch, breaks[1].Kind)
	assert.Equal(t, start.Add(3*time.Hour+30*time.Minute), breaks[1].Start)
	assert.True(t, breaks[2].End.Before(start.Add(8*time.Hour)))
}
