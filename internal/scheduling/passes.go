package scheduling

import "github.com/spec-kit/workforce-service/internal/domain"

// Pass names, in the order the pipeline applies them.
const (
	PassBalanceWorkload     = "balance_workload"
	PassMinimizeOvertime    = "minimize_overtime"
	PassAgentPreferences    = "prioritize_agent_preferences"
	PassServiceLevelReorder = "optimize_for_service_level"
)

// OptimizationPass transforms a full set of assignments. Implementations
// must not mutate their input.
type OptimizationPass interface {
	Name() string
	Apply(assignments []Assignment) []Assignment
}

// NoopPass returns its input unchanged.
type NoopPass struct {
	PassName string
}

func (p NoopPass) Name() string { return p.PassName }

func (p NoopPass) Apply(assignments []Assignment) []Assignment { return assignments }

// PassRegistry maps pass names to implementations.
type PassRegistry map[string]OptimizationPass

// DefaultPasses registers a no-op for every known pass. The balancing and
// reassignment rules are not defined yet; replace entries to enable them.
func DefaultPasses() PassRegistry {
	return PassRegistry{
		PassBalanceWorkload:     NoopPass{PassName: PassBalanceWorkload},
		PassMinimizeOvertime:    NoopPass{PassName: PassMinimizeOvertime},
		PassAgentPreferences:    NoopPass{PassName: PassAgentPreferences},
		PassServiceLevelReorder: NoopPass{PassName: PassServiceLevelReorder},
	}
}

// Pipeline returns the enabled passes in application order.
func Pipeline(prefs domain.OptimizationPreferences, registry PassRegistry) []OptimizationPass {
	order := []struct {
		name    string
		enabled bool
	}{
		{PassBalanceWorkload, prefs.BalanceWorkload},
		{PassMinimizeOvertime, prefs.MinimizeOvertime},
		{PassAgentPreferences, prefs.PrioritizeAgentPreferences},
		{PassServiceLevelReorder, prefs.OptimizeForServiceLevel},
	}

	var passes []OptimizationPass
	for _, o := range order {
		if !o.enabled {
			continue
		}
		if p, ok := registry[o.name]; ok && p != nil {
			passes = append(passes, p)
		}
	}
	return passes
}

// ApplyPasses runs passes in sequence.
func ApplyPasses(assignments []Assignment, passes []OptimizationPass) []Assignment {
	out := assignments
	for _, p := range passes {
		out = p.Apply(out)
	}
	return out
}
