package forecasting

import (
	"math"

	"github.com/spec-kit/workforce-service/internal/domain"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

const (
	overloadServiceLevel = 0.1
	overloadWaitSeconds  = 300
	maxServiceLevel      = 0.99
	ceilTolerance        = 1e-9
)

// Staffing is the agent sizing for one hour of predicted volume.
type Staffing struct {
	WorkloadErlangs       float64
	RequiredAgents        int
	OptimalAgents         int
	MinimumAgents         int
	PredictedServiceLevel float64
	PredictedWaitTime     float64 // seconds
}

// Size converts predicted volume into agent requirements using a
// closed-form workload approximation.
func Size(volume int, ch domain.Channel, skill *string) (Staffing, error) {
	if volume < 0 {
		return Staffing{}, apperrors.NewValidationError("predicted volume must not be negative",
			map[string]any{"volume": volume})
	}
	if ch.ShrinkageFactor < 0 || ch.ShrinkageFactor >= 1 {
		return Staffing{}, apperrors.NewValidationError("shrinkage factor must be in [0,1)",
			map[string]any{"channel_id": ch.ID, "shrinkage_factor": ch.ShrinkageFactor})
	}

	totalHandleTime := ch.HandleTimeFor(skill) + ch.WrapUpTime
	erlangs := float64(volume) * totalHandleTime / 60
	adjusted := erlangs / (1 - ch.ShrinkageFactor)
	baseAgents := ceil(adjusted)

	buffer := 1 + (ch.ServiceLevelTarget-0.5)*0.5
	required := max(ch.MinStaffingLevel, ceil(float64(baseAgents)*buffer))
	optimal := max(required, ceil(float64(required)*(1+ch.PreferredStaffingBuffer)))

	st := Staffing{
		WorkloadErlangs: erlangs,
		RequiredAgents:  required,
		OptimalAgents:   optimal,
		MinimumAgents:   ch.MinStaffingLevel,
	}
	st.PredictedServiceLevel, st.PredictedWaitTime = ServiceEstimate(erlangs, required)
	return st, nil
}

// ServiceEstimate approximates service level and wait time from utilization.
// It is intentionally coarse and not an Erlang-C result.
func ServiceEstimate(erlangs float64, agents int) (serviceLevel, waitSeconds float64) {
	if agents <= 0 {
		if erlangs <= 0 {
			return maxServiceLevel, 0
		}
		return overloadServiceLevel, overloadWaitSeconds
	}
	u := erlangs / float64(agents)
	if u >= 1 {
		return overloadServiceLevel, overloadWaitSeconds
	}
	return clamp(1-u, overloadServiceLevel, maxServiceLevel), u * 60
}

func ceil(v float64) int {
	return int(math.Ceil(v - ceilTolerance))
}
