package scheduling

import (
	"math"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// ChannelSelector picks the channels an assigned agent will work.
type ChannelSelector interface {
	SelectChannels(agent domain.Agent, channels []domain.Channel) (primary string, secondary *string)
}

// SkillResolver decides which skills a shift requires.
type SkillResolver interface {
	RequiredSkills(agent domain.Agent, channel *domain.Channel) []string
}

// VolumeEstimator estimates the contacts a shift is expected to handle.
type VolumeEstimator interface {
	ExpectedVolume(a Assignment, channelID string, forecasts []domain.ForecastRecord) int
}

// EligibilitySelector takes the first two channels, in schedule order, the
// agent is eligible for. An agent eligible for none gets no channel.
type EligibilitySelector struct{}

func (EligibilitySelector) SelectChannels(agent domain.Agent, channels []domain.Channel) (string, *string) {
	var matched []string
	for _, ch := range channels {
		if agent.EligibleFor(ch.ID) {
			matched = append(matched, ch.ID)
		}
		if len(matched) == 2 {
			break
		}
	}
	switch len(matched) {
	case 0:
		return "", nil
	case 1:
		return matched[0], nil
	default:
		secondary := matched[1]
		return matched[0], &secondary
	}
}

// ChannelSkillResolver returns the channel's required skills the agent holds.
type ChannelSkillResolver struct{}

func (ChannelSkillResolver) RequiredSkills(agent domain.Agent, channel *domain.Channel) []string {
	if channel == nil {
		return nil
	}
	var skills []string
	for _, s := range channel.RequiredSkills {
		if agent.HasSkill(s) {
			skills = append(skills, s)
		}
	}
	return skills
}

// ForecastShareEstimator credits the shift with one agent's share of the
// primary channel's forecast volume for each hour it covers.
type ForecastShareEstimator struct{}

func (ForecastShareEstimator) ExpectedVolume(a Assignment, channelID string, forecasts []domain.ForecastRecord) int {
	var total float64
	for _, f := range forecasts {
		if f.ChannelID != channelID || !domain.DateOnly(f.Date).Equal(a.Date) {
			continue
		}
		if !a.Template.Contains(f.Hour) {
			continue
		}
		total += float64(f.PredictedVolume) / float64(max(1, f.RequiredAgents))
	}
	return int(math.Round(total))
}

// Strategies bundles the pluggable shift-detail strategies.
type Strategies struct {
	Channels ChannelSelector
	Skills   SkillResolver
	Volume   VolumeEstimator
}

// DefaultStrategies returns the reference strategy set.
func DefaultStrategies() Strategies {
	return Strategies{
		Channels: EligibilitySelector{},
		Skills:   ChannelSkillResolver{},
		Volume:   ForecastShareEstimator{},
	}
}
