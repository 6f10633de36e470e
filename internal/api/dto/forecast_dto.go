package dto

import "time"

// GenerateForecastRequest payload.
type GenerateForecastRequest struct {
	ChannelID string  `json:"channel_id"`
	Date      string  `json:"date"`
	Skill     *string `json:"skill"`
}

// ForecastResponse is one forecast hour.
type ForecastResponse struct {
	ID                    string    `json:"id"`
	ChannelID             string    `json:"channel_id"`
	Skill                 *string   `json:"skill,omitempty"`
	Date                  string    `json:"date"`
	Hour                  int       `json:"hour"`
	PredictedVolume       int       `json:"predicted_volume"`
	ConfidenceLevel       float64   `json:"confidence_level"`
	MinVolume             int       `json:"min_volume"`
	MaxVolume             int       `json:"max_volume"`
	RequiredAgents        int       `json:"required_agents"`
	OptimalAgents         int       `json:"optimal_agents"`
	MinimumAgents         int       `json:"minimum_agents"`
	PredictedServiceLevel float64   `json:"predicted_service_level"`
	PredictedWaitTime     float64   `json:"predicted_wait_time"`
	SeasonalFactor        float64   `json:"seasonal_factor"`
	TrendFactor           float64   `json:"trend_factor"`
	Status                string    `json:"status"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// ForecastBatchResponse reports a generate call.
type ForecastBatchResponse struct {
	ChannelID        string             `json:"channel_id"`
	Date             string             `json:"date"`
	Generated        int                `json:"generated"`
	Skipped          int                `json:"skipped"`
	Failed           int                `json:"failed"`
	HistoryFallbacks int                `json:"history_fallbacks"`
	Forecasts        []ForecastResponse `json:"forecasts"`
}

// RefreshResponse reports a refresh call.
type RefreshResponse struct {
	Channels    int       `json:"channels"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	Hours       int       `json:"hours"`
	CompletedAt time.Time `json:"completed_at"`
}
