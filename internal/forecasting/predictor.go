package forecasting

import (
	"math"

	"github.com/spec-kit/workforce-service/internal/domain"
)

const (
	fallbackVolume     = 10
	fallbackConfidence = 0.30
	fallbackMin        = 5
	fallbackMax        = 20

	minConfidence = 0.40
	maxConfidence = 0.95
)

// Prediction is an hourly volume estimate with its confidence band.
type Prediction struct {
	Volume     int
	Confidence float64
	MinVolume  int
	MaxVolume  int
}

// FallbackPrediction is returned when no history is available.
func FallbackPrediction() Prediction {
	return Prediction{
		Volume:     fallbackVolume,
		Confidence: fallbackConfidence,
		MinVolume:  fallbackMin,
		MaxVolume:  fallbackMax,
	}
}

// Predict combines history with seasonal and external factors.
func Predict(samples []domain.VolumeSample, f Factors, ext ExternalFactors) Prediction {
	if len(samples) == 0 {
		return FallbackPrediction()
	}

	var sum float64
	for _, s := range samples {
		sum += float64(s.Volume)
	}
	base := sum / float64(len(samples))

	var sq float64
	for _, s := range samples {
		d := float64(s.Volume) - base
		sq += d * d
	}
	variance := sq / float64(len(samples))

	adjusted := base * f.Seasonal * f.Trend
	final := int(math.Round(adjusted * ext.Holiday * ext.Weather * ext.SpecialEvent))
	if final < 0 {
		final = 0
	}

	confidence := maxConfidence
	if base > 0 {
		confidence = clamp(1-variance/base, minConfidence, maxConfidence)
	}

	variability := 1 - confidence
	minVolume := floor(float64(final) * (1 - variability))
	if minVolume < 0 {
		minVolume = 0
	}
	maxVolume := ceil(float64(final) * (1 + variability))

	return Prediction{
		Volume:     final,
		Confidence: confidence,
		MinVolume:  min(minVolume, final),
		MaxVolume:  max(maxVolume, final),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func floor(v float64) int {
	return int(math.Floor(v + ceilTolerance))
}
