package analytics

import (
	"log"
	"time"
)

// Sentinel results. These are documented placeholder values, returned
// instead of errors so dashboard callers always get a number.
const (
	DaysInsufficientData = -1  // fewer than MinForecastPoints samples
	DaysNotDepleting     = 999 // fitted slope is flat or rising
)

// MinForecastPoints is the minimum history length for a depletion fit.
const MinForecastPoints = 10

// DefaultWindow is the rolling-average window in samples.
const DefaultWindow = 7

// LevelSample is one historical level observation. Timestamp stays a string
// because history rows arrive from either store backend as serialized text;
// malformed values degrade to "now" rather than aborting the computation.
type LevelSample struct {
	Timestamp string  `json:"timestamp"`
	Level     float64 `json:"level"`
}

// RollingAverage returns the trailing mean of the most recent window
// values. Fewer points than the window averages whatever exists; an empty
// input returns the documented no-data result 0.
func RollingAverage(values []float64, window int) float64 {
	if len(values) == 0 {
		return 0
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if window > len(values) {
		window = len(values)
	}
	sum := 0.0
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window)
}

// DaysToEmpty fits an ordinary least-squares line level = m*t + c over the
// samples and reports the whole days until the line crosses zero.
// Fewer than MinForecastPoints samples returns DaysInsufficientData; a flat
// or rising slope returns DaysNotDepleting; otherwise the result is clamped
// to a minimum of 0. The now parameter anchors "today" and is also the
// fallback for malformed timestamps.
func DaysToEmpty(samples []LevelSample, now time.Time) int {
	if len(samples) < MinForecastPoints {
		return DaysInsufficientData
	}

	// Accumulate the normal-equation sums for the 2-coefficient fit.
	var sumT, sumY, sumTT, sumTY float64
	n := float64(len(samples))
	for _, s := range samples {
		t := parseSampleTime(s.Timestamp, now)
		y := s.Level
		sumT += t
		sumY += y
		sumTT += t * t
		sumTY += t * y
	}

	den := n*sumTT - sumT*sumT
	if den == 0 {
		// All samples collapse onto one instant; no trend to extract.
		return DaysNotDepleting
	}
	slope := (n*sumTY - sumT*sumY) / den
	intercept := (sumY - slope*sumT) / n

	if slope >= 0 {
		return DaysNotDepleting
	}

	emptyAt := -intercept / slope // level = 0 crossing, unix seconds
	days := int((emptyAt - float64(now.Unix())) / (24 * 3600))
	if days < 0 {
		days = 0
	}
	return days
}

// parseSampleTime converts a timestamp string to unix seconds, falling back
// to now for malformed input. One bad row must not abort the whole forecast.
func parseSampleTime(ts string, now time.Time) float64 {
	if ts == "" {
		return float64(now.Unix())
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return float64(t.Unix())
		}
	}
	log.Printf("analytics: malformed timestamp %q, treating as now", ts)
	return float64(now.Unix())
}
