package analytics

import (
	"testing"
	"time"
)

func TestRollingAverageEmptyInput(t *testing.T) {
	if got := RollingAverage(nil, 7); got != 0 {
		t.Fatalf("empty input = %v, want the no-data result 0", got)
	}
}

func TestRollingAverageShortInput(t *testing.T) {
	// Fewer points than the window: average whatever exists, no padding.
	if got := RollingAverage([]float64{10, 20}, 7); got != 15 {
		t.Fatalf("short input = %v, want 15", got)
	}
}

func TestRollingAverageTrailingWindow(t *testing.T) {
	values := []float64{100, 100, 100, 1, 2, 3, 4, 5, 6, 7}
	// Trailing 7 of the series: 1..7 -> mean 4.
	if got := RollingAverage(values, 7); got != 4 {
		t.Fatalf("trailing mean = %v, want 4", got)
	}
}

func TestRollingAverageDefaultWindow(t *testing.T) {
	values := []float64{0, 0, 0, 7, 7, 7, 7, 7, 7, 7}
	if got := RollingAverage(values, 0); got != 7 {
		t.Fatalf("window<=0 must fall back to the default 7, got %v", got)
	}
}

func levelSeries(n int, start time.Time, startLevel, perDay float64) []LevelSample {
	out := make([]LevelSample, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, LevelSample{
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour).Format(time.RFC3339),
			Level:     startLevel + float64(i)*perDay,
		})
	}
	return out
}

func TestDaysToEmptyInsufficientData(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	samples := levelSeries(9, now.AddDate(0, 0, -9), 90, -5)
	if got := DaysToEmpty(samples, now); got != DaysInsufficientData {
		t.Fatalf("9 points = %d, want %d", got, DaysInsufficientData)
	}
}

func TestDaysToEmptyNotDepleting(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	samples := levelSeries(10, now.AddDate(0, 0, -10), 50, +2)
	if got := DaysToEmpty(samples, now); got != DaysNotDepleting {
		t.Fatalf("rising series = %d, want %d", got, DaysNotDepleting)
	}
}

func TestDaysToEmptyDecliningSeries(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	// 100% ten days ago, losing 5 per day: ~10 days of water left.
	samples := levelSeries(10, now.AddDate(0, 0, -10), 100, -5)

	got := DaysToEmpty(samples, now)
	if got < 0 || got > 30 {
		t.Fatalf("declining series = %d, want a small non-negative day count", got)
	}
}

func TestDaysToEmptyAlreadyEmptyClampsToZero(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	// Crossed zero in the past: clamp, never negative.
	samples := levelSeries(10, now.AddDate(0, 0, -20), 40, -5)
	if got := DaysToEmpty(samples, now); got != 0 {
		t.Fatalf("past-empty series = %d, want 0", got)
	}
}

func TestDaysToEmptyMalformedTimestampsDoNotAbort(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	samples := levelSeries(10, now.AddDate(0, 0, -10), 100, -5)
	samples[3].Timestamp = "not-a-time"

	got := DaysToEmpty(samples, now)
	if got == DaysInsufficientData {
		t.Fatal("one malformed timestamp must not abort the forecast")
	}
	if got < 0 {
		t.Fatalf("forecast = %d, want non-negative", got)
	}
}

func TestDaysToEmptyCollapsedTimestamps(t *testing.T) {
	now := time.Now().UTC()
	samples := make([]LevelSample, MinForecastPoints)
	for i := range samples {
		samples[i] = LevelSample{Timestamp: now.Format(time.RFC3339), Level: float64(50 - i)}
	}
	// Every point at the same instant: no trend, not a crash.
	if got := DaysToEmpty(samples, now); got != DaysNotDepleting {
		t.Fatalf("collapsed series = %d, want %d", got, DaysNotDepleting)
	}
}

func TestDaysToEmptyBoundedForLongHorizons(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	for _, perDay := range []float64{-0.5, -1, -2.5} {
		samples := levelSeries(12, now.AddDate(0, 0, -12), 95, perDay)
		got := DaysToEmpty(samples, now)
		if got < 0 || got >= 100000 {
			t.Fatalf("perDay=%v: forecast %d out of sane bounds", perDay, got)
		}
	}
}
