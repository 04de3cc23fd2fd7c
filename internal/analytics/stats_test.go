package analytics

import (
	"testing"

	"attentionos/internal/analytics/models"
)

func TestCalculateStatsEmpty(t *testing.T) {
	stats := CalculateStats(nil)

	if stats.AvgFocusScore != 0 || stats.AvgActiveTime != 0 || stats.TotalSessions != 0 {
		t.Errorf("Expected zero stats, got %+v", stats)
	}
	if stats.BestSession != nil || stats.WorstSession != nil {
		t.Error("Expected no best or worst session for empty input")
	}
}

func TestCalculateStats(t *testing.T) {
	sessions := []models.Session{
		newSession(1, daysAgo(0, 9), 72, 1800, 4),
		newSession(2, daysAgo(1, 9), 91, 3600, 1),
		newSession(3, daysAgo(2, 9), 55, 600, 12),
	}

	stats := CalculateStats(sessions)

	if stats.TotalSessions != 3 {
		t.Errorf("Expected 3 sessions, got %d", stats.TotalSessions)
	}
	if !almostEqual(stats.AvgFocusScore, (72.0+91+55)/3) {
		t.Errorf("Unexpected average focus %f", stats.AvgFocusScore)
	}
	if !almostEqual(stats.AvgActiveTime, 2000) {
		t.Errorf("Expected average active time 2000, got %f", stats.AvgActiveTime)
	}
	if stats.BestSession == nil || stats.BestSession.ID != 2 {
		t.Errorf("Expected best session 2, got %+v", stats.BestSession)
	}
	if stats.WorstSession == nil || stats.WorstSession.ID != 3 {
		t.Errorf("Expected worst session 3, got %+v", stats.WorstSession)
	}
}

func TestCalculateStatsAverageWithinRange(t *testing.T) {
	collections := [][]float64{
		{50},
		{0, 100},
		{33.3, 33.3, 33.3},
		{12.5, 99.9, 47, 81, 64.2},
	}

	for _, scores := range collections {
		var sessions []models.Session
		min, max := scores[0], scores[0]
		for i, score := range scores {
			sessions = append(sessions, newSession(i+1, daysAgo(i, 10), score, 60, 0))
			if score < min {
				min = score
			}
			if score > max {
				max = score
			}
		}

		avg := CalculateStats(sessions).AvgFocusScore
		if avg < min-1e-9 || avg > max+1e-9 {
			t.Errorf("Average %f outside [%f, %f] for %v", avg, min, max, scores)
		}
	}
}

func TestCalculateStatsTies(t *testing.T) {
	sessions := []models.Session{
		newSession(1, daysAgo(0, 9), 80, 60, 0),
		newSession(2, daysAgo(1, 9), 80, 60, 0),
		newSession(3, daysAgo(2, 9), 40, 60, 0),
		newSession(4, daysAgo(3, 9), 40, 60, 0),
	}

	stats := CalculateStats(sessions)

	// Stable ordering: first of the tied maximum, last of the tied minimum
	if stats.BestSession.ID != 1 {
		t.Errorf("Expected best session 1, got %d", stats.BestSession.ID)
	}
	if stats.WorstSession.ID != 4 {
		t.Errorf("Expected worst session 4, got %d", stats.WorstSession.ID)
	}
}

func TestCalculateStatsDoesNotMutateInput(t *testing.T) {
	sessions := []models.Session{
		newSession(1, daysAgo(2, 9), 40, 60, 0),
		newSession(2, daysAgo(1, 9), 95, 60, 0),
		newSession(3, daysAgo(0, 9), 70, 60, 0),
	}
	before := copySessions(sessions)

	first := CalculateStats(sessions)
	second := CalculateStats(sessions)

	if !sameSessions(sessions, before) {
		t.Error("CalculateStats reordered its input")
	}
	if first.AvgFocusScore != second.AvgFocusScore || first.BestSession.ID != second.BestSession.ID ||
		first.WorstSession.ID != second.WorstSession.ID {
		t.Errorf("Repeated calls disagree: %+v vs %+v", first, second)
	}
}
