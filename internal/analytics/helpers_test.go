package analytics

import (
	"math"
	"time"

	"attentionos/internal/analytics/models"
)

// testNow is a Friday afternoon used as "now" across the engine tests
var testNow = time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC)

func newSession(id int, start time.Time, focus float64, active, switches int) models.Session {
	return models.Session{
		ID:                 id,
		StartTime:          start,
		EndTime:            start.Add(time.Duration(active) * time.Second),
		TotalActiveSeconds: active,
		AppSwitches:        switches,
		FocusScore:         focus,
	}
}

// daysAgo returns testNow shifted back n days, at the given hour
func daysAgo(n, hour int) time.Time {
	d := testNow.AddDate(0, 0, -n)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func testEngine() *Engine {
	return NewEngine(nil, FixedClock{At: testNow}, time.UTC)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func containsID(defs []models.AchievementDefinition, id string) bool {
	for _, def := range defs {
		if def.ID == id {
			return true
		}
	}
	return false
}

func copySessions(sessions []models.Session) []models.Session {
	c := make([]models.Session, len(sessions))
	copy(c, sessions)
	return c
}

func sameSessions(a, b []models.Session) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !a[i].StartTime.Equal(b[i].StartTime) || a[i].FocusScore != b[i].FocusScore {
			return false
		}
	}
	return true
}
