package analytics

import (
	"sort"
	"time"

	"attentionos/internal/analytics/models"
)

// CalculateStreak counts consecutive calendar days with at least one session,
// walking backward from the most recent session's day. Several sessions on
// the same day never break the run.
func CalculateStreak(sessions []models.Session, loc *time.Location) int {
	if len(sessions) == 0 {
		return 0
	}

	sorted := sortedByStartDesc(sessions)

	streak := 1
	for i := 0; i < len(sorted)-1; i++ {
		current := CalendarDay(sorted[i].StartTime, loc)
		next := CalendarDay(sorted[i+1].StartTime, loc)

		diff := current.DaysAfter(next)
		if diff == 1 {
			streak++
		} else if diff > 1 {
			break
		}
	}

	return streak
}

// sortedByStartDesc returns a copy of sessions ordered most recent first
func sortedByStartDesc(sessions []models.Session) []models.Session {
	sorted := make([]models.Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})
	return sorted
}
