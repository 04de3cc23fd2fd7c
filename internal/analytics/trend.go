package analytics

import (
	"math"
	"time"

	"attentionos/internal/analytics/models"
)

const (
	week = 7 * 24 * time.Hour

	// minSessionsForWeeklyTrend guards against noise on thin history
	minSessionsForWeeklyTrend = 7
)

// WeeklyImprovement returns the percentage change of mean focus score between
// the last seven days and the seven days before that, measured from now.
// It returns 0 on thin history, on an empty window and when last week's
// average is zero.
func WeeklyImprovement(sessions []models.Session, now time.Time) float64 {
	if len(sessions) < minSessionsForWeeklyTrend {
		return 0
	}

	var thisWeek, lastWeek []models.Session
	for _, s := range sessions {
		age := now.Sub(s.StartTime)
		switch {
		case age <= week:
			thisWeek = append(thisWeek, s)
		case age <= 2*week:
			lastWeek = append(lastWeek, s)
		}
	}

	if len(thisWeek) == 0 || len(lastWeek) == 0 {
		return 0
	}

	thisAvg := meanFocus(thisWeek)
	lastAvg := meanFocus(lastWeek)
	if lastAvg == 0 {
		return 0
	}

	return (thisAvg - lastAvg) / lastAvg * 100
}

// TrendVsAverage compares the most recent session's focus score with the
// mean over all sessions, in whole percentage points rounded half up.
// It needs at least two sessions.
func TrendVsAverage(sessions []models.Session) int {
	if len(sessions) < 2 {
		return 0
	}

	latest := sortedByStartDesc(sessions)[0]
	return roundHalfUp(latest.FocusScore - meanFocus(sessions))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
