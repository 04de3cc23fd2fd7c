package analytics

import (
	"sort"

	"attentionos/internal/analytics/models"
)

// CalculateStats computes averages and best/worst sessions over sessions.
// Empty input yields zero values and nil best/worst.
func CalculateStats(sessions []models.Session) models.SessionStats {
	if len(sessions) == 0 {
		return models.SessionStats{}
	}

	totalFocus := 0.0
	totalActive := 0.0
	for _, s := range sessions {
		totalFocus += s.FocusScore
		totalActive += float64(s.TotalActiveSeconds)
	}

	// Stable sort on a copy keeps input order among equal scores
	sorted := make([]models.Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FocusScore > sorted[j].FocusScore
	})

	best := sorted[0]
	worst := sorted[len(sorted)-1]

	return models.SessionStats{
		AvgFocusScore: totalFocus / float64(len(sessions)),
		AvgActiveTime: totalActive / float64(len(sessions)),
		TotalSessions: len(sessions),
		BestSession:   &best,
		WorstSession:  &worst,
	}
}

// averages holds per-session means used by the grade calculator
type averages struct {
	focus    float64
	active   float64
	switches float64
}

func meanOf(sessions []models.Session) averages {
	if len(sessions) == 0 {
		return averages{}
	}

	var a averages
	for _, s := range sessions {
		a.focus += s.FocusScore
		a.active += float64(s.TotalActiveSeconds)
		a.switches += float64(s.AppSwitches)
	}

	n := float64(len(sessions))
	a.focus /= n
	a.active /= n
	a.switches /= n
	return a
}

func meanFocus(sessions []models.Session) float64 {
	return meanOf(sessions).focus
}
