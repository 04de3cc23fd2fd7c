package analytics

import (
	"math"
	"time"

	"attentionos/internal/analytics/models"
)

// Focus bands
const (
	BandSuccess = "success"
	BandWarning = "warning"
	BandDanger  = "danger"
)

const (
	breakdownSessions = 14
	breakdownDays     = 7
)

var healthStates = []struct {
	min         float64
	status      string
	emoji       string
	description string
}{
	{85, "Thriving", "⚡", "Peak performance mode"},
	{70, "Focused", "🎯", "Strong concentration"},
	{50, "Steady", "✨", "Maintaining balance"},
	{30, "Building", "🌱", "Room for growth"},
}

// HealthFor classifies a focus score
func HealthFor(score float64) models.HealthState {
	for _, h := range healthStates {
		if score >= h.min {
			return models.HealthState{Score: score, Status: h.status, Emoji: h.emoji, Description: h.description}
		}
	}
	return models.HealthState{Score: score, Status: "Starting", Emoji: "🔮", Description: "Focus journey begins"}
}

// FocusBand returns the color band for a focus score
func FocusBand(score float64) string {
	switch {
	case score >= 80:
		return BandSuccess
	case score >= 60:
		return BandWarning
	default:
		return BandDanger
	}
}

// LatestHealth returns the health state of the most recent session, or nil
func LatestHealth(sessions []models.Session) *models.HealthState {
	if len(sessions) == 0 {
		return nil
	}
	h := HealthFor(sortedByStartDesc(sessions)[0].FocusScore)
	return &h
}

// DailyBreakdown groups the most recent sessions by calendar day and
// returns up to seven days, oldest first
func DailyBreakdown(sessions []models.Session, loc *time.Location) []models.DayBreakdown {
	recent := sortedByStartDesc(sessions)
	if len(recent) > breakdownSessions {
		recent = recent[:breakdownSessions]
	}

	var order []Day
	groups := make(map[Day][]models.Session)
	for _, s := range recent {
		day := CalendarDay(s.StartTime, loc)
		if _, ok := groups[day]; !ok {
			order = append(order, day)
		}
		groups[day] = append(groups[day], s)
	}
	if len(order) > breakdownDays {
		order = order[:breakdownDays]
	}

	breakdown := make([]models.DayBreakdown, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		day := order[i]
		avg := meanOf(groups[day])
		avgFocus := int(math.Round(avg.focus))

		breakdown = append(breakdown, models.DayBreakdown{
			Date:          day.String(),
			Weekday:       day.Time(loc).Weekday().String()[:3],
			SessionCount:  len(groups[day]),
			AvgFocus:      avgFocus,
			ActiveMinutes: int(math.Round(avg.active / 60)),
			AppSwitches:   int(math.Round(avg.switches)),
			FocusBand:     FocusBand(float64(avgFocus)),
		})
	}
	return breakdown
}
