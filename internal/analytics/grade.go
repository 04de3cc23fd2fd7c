package analytics

import (
	"math"
	"strings"
	"time"

	"attentionos/internal/analytics/models"
)

const (
	// GradeNone is reported when no session started today
	GradeNone = "N/A"

	// activeBenchmarkSeconds is the four-hour engagement target
	activeBenchmarkSeconds = 14400.0

	focusWeight      = 0.5
	engagementWeight = 0.3
	disciplineWeight = 0.2

	// switchPenalty is subtracted from 100 per average app switch
	switchPenalty = 2.0
)

// GradeBand maps a minimum score to a letter grade
type GradeBand struct {
	Grade    string
	MinScore float64
	Color    string
}

// GradeBands lists the letter grades from best to worst. The last band has
// no lower bound and no color of its own.
var GradeBands = []GradeBand{
	{Grade: "A+", MinScore: 90, Color: "#10b981"},
	{Grade: "A", MinScore: 85, Color: "#10b981"},
	{Grade: "A-", MinScore: 80, Color: "#14b8a6"},
	{Grade: "B+", MinScore: 75, Color: "#6366f1"},
	{Grade: "B", MinScore: 70, Color: "#8b5cf6"},
	{Grade: "B-", MinScore: 65, Color: "#a855f7"},
	{Grade: "C+", MinScore: 60, Color: "#f59e0b"},
	{Grade: "C", MinScore: 55, Color: "#f59e0b"},
	{Grade: "C-", MinScore: 50, Color: "#f59e0b"},
	{Grade: "D", MinScore: math.Inf(-1)},
}

// Insight messages keyed by the grade's leading letter
const (
	InsightNoSessions   = "No sessions tracked today"
	InsightCelebratory  = "Outstanding focus today! Keep this momentum going."
	InsightEncouraging  = "Solid performance. A few tweaks could push you to an A."
	InsightConstructive = "Room for improvement. Try longer focus blocks tomorrow."
	InsightMotivational = "Let's aim higher tomorrow. Small changes make big differences."
)

// GradeScore returns the weighted daily score for a set of sessions
func GradeScore(sessions []models.Session) float64 {
	avg := meanOf(sessions)

	score := focusWeight * avg.focus
	score += engagementWeight * math.Min(avg.active/activeBenchmarkSeconds, 1) * 100
	score += disciplineWeight * math.Max(100-switchPenalty*avg.switches, 0)
	return score
}

// GradeFor maps a score onto the first band whose minimum it reaches
func GradeFor(score float64) models.DailyGrade {
	for _, band := range GradeBands {
		if score >= band.MinScore {
			return models.DailyGrade{Grade: band.Grade, Score: score, Color: band.Color}
		}
	}
	// NaN compares false against every band
	last := GradeBands[len(GradeBands)-1]
	return models.DailyGrade{Grade: last.Grade, Score: score, Color: last.Color}
}

// CalculateGrade grades the sessions that started on now's calendar day in loc
func CalculateGrade(sessions []models.Session, now time.Time, loc *time.Location) models.DailyGrade {
	today := SessionsOn(sessions, CalendarDay(now, loc), loc)
	if len(today) == 0 {
		return models.DailyGrade{Grade: GradeNone, Score: 0}
	}
	return GradeFor(GradeScore(today))
}

// InsightFor returns the coaching line for a grade
func InsightFor(grade string) string {
	switch {
	case grade == GradeNone:
		return InsightNoSessions
	case strings.HasPrefix(grade, "A"):
		return InsightCelebratory
	case strings.HasPrefix(grade, "B"):
		return InsightEncouraging
	case strings.HasPrefix(grade, "C"):
		return InsightConstructive
	default:
		return InsightMotivational
	}
}

// DailyReportFor builds today's report: grade, insight and the day's totals
func DailyReportFor(sessions []models.Session, now time.Time, loc *time.Location) models.DailyReport {
	day := CalendarDay(now, loc)
	today := SessionsOn(sessions, day, loc)

	report := models.DailyReport{
		DailyGrade:   CalculateGrade(sessions, now, loc),
		Date:         day.String(),
		SessionCount: len(today),
	}
	report.Insight = InsightFor(report.Grade)

	for _, s := range today {
		report.TotalActiveSeconds += s.TotalActiveSeconds
		report.TotalIdleSeconds += s.TotalIdleSeconds
		report.TotalAppSwitches += s.AppSwitches
	}
	if len(today) > 0 {
		report.AvgFocusScore = meanFocus(today)
	}

	return report
}
