package models

import (
	"time"
)

// DailyGrade is the weighted letter grade for one calendar day
type DailyGrade struct {
	Grade string  `json:"grade"`
	Score float64 `json:"score"`
	Color string  `json:"color,omitempty"`
}

// NegativeColor is shown for grades without a color of their own
const NegativeColor = "#ef4444"

// DisplayColor returns the grade color, falling back to the negative indicator
func (g DailyGrade) DisplayColor() string {
	if g.Color == "" {
		return NegativeColor
	}
	return g.Color
}

// DailyReport is today's grade together with the totals it was computed from
type DailyReport struct {
	DailyGrade
	Date               string  `json:"date"`
	Insight            string  `json:"insight"`
	SessionCount       int     `json:"session_count"`
	TotalActiveSeconds int     `json:"total_active_seconds"`
	TotalIdleSeconds   int     `json:"total_idle_seconds"`
	TotalAppSwitches   int     `json:"total_app_switches"`
	AvgFocusScore      float64 `json:"avg_focus_score"`
}

// HealthState describes the live focus health of the latest session
type HealthState struct {
	Score       float64 `json:"score"`
	Status      string  `json:"status"`
	Emoji       string  `json:"emoji"`
	Description string  `json:"description"`
}

// DayBreakdown summarizes one calendar day of recent sessions
type DayBreakdown struct {
	Date          string `json:"date"`
	Weekday       string `json:"weekday"`
	SessionCount  int    `json:"session_count"`
	AvgFocus      int    `json:"avg_focus"`
	ActiveMinutes int    `json:"active_minutes"`
	AppSwitches   int    `json:"app_switches"`
	FocusBand     string `json:"focus_band"`
}

// TrendSummary carries both trend figures
type TrendSummary struct {
	WeeklyImprovement float64 `json:"weekly_improvement"`
	TrendVsAverage    int     `json:"trend_vs_average"`
}

// Dashboard is the full derived-metrics snapshot for the current session history
type Dashboard struct {
	GeneratedAt       time.Time             `json:"generated_at"`
	Stats             SessionStats          `json:"stats"`
	Today             DailyReport           `json:"today"`
	Streak            int                   `json:"streak"`
	WeeklyImprovement float64               `json:"weekly_improvement"`
	TrendVsAverage    int                   `json:"trend_vs_average"`
	Health            *HealthState          `json:"health"`
	DailyBreakdown    []DayBreakdown        `json:"daily_breakdown"`
	Achievements      []UnlockedAchievement `json:"achievements"`
	RejectedRecords   int                   `json:"rejected_records"`
}
