package models

import (
	"fmt"
	"strings"
	"time"
)

// SessionRecord is a work session as delivered by the tracking backend or
// read from the sessions table, before validation
type SessionRecord struct {
	ID                 int     `json:"id" db:"id"`
	StartTime          string  `json:"start_time" db:"start_time"`
	EndTime            string  `json:"end_time" db:"end_time"`
	TotalActiveSeconds int     `json:"total_active_seconds" db:"total_active_seconds"`
	TotalIdleSeconds   int     `json:"total_idle_seconds" db:"total_idle_seconds"`
	AppSwitches        int     `json:"app_switches" db:"app_switches"`
	FocusScore         float64 `json:"focus_score" db:"focus_score"`
}

// Session is a validated work session
type Session struct {
	ID                 int       `json:"id"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	TotalActiveSeconds int       `json:"total_active_seconds"`
	TotalIdleSeconds   int       `json:"total_idle_seconds"`
	AppSwitches        int       `json:"app_switches"`
	FocusScore         float64   `json:"focus_score"`
}

// Duration returns active plus idle time
func (s Session) Duration() time.Duration {
	return time.Duration(s.TotalActiveSeconds+s.TotalIdleSeconds) * time.Second
}

// Record converts the session back to its storage form
func (s Session) Record() SessionRecord {
	return SessionRecord{
		ID:                 s.ID,
		StartTime:          s.StartTime.Format(StorageTimeLayout),
		EndTime:            s.EndTime.Format(StorageTimeLayout),
		TotalActiveSeconds: s.TotalActiveSeconds,
		TotalIdleSeconds:   s.TotalIdleSeconds,
		AppSwitches:        s.AppSwitches,
		FocusScore:         s.FocusScore,
	}
}

// StorageTimeLayout is the layout the tracking agent writes into SQLite
const StorageTimeLayout = "2006-01-02 15:04:05"

// zoned layouts carry their own offset; local layouts are read in the caller's location
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
	}
	localLayouts = []string{
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
		StorageTimeLayout,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// ParseTimestamp parses a session timestamp. Strings without a zone offset
// are interpreted in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.In(loc), nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// SessionStats holds scalar statistics over a session collection
type SessionStats struct {
	AvgFocusScore float64  `json:"avg_focus_score"`
	AvgActiveTime float64  `json:"avg_active_time"`
	TotalSessions int      `json:"total_sessions"`
	BestSession   *Session `json:"best_session"`
	WorstSession  *Session `json:"worst_session"`
}

// Rejection describes a record excluded by the boundary validator
type Rejection struct {
	Record SessionRecord `json:"record"`
	Reason string        `json:"reason"`
}
