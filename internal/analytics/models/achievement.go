package models

import (
	"time"
)

// PredicateKind names one of the supported achievement conditions
type PredicateKind string

const (
	// Session-scoped kinds look only at the session being evaluated
	PredicateFocusScoreAtLeast    PredicateKind = "focus_score_at_least"
	PredicateActiveSecondsAtLeast PredicateKind = "active_seconds_at_least"
	PredicateAppSwitchesEqual     PredicateKind = "app_switches_equal"

	// Context-scoped kinds look at history-derived values
	PredicateStreakAtLeast            PredicateKind = "streak_at_least"
	PredicateDailyFocusAllAtLeast     PredicateKind = "daily_focus_all_at_least"
	PredicateWeeklyImprovementAtLeast PredicateKind = "weekly_improvement_at_least"

	// PredicateAllOf holds when every nested predicate holds
	PredicateAllOf PredicateKind = "all_of"
)

// Predicate is a serializable achievement condition
type Predicate struct {
	Kind      PredicateKind `json:"kind" yaml:"kind"`
	Threshold float64       `json:"threshold" yaml:"threshold"`
	AllOf     []Predicate   `json:"all_of,omitempty" yaml:"all_of,omitempty"`
}

// SessionScoped reports whether the predicate depends only on the session
// itself and never on streak, daily or weekly context
func (p Predicate) SessionScoped() bool {
	switch p.Kind {
	case PredicateFocusScoreAtLeast, PredicateActiveSecondsAtLeast, PredicateAppSwitchesEqual:
		return true
	case PredicateAllOf:
		for _, nested := range p.AllOf {
			if !nested.SessionScoped() {
				return false
			}
		}
		return len(p.AllOf) > 0
	default:
		return false
	}
}

// AchievementDefinition represents an achievement in the catalog
type AchievementDefinition struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Badge       string    `json:"badge" yaml:"badge"`
	Category    string    `json:"category" yaml:"category"`
	Condition   Predicate `json:"condition" yaml:"condition"`
}

// EvaluationContext is the history-derived input shared by every predicate
type EvaluationContext struct {
	Streak            int       `json:"streak"`
	DailySessions     []Session `json:"daily_sessions"`
	WeeklyImprovement float64   `json:"weekly_improvement"`
}

// UnlockedAchievement is a catalog entry unlocked by at least one session
type UnlockedAchievement struct {
	AchievementDefinition
	FirstUnlockedAt *time.Time `json:"first_unlocked_at,omitempty"`
}
