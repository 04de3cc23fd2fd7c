package analytics

import (
	"time"

	"attentionos/internal/analytics/models"
)

// Engine evaluates an achievement catalog against session history
type Engine struct {
	catalog *Catalog
	clock   Clock
	loc     *time.Location
}

// NewEngine creates an engine. A nil catalog selects the default catalog,
// a nil clock the system clock and a nil location time.Local.
func NewEngine(catalog *Catalog, clock Clock, loc *time.Location) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{catalog: catalog, clock: clock, loc: loc}
}

// Now returns the engine's current time in its location
func (e *Engine) Now() time.Time {
	return e.clock.Now().In(e.loc)
}

// Location returns the time zone used for calendar-day comparisons
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Catalog returns the catalog the engine evaluates
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Context derives streak, today's sessions and weekly improvement from all
func (e *Engine) Context(all []models.Session) models.EvaluationContext {
	now := e.Now()
	return models.EvaluationContext{
		Streak:            CalculateStreak(all, e.loc),
		DailySessions:     SessionsOn(all, CalendarDay(now, e.loc), e.loc),
		WeeklyImprovement: WeeklyImprovement(all, now),
	}
}

// Evaluate returns the catalog entries whose condition holds for session
// under ctx, in catalog order
func (e *Engine) Evaluate(session models.Session, ctx models.EvaluationContext) []models.AchievementDefinition {
	unlocked := make([]models.AchievementDefinition, 0)
	for _, def := range e.catalog.definitions {
		if evaluate(def.Condition, session, ctx) {
			unlocked = append(unlocked, def)
		}
	}
	return unlocked
}

// Check evaluates every catalog entry for session with context derived from all
func (e *Engine) Check(session models.Session, all []models.Session) []models.AchievementDefinition {
	return e.Evaluate(session, e.contextFor(all))
}

// AllUnlocked returns every catalog entry unlocked by at least one session in
// all, in catalog order. Each session is evaluated against context derived
// from the full history rather than the history as of that session.
func (e *Engine) AllUnlocked(all []models.Session) []models.AchievementDefinition {
	if len(all) == 0 {
		return make([]models.AchievementDefinition, 0)
	}

	// Context depends only on the full history, so it is shared by every session
	ctx := e.contextFor(all)

	seen := make(map[string]bool)
	for _, s := range all {
		for _, def := range e.Evaluate(s, ctx) {
			seen[def.ID] = true
		}
	}

	unlocked := make([]models.AchievementDefinition, 0, len(seen))
	for _, def := range e.catalog.definitions {
		if seen[def.ID] {
			unlocked = append(unlocked, def)
		}
	}
	return unlocked
}

// contextFor skips the history scan when no condition reads the context
func (e *Engine) contextFor(all []models.Session) models.EvaluationContext {
	if e.catalog.SessionScoped() {
		return models.EvaluationContext{}
	}
	return e.Context(all)
}

func evaluate(p models.Predicate, s models.Session, ctx models.EvaluationContext) bool {
	switch p.Kind {
	case models.PredicateFocusScoreAtLeast:
		return s.FocusScore >= p.Threshold
	case models.PredicateActiveSecondsAtLeast:
		return float64(s.TotalActiveSeconds) >= p.Threshold
	case models.PredicateAppSwitchesEqual:
		return float64(s.AppSwitches) == p.Threshold
	case models.PredicateStreakAtLeast:
		return float64(ctx.Streak) >= p.Threshold
	case models.PredicateDailyFocusAllAtLeast:
		for _, daily := range ctx.DailySessions {
			if daily.FocusScore < p.Threshold {
				return false
			}
		}
		return true
	case models.PredicateWeeklyImprovementAtLeast:
		return ctx.WeeklyImprovement >= p.Threshold
	case models.PredicateAllOf:
		if len(p.AllOf) == 0 {
			return false
		}
		for _, nested := range p.AllOf {
			if !evaluate(nested, s, ctx) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IDs returns the ids of defs in order
func IDs(defs []models.AchievementDefinition) []string {
	ids := make([]string, len(defs))
	for i, def := range defs {
		ids[i] = def.ID
	}
	return ids
}
