package analytics

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"attentionos/internal/analytics/models"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	want := []string{
		"deep_focus", "marathon", "zen_mode", "power_hour",
		"streak_3", "streak_7", "streak_14", "streak_30",
		"perfect_day", "improvement_king",
	}
	if got := IDs(catalog.Definitions()); !reflect.DeepEqual(got, want) {
		t.Errorf("Unexpected catalog order: %v", got)
	}

	def, ok := catalog.Lookup("streak_7")
	if !ok {
		t.Fatal("Expected streak_7 in catalog")
	}
	if def.Name != "Week Warrior" || def.Condition.Threshold != 7 {
		t.Errorf("Unexpected streak_7 definition: %+v", def)
	}

	if _, ok := catalog.Lookup("missing"); ok {
		t.Error("Lookup of unknown id should fail")
	}
}

func TestNewCatalogValidation(t *testing.T) {
	tests := []struct {
		name string
		defs []models.AchievementDefinition
	}{
		{"missing id", []models.AchievementDefinition{{Condition: models.Predicate{Kind: models.PredicateStreakAtLeast}}}},
		{"duplicate id", []models.AchievementDefinition{
			{ID: "a", Condition: models.Predicate{Kind: models.PredicateStreakAtLeast}},
			{ID: "a", Condition: models.Predicate{Kind: models.PredicateStreakAtLeast}},
		}},
		{"unknown kind", []models.AchievementDefinition{{ID: "a", Condition: models.Predicate{Kind: "moon_phase"}}}},
		{"empty all_of", []models.AchievementDefinition{{ID: "a", Condition: models.Predicate{Kind: models.PredicateAllOf}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.defs)
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("Expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `achievements:
  - id: early_bird
    name: Early Bird
    description: Focused 85%+ for half an hour
    badge: "🐦"
    category: focus
    condition:
      kind: all_of
      all_of:
        - kind: focus_score_at_least
          threshold: 85
        - kind: active_seconds_at_least
          threshold: 1800
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	if catalog.Len() != 1 {
		t.Fatalf("Expected 1 definition, got %d", catalog.Len())
	}

	engine := NewEngine(catalog, FixedClock{At: testNow}, time.UTC)
	s := newSession(1, daysAgo(0, 9), 88, 2000, 5)
	if got := IDs(engine.Check(s, []models.Session{s})); !reflect.DeepEqual(got, []string{"early_bird"}) {
		t.Errorf("Expected early_bird, got %v", got)
	}
}

func TestZenModeIndependentOfOtherFields(t *testing.T) {
	engine := testEngine()

	sessions := []models.Session{
		newSession(1, daysAgo(0, 9), 0, 0, 0),
		newSession(2, daysAgo(30, 9), 100, 50000, 0),
		newSession(3, daysAgo(3, 9), 42.5, 10, 0),
	}

	for _, s := range sessions {
		if !containsID(engine.Check(s, sessions), "zen_mode") {
			t.Errorf("Expected zen_mode for session %d", s.ID)
		}
	}

	busy := newSession(4, daysAgo(0, 10), 100, 50000, 1)
	if containsID(engine.Check(busy, []models.Session{busy}), "zen_mode") {
		t.Error("zen_mode should require zero app switches")
	}
}

func TestIndependentSessionAchievements(t *testing.T) {
	engine := testEngine()
	s := newSession(1, daysAgo(0, 9), 90, 7200, 4)

	unlocked := engine.Check(s, []models.Session{s})
	for _, id := range []string{"deep_focus", "marathon", "power_hour"} {
		if !containsID(unlocked, id) {
			t.Errorf("Expected %s to unlock, got %v", id, IDs(unlocked))
		}
	}
}

func TestPowerHourNeedsBothConditions(t *testing.T) {
	engine := testEngine()

	tests := []struct {
		focus  float64
		active int
		want   bool
	}{
		{80, 3600, true},
		{79.9, 3600, false},
		{80, 3599, false},
	}

	for _, tt := range tests {
		s := newSession(1, daysAgo(0, 9), tt.focus, tt.active, 3)
		if got := containsID(engine.Check(s, []models.Session{s}), "power_hour"); got != tt.want {
			t.Errorf("power_hour(%v, %d) = %v, want %v", tt.focus, tt.active, got, tt.want)
		}
	}
}

func TestStreakAchievements(t *testing.T) {
	engine := testEngine()

	var history []models.Session
	for i := 0; i < 8; i++ {
		history = append(history, newSession(i+1, daysAgo(i, 9), 50, 600, 5))
	}

	unlocked := engine.Check(history[0], history)
	for _, id := range []string{"streak_3", "streak_7"} {
		if !containsID(unlocked, id) {
			t.Errorf("Expected %s with an 8-day streak", id)
		}
	}
	for _, id := range []string{"streak_14", "streak_30"} {
		if containsID(unlocked, id) {
			t.Errorf("Did not expect %s with an 8-day streak", id)
		}
	}
}

func TestPerfectDay(t *testing.T) {
	engine := testEngine()

	t.Run("all sessions today above threshold", func(t *testing.T) {
		sessions := []models.Session{
			newSession(1, daysAgo(0, 9), 85, 600, 5),
			newSession(2, daysAgo(0, 11), 80, 600, 5),
			newSession(3, daysAgo(1, 9), 20, 600, 5),
		}
		if !containsID(engine.Check(sessions[2], sessions), "perfect_day") {
			t.Error("Expected perfect_day when every session today is at least 80")
		}
	})

	t.Run("one session today below threshold", func(t *testing.T) {
		sessions := []models.Session{
			newSession(1, daysAgo(0, 9), 95, 600, 5),
			newSession(2, daysAgo(0, 11), 79, 600, 5),
		}
		if containsID(engine.Check(sessions[0], sessions), "perfect_day") {
			t.Error("Did not expect perfect_day with a session below 80 today")
		}
	})

	t.Run("no sessions today is vacuously perfect", func(t *testing.T) {
		s := newSession(1, daysAgo(2, 9), 10, 600, 5)
		if !containsID(engine.Check(s, []models.Session{s}), "perfect_day") {
			t.Error("Expected perfect_day to hold with no sessions today")
		}
	})
}

func TestImprovementKing(t *testing.T) {
	engine := testEngine()

	improving := weekOverWeek(4, 90, 60)
	if !containsID(engine.Check(improving[0], improving), "improvement_king") {
		t.Error("Expected improvement_king for a 50% week-over-week gain")
	}

	steady := weekOverWeek(4, 70, 65)
	if containsID(engine.Check(steady[0], steady), "improvement_king") {
		t.Error("Did not expect improvement_king for a small gain")
	}
}

func TestAllUnlocked(t *testing.T) {
	engine := testEngine()

	sessions := []models.Session{
		newSession(1, daysAgo(0, 9), 92, 1200, 3),
		newSession(2, daysAgo(1, 9), 60, 8000, 6),
		newSession(3, daysAgo(2, 9), 50, 600, 0),
	}

	got := IDs(engine.AllUnlocked(sessions))
	want := []string{"deep_focus", "marathon", "zen_mode", "streak_3", "perfect_day"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if len(engine.AllUnlocked(nil)) != 0 {
		t.Error("Expected nothing unlocked for an empty history")
	}
}

func TestAllUnlockedUsesFullHistoryContext(t *testing.T) {
	engine := testEngine()

	// The oldest session predates the streak, but is credited with it
	sessions := []models.Session{
		newSession(1, daysAgo(0, 9), 50, 60, 5),
		newSession(2, daysAgo(1, 9), 50, 60, 5),
		newSession(3, daysAgo(2, 9), 50, 60, 5),
	}
	ctx := engine.Context(sessions)
	if !containsID(engine.Evaluate(sessions[2], ctx), "streak_3") {
		t.Error("Expected the oldest session to be evaluated against the full streak")
	}
	if containsID(engine.Check(sessions[2], sessions[2:]), "streak_3") {
		t.Error("Point-in-time history should not reach streak_3")
	}
}

func TestBestSessionRoundTrip(t *testing.T) {
	var sessionScoped []models.AchievementDefinition
	for _, def := range DefaultCatalog().Definitions() {
		if def.Condition.SessionScoped() {
			sessionScoped = append(sessionScoped, def)
		}
	}
	catalog, err := NewCatalog(sessionScoped)
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	engine := NewEngine(catalog, FixedClock{At: testNow}, time.UTC)

	history := []models.Session{
		newSession(1, daysAgo(0, 9), 64, 1500, 7),
		newSession(2, daysAgo(1, 9), 93, 7300, 0),
		newSession(3, daysAgo(4, 9), 81, 3700, 2),
		newSession(4, daysAgo(9, 9), 40, 300, 15),
	}

	best := CalculateStats(history).BestSession
	if best == nil || best.ID != 2 {
		t.Fatalf("Expected best session 2, got %+v", best)
	}

	contributed := IDs(engine.Evaluate(*best, engine.Context(history)))
	alone := IDs(engine.Check(*best, []models.Session{*best}))
	if !reflect.DeepEqual(contributed, alone) {
		t.Errorf("Best session unlocks %v in history but %v alone", contributed, alone)
	}

	union := engine.AllUnlocked(history)
	for _, id := range alone {
		if !containsID(union, id) {
			t.Errorf("Expected %s in the whole-history union", id)
		}
	}
}

// countingClock records how often the engine asked for the time
type countingClock struct {
	at    time.Time
	calls int
}

func (c *countingClock) Now() time.Time {
	c.calls++
	return c.at
}

func TestSessionScopedCatalogSkipsContext(t *testing.T) {
	defs := DefaultCatalog().Definitions()
	if DefaultCatalog().SessionScoped() {
		t.Fatal("Expected the default catalog to need context")
	}

	var scoped []models.AchievementDefinition
	for _, def := range defs {
		if def.Condition.SessionScoped() {
			scoped = append(scoped, def)
		}
	}
	catalog, err := NewCatalog(scoped)
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	if !catalog.SessionScoped() {
		t.Fatal("Expected a catalog of session predicates to be session scoped")
	}

	history := []models.Session{
		newSession(1, daysAgo(0, 9), 95, 7300, 0),
		newSession(2, daysAgo(1, 9), 50, 600, 9),
	}

	clock := &countingClock{at: testNow}
	engine := NewEngine(catalog, clock, time.UTC)
	unlocked := IDs(engine.AllUnlocked(history))
	checked := IDs(engine.Check(history[0], history))
	if clock.calls != 0 {
		t.Errorf("Expected no context derivation, clock read %d times", clock.calls)
	}
	want := []string{"deep_focus", "marathon", "zen_mode", "power_hour"}
	if !reflect.DeepEqual(unlocked, want) || !reflect.DeepEqual(checked, want) {
		t.Errorf("Expected %v, got %v and %v", want, unlocked, checked)
	}

	full := &countingClock{at: testNow}
	NewEngine(nil, full, time.UTC).AllUnlocked(history)
	if full.calls == 0 {
		t.Error("Expected the default catalog to derive context")
	}
}

func TestEngineIdempotent(t *testing.T) {
	engine := testEngine()
	sessions := weekOverWeek(4, 90, 60)
	before := copySessions(sessions)

	first := IDs(engine.AllUnlocked(sessions))
	second := IDs(engine.AllUnlocked(sessions))

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Repeated calls disagree: %v vs %v", first, second)
	}
	if !sameSessions(sessions, before) {
		t.Error("AllUnlocked modified its input")
	}
}
