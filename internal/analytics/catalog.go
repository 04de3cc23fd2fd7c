package analytics

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"attentionos/internal/analytics/models"
)

// ErrInvalidCatalog is returned when a catalog fails validation
var ErrInvalidCatalog = errors.New("invalid achievement catalog")

// Achievement categories
const (
	CategoryFocus       = "focus"
	CategoryEndurance   = "endurance"
	CategoryDiscipline  = "discipline"
	CategoryStreak      = "streak"
	CategoryImprovement = "improvement"
)

// Catalog is an immutable, ordered set of achievement definitions
type Catalog struct {
	definitions   []models.AchievementDefinition
	index         map[string]int
	sessionScoped bool
}

// NewCatalog validates definitions and builds a catalog from a copy of them
func NewCatalog(definitions []models.AchievementDefinition) (*Catalog, error) {
	c := &Catalog{
		definitions:   make([]models.AchievementDefinition, len(definitions)),
		index:         make(map[string]int, len(definitions)),
		sessionScoped: true,
	}
	copy(c.definitions, definitions)

	for i, def := range c.definitions {
		if def.ID == "" {
			return nil, fmt.Errorf("%w: definition %d has no id", ErrInvalidCatalog, i)
		}
		if _, exists := c.index[def.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidCatalog, def.ID)
		}
		if err := validatePredicate(def.Condition); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, def.ID, err)
		}
		c.index[def.ID] = i
		if !def.Condition.SessionScoped() {
			c.sessionScoped = false
		}
	}

	return c, nil
}

// DefaultCatalog returns the built-in achievement catalog
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog(PredefinedAchievements)
	if err != nil {
		panic(err)
	}
	return catalog
}

// LoadCatalog reads a YAML list of achievement definitions
func LoadCatalog(filename string) (*Catalog, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file struct {
		Achievements []models.AchievementDefinition `yaml:"achievements"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	return NewCatalog(file.Achievements)
}

// Definitions returns a copy of the catalog in declaration order
func (c *Catalog) Definitions() []models.AchievementDefinition {
	defs := make([]models.AchievementDefinition, len(c.definitions))
	copy(defs, c.definitions)
	return defs
}

// Lookup returns the definition with the given id
func (c *Catalog) Lookup(id string) (models.AchievementDefinition, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.AchievementDefinition{}, false
	}
	return c.definitions[i], true
}

// SessionScoped reports whether every condition depends only on the session
// being evaluated, so evaluation never needs history-derived context
func (c *Catalog) SessionScoped() bool {
	return c.sessionScoped
}

// Len returns the number of definitions
func (c *Catalog) Len() int {
	return len(c.definitions)
}

func validatePredicate(p models.Predicate) error {
	switch p.Kind {
	case models.PredicateFocusScoreAtLeast,
		models.PredicateActiveSecondsAtLeast,
		models.PredicateAppSwitchesEqual,
		models.PredicateStreakAtLeast,
		models.PredicateDailyFocusAllAtLeast,
		models.PredicateWeeklyImprovementAtLeast:
		return nil
	case models.PredicateAllOf:
		if len(p.AllOf) == 0 {
			return fmt.Errorf("all_of needs at least one nested predicate")
		}
		for _, nested := range p.AllOf {
			if err := validatePredicate(nested); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown predicate kind %q", p.Kind)
	}
}

// PredefinedAchievements contains the built-in achievement definitions
var PredefinedAchievements = []models.AchievementDefinition{
	{
		ID:          "deep_focus",
		Name:        "Deep Focus Master",
		Description: "Achieved 90%+ focus score",
		Badge:       "🎯",
		Category:    CategoryFocus,
		Condition:   models.Predicate{Kind: models.PredicateFocusScoreAtLeast, Threshold: 90},
	},
	{
		ID:          "marathon",
		Name:        "Marathon Session",
		Description: "Focused for 2+ hours",
		Badge:       "🏃",
		Category:    CategoryEndurance,
		Condition:   models.Predicate{Kind: models.PredicateActiveSecondsAtLeast, Threshold: 7200},
	},
	{
		ID:          "zen_mode",
		Name:        "Zen Mode",
		Description: "Zero context switches",
		Badge:       "🧘",
		Category:    CategoryDiscipline,
		Condition:   models.Predicate{Kind: models.PredicateAppSwitchesEqual, Threshold: 0},
	},
	{
		ID:          "power_hour",
		Name:        "Power Hour",
		Description: "80%+ focus for 1+ hour",
		Badge:       "⚡",
		Category:    CategoryFocus,
		Condition: models.Predicate{Kind: models.PredicateAllOf, AllOf: []models.Predicate{
			{Kind: models.PredicateFocusScoreAtLeast, Threshold: 80},
			{Kind: models.PredicateActiveSecondsAtLeast, Threshold: 3600},
		}},
	},
	{
		ID:          "streak_3",
		Name:        "3-Day Streak",
		Description: "Focused 3 days in a row",
		Badge:       "🔥",
		Category:    CategoryStreak,
		Condition:   models.Predicate{Kind: models.PredicateStreakAtLeast, Threshold: 3},
	},
	{
		ID:          "streak_7",
		Name:        "Week Warrior",
		Description: "7-day focus streak",
		Badge:       "🌟",
		Category:    CategoryStreak,
		Condition:   models.Predicate{Kind: models.PredicateStreakAtLeast, Threshold: 7},
	},
	{
		ID:          "streak_14",
		Name:        "Fortnight Force",
		Description: "14-day streak",
		Badge:       "💎",
		Category:    CategoryStreak,
		Condition:   models.Predicate{Kind: models.PredicateStreakAtLeast, Threshold: 14},
	},
	{
		ID:          "streak_30",
		Name:        "Monthly Master",
		Description: "30-day streak!",
		Badge:       "👑",
		Category:    CategoryStreak,
		Condition:   models.Predicate{Kind: models.PredicateStreakAtLeast, Threshold: 30},
	},
	{
		ID:          "perfect_day",
		Name:        "Perfect Day",
		Description: "All sessions >80% focus",
		Badge:       "✨",
		Category:    CategoryFocus,
		Condition:   models.Predicate{Kind: models.PredicateDailyFocusAllAtLeast, Threshold: 80},
	},
	{
		ID:          "improvement_king",
		Name:        "Improvement King",
		Description: "+20% vs last week",
		Badge:       "📈",
		Category:    CategoryImprovement,
		Condition:   models.Predicate{Kind: models.PredicateWeeklyImprovementAtLeast, Threshold: 20},
	},
}
