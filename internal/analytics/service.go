package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"attentionos/internal/analytics/models"
	"attentionos/pkg/logger"
)

var (
	// ErrSessionNotFound is returned when no valid session has the requested id
	ErrSessionNotFound = errors.New("session not found")

	// ErrReadOnlySource is returned when the session source cannot store sessions
	ErrReadOnlySource = errors.New("session source is read-only")

	// ErrSessionExists is returned when a stored session already has the id
	ErrSessionExists = errors.New("session already exists")
)

// SessionSource supplies raw session records
type SessionSource interface {
	ListSessionRecords(ctx context.Context) ([]models.SessionRecord, error)
}

// SessionWriter stores a validated session record and returns it with its id.
// CreateSession fails with ErrSessionExists when the id is already taken.
type SessionWriter interface {
	CreateSession(ctx context.Context, rec models.SessionRecord) (models.SessionRecord, error)
}

// UnlockLedger remembers when each achievement was first seen unlocked.
// RecordUnlocks returns the first-seen time of every id passed in.
type UnlockLedger interface {
	RecordUnlocks(ctx context.Context, ids []string, at time.Time) (map[string]time.Time, error)
}

// Service runs the engine over sessions pulled from a source
type Service struct {
	mu        sync.Mutex
	source    SessionSource
	engine    *Engine
	validator *Validator
	ledger    UnlockLedger
	logger    *logger.ColoredLogger
}

// NewService creates a new analytics service
func NewService(source SessionSource, engine *Engine) *Service {
	if engine == nil {
		engine = NewEngine(nil, nil, nil)
	}
	return &Service{
		source:    source,
		engine:    engine,
		validator: NewValidator(engine.Location()),
		logger:    logger.AnalyticsLogger,
	}
}

// SetLedger enables first-unlock tracking
func (s *Service) SetLedger(ledger UnlockLedger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = ledger
}

// Engine returns the achievement engine
func (s *Service) Engine() *Engine {
	return s.engine
}

// load fetches and validates the current history, most recent first
func (s *Service) load(ctx context.Context) ([]models.Session, []models.Rejection, error) {
	records, err := s.source.ListSessionRecords(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions, rejected := s.validator.FilterValid(records)
	for _, r := range rejected {
		s.logger.Warn("Skipping session %d: %s", r.Record.ID, r.Reason)
	}

	return sortedByStartDesc(sessions), rejected, nil
}

// Sessions returns every valid session, most recent first
func (s *Service) Sessions(ctx context.Context) ([]models.Session, error) {
	sessions, _, err := s.load(ctx)
	return sessions, err
}

// Session returns the valid session with the given id
func (s *Service) Session(ctx context.Context, id int) (models.Session, error) {
	sessions, _, err := s.load(ctx)
	if err != nil {
		return models.Session{}, err
	}
	return findSession(sessions, id)
}

// AddSession validates and stores a new session record
func (s *Service) AddSession(ctx context.Context, rec models.SessionRecord) (models.Session, error) {
	writer, ok := s.source.(SessionWriter)
	if !ok {
		return models.Session{}, ErrReadOnlySource
	}

	session, err := s.validator.Validate(rec)
	if err != nil {
		return models.Session{}, err
	}

	stored, err := writer.CreateSession(ctx, session.Record())
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to store session: %w", err)
	}
	session.ID = stored.ID

	s.logger.Info("Stored session %d (focus %.1f)", session.ID, session.FocusScore)
	return session, nil
}

// Stats returns aggregate statistics over the history
func (s *Service) Stats(ctx context.Context) (models.SessionStats, error) {
	sessions, _, err := s.load(ctx)
	if err != nil {
		return models.SessionStats{}, err
	}
	return CalculateStats(sessions), nil
}

// Grade returns today's report
func (s *Service) Grade(ctx context.Context) (models.DailyReport, error) {
	sessions, _, err := s.load(ctx)
	if err != nil {
		return models.DailyReport{}, err
	}
	return DailyReportFor(sessions, s.engine.Now(), s.engine.Location()), nil
}

// Streak returns the current day streak
func (s *Service) Streak(ctx context.Context) (int, error) {
	sessions, _, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return CalculateStreak(sessions, s.engine.Location()), nil
}

// Trend returns both trend figures
func (s *Service) Trend(ctx context.Context) (models.TrendSummary, error) {
	sessions, _, err := s.load(ctx)
	if err != nil {
		return models.TrendSummary{}, err
	}
	return models.TrendSummary{
		WeeklyImprovement: WeeklyImprovement(sessions, s.engine.Now()),
		TrendVsAverage:    TrendVsAverage(sessions),
	}, nil
}

// Unlocked returns every achievement unlocked across the history
func (s *Service) Unlocked(ctx context.Context) ([]models.UnlockedAchievement, error) {
	sessions, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.unlocked(ctx, sessions), nil
}

// SessionAchievements returns a session and the achievements it unlocks
// against the current history
func (s *Service) SessionAchievements(ctx context.Context, id int) (models.Session, []models.AchievementDefinition, error) {
	sessions, _, err := s.load(ctx)
	if err != nil {
		return models.Session{}, nil, err
	}

	session, err := findSession(sessions, id)
	if err != nil {
		return models.Session{}, nil, err
	}

	return session, s.engine.Check(session, sessions), nil
}

// Dashboard computes the full derived-metrics snapshot
func (s *Service) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	sessions, rejected, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.engine.Now()
	loc := s.engine.Location()

	dashboard := &models.Dashboard{
		GeneratedAt:       now,
		Stats:             CalculateStats(sessions),
		Today:             DailyReportFor(sessions, now, loc),
		Streak:            CalculateStreak(sessions, loc),
		WeeklyImprovement: WeeklyImprovement(sessions, now),
		TrendVsAverage:    TrendVsAverage(sessions),
		Health:            LatestHealth(sessions),
		DailyBreakdown:    DailyBreakdown(sessions, loc),
		Achievements:      s.unlocked(ctx, sessions),
		RejectedRecords:   len(rejected),
	}

	s.logger.Debug("Dashboard computed: %d sessions, grade %s, streak %d, %d achievements",
		len(sessions), dashboard.Today.Grade, dashboard.Streak, len(dashboard.Achievements))

	return dashboard, nil
}

func (s *Service) unlocked(ctx context.Context, sessions []models.Session) []models.UnlockedAchievement {
	defs := s.engine.AllUnlocked(sessions)

	result := make([]models.UnlockedAchievement, len(defs))
	for i, def := range defs {
		result[i] = models.UnlockedAchievement{AchievementDefinition: def}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ledger == nil || len(defs) == 0 {
		return result
	}

	firstSeen, err := s.ledger.RecordUnlocks(ctx, IDs(defs), s.engine.Now())
	if err != nil {
		// the unlocked set stands without first-seen times
		s.logger.Warn("Failed to record unlocks: %v", err)
		return result
	}

	for i := range result {
		if at, ok := firstSeen[result[i].ID]; ok {
			at := at
			result[i].FirstUnlockedAt = &at
		}
	}
	return result
}

func findSession(sessions []models.Session, id int) (models.Session, error) {
	for _, session := range sessions {
		if session.ID == id {
			return session, nil
		}
	}
	return models.Session{}, fmt.Errorf("session %d: %w", id, ErrSessionNotFound)
}

// MemorySource serves a fixed set of records, e.g. a file import
type MemorySource struct {
	mu      sync.RWMutex
	records []models.SessionRecord
}

// NewMemorySource creates a source over a copy of records
func NewMemorySource(records []models.SessionRecord) *MemorySource {
	m := &MemorySource{records: make([]models.SessionRecord, len(records))}
	copy(m.records, records)
	return m
}

// ListSessionRecords returns a copy of the records
func (m *MemorySource) ListSessionRecords(ctx context.Context) ([]models.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]models.SessionRecord, len(m.records))
	copy(records, m.records)
	return records, nil
}

// CreateSession appends a record, assigning the next id when it has none
func (m *MemorySource) CreateSession(ctx context.Context, rec models.SessionRecord) (models.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID != 0 {
		for _, existing := range m.records {
			if existing.ID == rec.ID {
				return models.SessionRecord{}, fmt.Errorf("session %d: %w", rec.ID, ErrSessionExists)
			}
		}
	} else {
		for _, existing := range m.records {
			if existing.ID >= rec.ID {
				rec.ID = existing.ID + 1
			}
		}
		if rec.ID == 0 {
			rec.ID = 1
		}
	}
	m.records = append(m.records, rec)
	return rec, nil
}
