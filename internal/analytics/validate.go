package analytics

import (
	"errors"
	"fmt"
	"math"
	"time"

	"attentionos/internal/analytics/models"
)

// ErrInvalidSession is returned for records that cannot enter the engine
var ErrInvalidSession = errors.New("invalid session")

// Validator converts session records into typed sessions
type Validator struct {
	loc *time.Location
}

// NewValidator creates a validator that reads zoneless timestamps in loc
func NewValidator(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.Local
	}
	return &Validator{loc: loc}
}

// Validate checks a record and returns the typed session
func (v *Validator) Validate(rec models.SessionRecord) (models.Session, error) {
	start, err := models.ParseTimestamp(rec.StartTime, v.loc)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: start_time: %v", ErrInvalidSession, err)
	}
	end, err := models.ParseTimestamp(rec.EndTime, v.loc)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: end_time: %v", ErrInvalidSession, err)
	}

	switch {
	case start.After(end):
		return models.Session{}, fmt.Errorf("%w: start_time after end_time", ErrInvalidSession)
	case rec.TotalActiveSeconds < 0:
		return models.Session{}, fmt.Errorf("%w: negative total_active_seconds", ErrInvalidSession)
	case rec.TotalIdleSeconds < 0:
		return models.Session{}, fmt.Errorf("%w: negative total_idle_seconds", ErrInvalidSession)
	case rec.AppSwitches < 0:
		return models.Session{}, fmt.Errorf("%w: negative app_switches", ErrInvalidSession)
	case math.IsNaN(rec.FocusScore) || rec.FocusScore < 0 || rec.FocusScore > 100:
		return models.Session{}, fmt.Errorf("%w: focus_score %v outside [0, 100]", ErrInvalidSession, rec.FocusScore)
	}

	return models.Session{
		ID:                 rec.ID,
		StartTime:          start,
		EndTime:            end,
		TotalActiveSeconds: rec.TotalActiveSeconds,
		TotalIdleSeconds:   rec.TotalIdleSeconds,
		AppSwitches:        rec.AppSwitches,
		FocusScore:         rec.FocusScore,
	}, nil
}

// FilterValid validates every record, keeping input order for the accepted ones
func (v *Validator) FilterValid(records []models.SessionRecord) ([]models.Session, []models.Rejection) {
	sessions := make([]models.Session, 0, len(records))
	var rejected []models.Rejection

	for _, rec := range records {
		s, err := v.Validate(rec)
		if err != nil {
			rejected = append(rejected, models.Rejection{Record: rec, Reason: err.Error()})
			continue
		}
		sessions = append(sessions, s)
	}

	return sessions, rejected
}
