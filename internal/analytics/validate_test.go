package analytics

import (
	"errors"
	"math"
	"testing"
	"time"

	"attentionos/internal/analytics/models"
)

func validRecord() models.SessionRecord {
	return models.SessionRecord{
		ID:                 7,
		StartTime:          "2026-03-20 09:00:00",
		EndTime:            "2026-03-20 10:30:00",
		TotalActiveSeconds: 4800,
		TotalIdleSeconds:   600,
		AppSwitches:        12,
		FocusScore:         76.5,
	}
}

func TestValidate(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	v := NewValidator(loc)

	s, err := v.Validate(validRecord())
	if err != nil {
		t.Fatalf("Expected valid record, got %v", err)
	}

	want := time.Date(2026, 3, 20, 9, 0, 0, 0, loc)
	if !s.StartTime.Equal(want) {
		t.Errorf("Expected start %v, got %v", want, s.StartTime)
	}
	if s.Duration() != 90*time.Minute {
		t.Errorf("Expected 90m duration, got %v", s.Duration())
	}
	if s.Record().StartTime != "2026-03-20 09:00:00" {
		t.Errorf("Unexpected storage form %q", s.Record().StartTime)
	}
}

func TestValidateTimestampLayouts(t *testing.T) {
	v := NewValidator(time.UTC)

	layouts := []string{
		"2026-03-20T09:00:00Z",
		"2026-03-20T11:00:00+02:00",
		"2026-03-20T09:00:00.123456",
		"2026-03-20 09:00:00",
		"2026-03-20T09:00:00",
	}

	for _, start := range layouts {
		rec := validRecord()
		rec.StartTime = start
		rec.EndTime = "2026-03-20T10:00:00Z"

		s, err := v.Validate(rec)
		if err != nil {
			t.Errorf("Layout %q rejected: %v", start, err)
			continue
		}
		if s.StartTime.Hour() != 9 {
			t.Errorf("Layout %q parsed to %v", start, s.StartTime)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.SessionRecord)
	}{
		{"bad start", func(r *models.SessionRecord) { r.StartTime = "yesterday" }},
		{"missing end", func(r *models.SessionRecord) { r.EndTime = "" }},
		{"start after end", func(r *models.SessionRecord) { r.StartTime = "2026-03-20 11:00:00" }},
		{"negative active", func(r *models.SessionRecord) { r.TotalActiveSeconds = -1 }},
		{"negative idle", func(r *models.SessionRecord) { r.TotalIdleSeconds = -5 }},
		{"negative switches", func(r *models.SessionRecord) { r.AppSwitches = -2 }},
		{"score above range", func(r *models.SessionRecord) { r.FocusScore = 100.1 }},
		{"score below range", func(r *models.SessionRecord) { r.FocusScore = -0.1 }},
		{"score NaN", func(r *models.SessionRecord) { r.FocusScore = math.NaN() }},
	}

	v := NewValidator(time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)

			if _, err := v.Validate(rec); !errors.Is(err, ErrInvalidSession) {
				t.Errorf("Expected ErrInvalidSession, got %v", err)
			}
		})
	}
}

func TestFilterValid(t *testing.T) {
	good := validRecord()
	bad := validRecord()
	bad.ID = 8
	bad.FocusScore = 250
	second := validRecord()
	second.ID = 9

	sessions, rejected := NewValidator(time.UTC).FilterValid([]models.SessionRecord{good, bad, second})

	if len(sessions) != 2 || sessions[0].ID != 7 || sessions[1].ID != 9 {
		t.Errorf("Expected sessions 7 and 9 in order, got %+v", sessions)
	}
	if len(rejected) != 1 || rejected[0].Record.ID != 8 {
		t.Errorf("Expected record 8 rejected, got %+v", rejected)
	}
	if rejected[0].Reason == "" {
		t.Error("Expected a rejection reason")
	}
}
