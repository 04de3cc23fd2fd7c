package database

import (
	"attentionos/internal/database/repositories"
)

// Repository provides access to all database repositories
type Repository struct {
	Session     *repositories.SessionRepository
	Achievement *repositories.AchievementRepository
}

// NewRepository creates a new repository collection
func NewRepository(db *DB) *Repository {
	return &Repository{
		Session:     repositories.NewSessionRepository(db.DB),
		Achievement: repositories.NewAchievementRepository(db.DB),
	}
}
