package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"attentionos/internal/analytics/models"
	"attentionos/pkg/logger"
)

// AchievementRepository handles database operations for achievements
type AchievementRepository struct {
	db     *sql.DB
	logger *logger.ColoredLogger
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(db *sql.DB) *AchievementRepository {
	return &AchievementRepository{
		db:     db,
		logger: logger.CreateComponentLogger("AchievementRepo", logger.ColorYellow),
	}
}

// SyncCatalog replaces the stored catalog with definitions, keeping their order
func (r *AchievementRepository) SyncCatalog(ctx context.Context, definitions []models.AchievementDefinition) error {
	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM achievements"); err != nil {
			return fmt.Errorf("failed to clear achievements: %w", err)
		}

		for i, def := range definitions {
			condition, err := json.Marshal(def.Condition)
			if err != nil {
				return fmt.Errorf("failed to encode condition for %s: %w", def.ID, err)
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO achievements
				(achievement_id, position, name, description, badge, category, condition_json, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
				def.ID, i, def.Name, def.Description, def.Badge, def.Category, string(condition))
			if err != nil {
				return fmt.Errorf("failed to insert achievement %s: %w", def.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("Synced %d achievement definitions", len(definitions))
	return nil
}

// ListCatalog returns the stored catalog in order
func (r *AchievementRepository) ListCatalog(ctx context.Context) ([]models.AchievementDefinition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT achievement_id, name, description, badge, category, condition_json
		FROM achievements
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	definitions := make([]models.AchievementDefinition, 0)
	for rows.Next() {
		var def models.AchievementDefinition
		var condition string
		if err := rows.Scan(&def.ID, &def.Name, &def.Description, &def.Badge, &def.Category, &condition); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		if err := json.Unmarshal([]byte(condition), &def.Condition); err != nil {
			return nil, fmt.Errorf("failed to decode condition for %s: %w", def.ID, err)
		}
		definitions = append(definitions, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate achievements: %w", err)
	}

	return definitions, nil
}

// RecordUnlocks stores at as the first unlock time of every id not seen
// before and returns the first unlock time of each id
func (r *AchievementRepository) RecordUnlocks(ctx context.Context, ids []string, at time.Time) (map[string]time.Time, error) {
	firstSeen := make(map[string]time.Time, len(ids))

	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, id := range ids {
			result, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO achievement_unlocks (achievement_id, first_unlocked_at) VALUES (?, ?)",
				id, at.UTC())
			if err != nil {
				return fmt.Errorf("failed to record unlock %s: %w", id, err)
			}
			if n, _ := result.RowsAffected(); n > 0 {
				r.logger.Info("Achievement unlocked: %s", id)
			}

			var first time.Time
			err = tx.QueryRowContext(ctx,
				"SELECT first_unlocked_at FROM achievement_unlocks WHERE achievement_id = ?", id).Scan(&first)
			if err != nil {
				return fmt.Errorf("failed to read unlock %s: %w", id, err)
			}
			firstSeen[id] = first
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return firstSeen, nil
}
