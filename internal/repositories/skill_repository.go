package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

type skillRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSkillRepository creates a new skill checklist repository
func NewSkillRepository(db *sql.DB, logger *zap.Logger) *skillRepository {
	return &skillRepository{
		db:     db,
		logger: logger,
	}
}

// SeedDefaults inserts the given checklist for a user, skipping skills already present
func (r *skillRepository) SeedDefaults(ctx context.Context, userID int, skills []models.DefaultSkill) error {
	if len(skills) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(skills))
	args := make([]any, 0, len(skills)*3)
	for _, s := range skills {
		placeholders = append(placeholders, "(?, ?, ?)")
		args = append(args, userID, s.Skill, s.Title)
	}

	query := `INSERT IGNORE INTO skill_items (user_id, skill, title) VALUES ` + strings.Join(placeholders, ", ")

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to seed skills", zap.Error(err), zap.Int("user_id", userID))
		return fmt.Errorf("failed to seed skills: %w", err)
	}

	return nil
}

// ListByUser returns the checklist of a user in insertion order
func (r *skillRepository) ListByUser(ctx context.Context, userID int) ([]models.SkillItem, error) {
	query := `
		SELECT id, user_id, skill, title, completed, completed_at
		FROM skill_items
		WHERE user_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to query skills", zap.Error(err), zap.Int("user_id", userID))
		return nil, fmt.Errorf("failed to query skills: %w", err)
	}
	defer rows.Close()

	skills := []models.SkillItem{}
	for rows.Next() {
		var (
			item        models.SkillItem
			completedAt sql.NullTime
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.Skill, &item.Title, &item.Completed, &completedAt); err != nil {
			r.logger.Error("failed to scan skill", zap.Error(err))
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		if completedAt.Valid {
			t := completedAt.Time
			item.CompletedAt = &t
		}
		skills = append(skills, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return skills, nil
}

// SetCompleted marks a checklist entry of the user as done or not done
func (r *skillRepository) SetCompleted(ctx context.Context, userID, skillID int, completed bool) error {
	query := `
		UPDATE skill_items
		SET completed = ?, completed_at = IF(?, COALESCE(completed_at, CURRENT_TIMESTAMP), NULL)
		WHERE id = ? AND user_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, completed, completed, skillID, userID)
	if err != nil {
		r.logger.Error("failed to update skill", zap.Error(err), zap.Int("skill_id", skillID))
		return fmt.Errorf("failed to update skill: %w", err)
	}

	return expectAffected(result, models.ErrSkillNotFound)
}
