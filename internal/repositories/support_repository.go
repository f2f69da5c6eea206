package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

type supportRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSupportRepository creates a new support message repository
func NewSupportRepository(db *sql.DB, logger *zap.Logger) *supportRepository {
	return &supportRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a contact form submission
func (r *supportRepository) Create(ctx context.Context, message *models.SupportMessage) error {
	query := `
		INSERT INTO support_messages (user_id, name, email, message, status)
		VALUES (?, ?, ?, ?, ?)
	`

	if message.Status == "" {
		message.Status = models.SupportStatusOpen
	}

	result, err := r.db.ExecContext(ctx, query, message.UserID, message.Name, message.Email, message.Message, message.Status)
	if err != nil {
		r.logger.Error("failed to create support message", zap.Error(err))
		return fmt.Errorf("failed to create support message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	message.ID = int(id)
	return nil
}

// List returns a page of support messages, newest first. An empty status matches all.
func (r *supportRepository) List(ctx context.Context, status models.SupportStatus, limit, offset int) ([]models.SupportMessage, error) {
	query := `
		SELECT id, user_id, name, email, message, status, created_at
		FROM support_messages
	`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query support messages", zap.Error(err))
		return nil, fmt.Errorf("failed to query support messages: %w", err)
	}
	defer rows.Close()

	messages := []models.SupportMessage{}
	for rows.Next() {
		var (
			message models.SupportMessage
			userID  sql.NullInt64
		)
		if err := rows.Scan(&message.ID, &userID, &message.Name, &message.Email, &message.Message, &message.Status, &message.CreatedAt); err != nil {
			r.logger.Error("failed to scan support message", zap.Error(err))
			return nil, fmt.Errorf("failed to scan support message: %w", err)
		}
		if userID.Valid {
			id := int(userID.Int64)
			message.UserID = &id
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return messages, nil
}

// Resolve marks a support message as resolved
func (r *supportRepository) Resolve(ctx context.Context, id int) error {
	query := `UPDATE support_messages SET status = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, models.SupportStatusResolved, id)
	if err != nil {
		r.logger.Error("failed to resolve support message", zap.Error(err), zap.Int("support_id", id))
		return fmt.Errorf("failed to resolve support message: %w", err)
	}

	return expectAffected(result, models.ErrSupportNotFound)
}
