package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

// userTokenRepository implements UserTokenRepository
type userTokenRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserTokenRepository creates a new user token repository
func NewUserTokenRepository(db *sql.DB, logger *zap.Logger) *userTokenRepository {
	return &userTokenRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a refresh token
func (r *userTokenRepository) Create(ctx context.Context, userToken *models.UserToken) error {
	query := `
		INSERT INTO user_tokens (user_id, token)
		VALUES (?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, userToken.UserID, userToken.Token)
	if err != nil {
		r.logger.Error("failed to create user token", zap.Error(err), zap.Int("user_id", userToken.UserID))
		return fmt.Errorf("failed to create user token: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		userToken.ID = int(id)
	}
	return nil
}

// GetByToken retrieves a refresh token record
func (r *userTokenRepository) GetByToken(ctx context.Context, token string) (*models.UserToken, error) {
	query := `
		SELECT id, user_id, token
		FROM user_tokens
		WHERE token = ?
		LIMIT 1
	`

	userToken := &models.UserToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&userToken.ID,
		&userToken.UserID,
		&userToken.Token,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTokenNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user token", zap.Error(err))
		return nil, fmt.Errorf("failed to get user token: %w", err)
	}

	return userToken, nil
}

// UpdateToken replaces a refresh token during rotation
func (r *userTokenRepository) UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error {
	query := `
		UPDATE user_tokens
		SET token = ?, created_at = CURRENT_TIMESTAMP
		WHERE token = ? AND user_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, newToken, oldToken, userID)
	if err != nil {
		r.logger.Error("failed to update user token", zap.Error(err), zap.Int("user_id", userID))
		return fmt.Errorf("failed to update user token: %w", err)
	}

	return expectAffected(result, models.ErrTokenNotFound)
}

// DeleteByToken removes a refresh token
func (r *userTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM user_tokens WHERE token = ?`

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		r.logger.Error("failed to delete user token", zap.Error(err))
		return fmt.Errorf("failed to delete user token: %w", err)
	}

	return nil
}

// DeleteExpiredTokens removes tokens issued before expiryTime and returns how many were removed
func (r *userTokenRepository) DeleteExpiredTokens(ctx context.Context, expiryTime time.Time) (int, error) {
	query := `DELETE FROM user_tokens WHERE created_at < ?`

	result, err := r.db.ExecContext(ctx, query, expiryTime)
	if err != nil {
		r.logger.Error("failed to delete expired tokens", zap.Error(err))
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(n), nil
}
