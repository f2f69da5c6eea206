package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

// userRepository implements UserRepository
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, email, full_name, password_hash, role, phone, telegram_chat_id,
		preferred_transmission, anxiety_level, anxiety_score, created_at`

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, full_name, password_hash, role, anxiety_level)
		VALUES (?, ?, ?, ?, ?)
	`

	if user.AnxietyLevel == "" {
		user.AnxietyLevel = models.AnxietyLevelNone
	}

	result, err := r.db.ExecContext(ctx, query, user.Email, user.FullName, user.PasswordHash, user.Role, user.AnxietyLevel)
	if err != nil {
		if isDuplicateEntry(err) {
			return models.ErrEmailExists
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by id
func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("user_id", id))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check email existence", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// UpdateProfile stores the editable profile fields of a user
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET full_name = ?, phone = ?, telegram_chat_id = ?, preferred_transmission = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, user.FullName, user.Phone, user.TelegramChatID, user.PreferredTransmission, user.ID)
	if err != nil {
		r.logger.Error("failed to update profile", zap.Error(err), zap.Int("user_id", user.ID))
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return expectAffected(result, models.ErrUserNotFound)
}

// UpdateAnxiety stores the latest assessment result
func (r *userRepository) UpdateAnxiety(ctx context.Context, userID int, score int, level models.AnxietyLevel) error {
	query := `UPDATE users SET anxiety_score = ?, anxiety_level = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, score, level, userID)
	if err != nil {
		r.logger.Error("failed to update anxiety", zap.Error(err), zap.Int("user_id", userID))
		return fmt.Errorf("failed to update anxiety: %w", err)
	}

	return expectAffected(result, models.ErrUserNotFound)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user  models.User
		score sql.NullInt32
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.Role,
		&user.Phone,
		&user.TelegramChatID,
		&user.PreferredTransmission,
		&user.AnxietyLevel,
		&score,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if score.Valid {
		s := int(score.Int32)
		user.AnxietyScore = &s
	}
	return &user, nil
}

// expectAffected converts an update that matched no rows into notFound.
// The DSN sets clientFoundRows so unchanged rows still count as matched.
func expectAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
