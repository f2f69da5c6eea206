package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/drivingschool/backend/internal/auth"
	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for Users table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user; its ID is filled on success.
	//
	// If the email is already registered, models.ErrEmailExists is returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmail retrieves a user by email.
	//
	// If user with such email does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method UpdateProfile stores full name, phone, Telegram chat id and preferred transmission of the user.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned.
	UpdateProfile(ctx context.Context, user *models.User) error
	// Method UpdateAnxiety stores the latest assessment score and level.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned.
	UpdateAnxiety(ctx context.Context, userID int, score int, level models.AnxietyLevel) error
}

// UserTokenRepository is the interface that wraps methods for UserToken table data access
type UserTokenRepository interface {
	// Method Create inserts a new refresh token into the database.
	Create(ctx context.Context, userToken *models.UserToken) error
	// Method GetByToken retrieves a user token by token string.
	//
	// If the token is unknown, models.ErrTokenNotFound will be returned together with "nil" value.
	GetByToken(ctx context.Context, token string) (*models.UserToken, error)
	// Method UpdateToken replaces "oldToken" of the user with "newToken".
	//
	// If the token is unknown, models.ErrTokenNotFound will be returned.
	UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error
	// Method DeleteByToken deletes a user token by token string.
	//
	// Deleting an unknown token is not an error.
	DeleteByToken(ctx context.Context, token string) error
}

// LearnerSetup prepares progress records of a freshly registered learner
type LearnerSetup interface {
	// Method InitLearner creates the lesson counter and the default skill checklist.
	InitLearner(ctx context.Context, userID int) error
}

// authService implements AuthService
type authService struct {
	userRepo       UserRepository
	userTokenRepo  UserTokenRepository
	learnerSetup   LearnerSetup
	tokenGenerator *auth.TokenGenerator
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	userTokenRepo UserTokenRepository,
	learnerSetup LearnerSetup,
	tokenGenerator *auth.TokenGenerator,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:       userRepo,
		userTokenRepo:  userTokenRepo,
		learnerSetup:   learnerSetup,
		tokenGenerator: tokenGenerator,
		logger:         logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// passwordRegex validates password: at least 8 chars, uppercase, lowercase, number, special character
var passwordRegex = []*regexp.Regexp{
	regexp.MustCompile(`.{8,}`),
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[A-Z]`),
	regexp.MustCompile(`[0-9]`),
	regexp.MustCompile(`[^a-zA-Z0-9\s]`),
}

const passwordPolicy = "password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character"

// Register creates a new learner account and returns access and refresh tokens
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (string, string, error) {
	email, err := s.checkRegisterCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return "", "", err
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return "", "", models.NewValidationError("full name cannot be empty")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(passwordHash),
		Role:         models.RoleStudent,
		AnxietyLevel: models.AnxietyLevelNone,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", "", err
	}

	// progress is also created lazily on first read
	if err := s.learnerSetup.InitLearner(ctx, user.ID); err != nil {
		s.logger.Warn("failed to initialise learner progress", zap.Int("user_id", user.ID), zap.Error(err))
	}

	return s.generateAndSaveTokens(ctx, user.ID, user.Role)
}

// Login authenticates a user by email and password
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (string, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return "", "", models.NewValidationError("email cannot be empty")
	}
	if req.Password == "" {
		return "", "", models.NewValidationError("password cannot be empty")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		return "", "", models.ErrInvalidCredentials
	}
	if err != nil {
		return "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", "", models.ErrInvalidCredentials
	}

	return s.generateAndSaveTokens(ctx, user.ID, user.Role)
}

// Refresh rotates a refresh token and issues a new access token
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", "", models.ErrInvalidToken
	}

	if err := s.tokenGenerator.ValidateRefreshToken(refreshToken); err != nil {
		if delErr := s.userTokenRepo.DeleteByToken(ctx, refreshToken); delErr != nil {
			s.logger.Warn("failed to delete invalid refresh token", zap.Error(delErr))
		}
		return "", "", models.ErrInvalidToken
	}

	userToken, err := s.userTokenRepo.GetByToken(ctx, refreshToken)
	if errors.Is(err, models.ErrTokenNotFound) {
		return "", "", models.ErrInvalidToken
	}
	if err != nil {
		return "", "", err
	}

	user, err := s.userRepo.GetByID(ctx, userToken.UserID)
	if err != nil {
		return "", "", err
	}

	accessToken, newRefreshToken, err := s.tokenGenerator.GenerateTokens(user.ID, int(user.Role))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.userTokenRepo.UpdateToken(ctx, refreshToken, newRefreshToken, user.ID); err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			// rotated concurrently by another request
			return "", "", models.ErrInvalidToken
		}
		return "", "", err
	}

	return accessToken, newRefreshToken, nil
}

// Logout revokes a refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	return s.userTokenRepo.DeleteByToken(ctx, refreshToken)
}

func (s *authService) generateAndSaveTokens(ctx context.Context, userID int, role models.Role) (string, string, error) {
	accessToken, refreshToken, err := s.tokenGenerator.GenerateTokens(userID, int(role))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.userTokenRepo.Create(ctx, &models.UserToken{UserID: userID, Token: refreshToken}); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// checkRegisterCredentials validates the password policy and email format and uniqueness.
// Both checks run concurrently; the normalised email is returned.
func (s *authService) checkRegisterCredentials(ctx context.Context, email, password string) (string, error) {
	validationErrors := make(chan error, 2)
	normalizedEmail := strings.TrimSpace(strings.ToLower(email))

	go func() {
		for _, regex := range passwordRegex {
			if !regex.MatchString(password) {
				validationErrors <- models.NewValidationError(passwordPolicy)
				return
			}
		}
		validationErrors <- nil
	}()

	go func() {
		if !emailRegex.MatchString(normalizedEmail) {
			validationErrors <- models.NewValidationError("invalid email format")
			return
		}
		exists, err := s.userRepo.ExistsByEmail(ctx, normalizedEmail)
		if err != nil {
			validationErrors <- fmt.Errorf("failed to check email: %w", err)
			return
		}
		if exists {
			validationErrors <- models.ErrEmailExists
			return
		}
		validationErrors <- nil
	}()

	var firstErr error
	for range 2 {
		if err := <-validationErrors; err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return normalizedEmail, firstErr
}
