package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/drivingschool/backend/internal/auth"
	"github.com/drivingschool/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestTokenGenerator() *auth.TokenGenerator {
	return auth.NewTokenGenerator("test-secret", time.Hour, 24*time.Hour)
}

func TestNewAuthService(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	userRepo := &mockUserRepository{}
	tokenRepo := &mockUserTokenRepository{}
	setup := &mockLearnerSetup{}
	tokenGen := newTestTokenGenerator()

	svc := NewAuthService(userRepo, tokenRepo, setup, tokenGen, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, userRepo, svc.userRepo)
	assert.Equal(t, tokenRepo, svc.userTokenRepo)
	assert.Equal(t, setup, svc.learnerSetup)
	assert.Equal(t, tokenGen, svc.tokenGenerator)
}

func TestAuthService_Register(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	tests := []struct {
		name          string
		req           models.RegisterRequest
		userRepo      *mockUserRepository
		tokenRepo     *mockUserTokenRepository
		setup         *mockLearnerSetup
		expectedError error
		validation    bool
	}{
		{
			name:      "success",
			req:       models.RegisterRequest{Email: " Learner@Example.com ", FullName: "Ann Driver", Password: "Password123!"},
			userRepo:  &mockUserRepository{},
			tokenRepo: &mockUserTokenRepository{},
			setup:     &mockLearnerSetup{},
		},
		{
			name:      "learner setup failure does not fail registration",
			req:       models.RegisterRequest{Email: "learner@example.com", FullName: "Ann Driver", Password: "Password123!"},
			userRepo:  &mockUserRepository{},
			tokenRepo: &mockUserTokenRepository{},
			setup:     &mockLearnerSetup{err: errors.New("db down")},
		},
		{
			name:       "weak password",
			req:        models.RegisterRequest{Email: "learner@example.com", FullName: "Ann Driver", Password: "password"},
			userRepo:   &mockUserRepository{},
			tokenRepo:  &mockUserTokenRepository{},
			setup:      &mockLearnerSetup{},
			validation: true,
		},
		{
			name:       "password without special character",
			req:        models.RegisterRequest{Email: "learner@example.com", FullName: "Ann Driver", Password: "Password123"},
			userRepo:   &mockUserRepository{},
			tokenRepo:  &mockUserTokenRepository{},
			setup:      &mockLearnerSetup{},
			validation: true,
		},
		{
			name:       "invalid email",
			req:        models.RegisterRequest{Email: "not-an-email", FullName: "Ann Driver", Password: "Password123!"},
			userRepo:   &mockUserRepository{},
			tokenRepo:  &mockUserTokenRepository{},
			setup:      &mockLearnerSetup{},
			validation: true,
		},
		{
			name:       "empty name",
			req:        models.RegisterRequest{Email: "learner@example.com", FullName: "   ", Password: "Password123!"},
			userRepo:   &mockUserRepository{},
			tokenRepo:  &mockUserTokenRepository{},
			setup:      &mockLearnerSetup{},
			validation: true,
		},
		{
			name:          "email exists",
			req:           models.RegisterRequest{Email: "learner@example.com", FullName: "Ann Driver", Password: "Password123!"},
			userRepo:      &mockUserRepository{exists: true},
			tokenRepo:     &mockUserTokenRepository{},
			setup:         &mockLearnerSetup{},
			expectedError: models.ErrEmailExists,
		},
		{
			name:          "duplicate on insert",
			req:           models.RegisterRequest{Email: "learner@example.com", FullName: "Ann Driver", Password: "Password123!"},
			userRepo:      &mockUserRepository{createErr: models.ErrEmailExists},
			tokenRepo:     &mockUserTokenRepository{},
			setup:         &mockLearnerSetup{},
			expectedError: models.ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(tt.userRepo, tt.tokenRepo, tt.setup, newTestTokenGenerator(), logger)

			access, refresh, err := svc.Register(context.Background(), &tt.req)

			if tt.validation {
				var vErr *models.ValidationError
				assert.ErrorAs(t, err, &vErr)
				assert.Nil(t, tt.userRepo.created)
				return
			}
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, access)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, access)
			assert.NotEmpty(t, refresh)
			require.NotNil(t, tt.userRepo.created)
			assert.Equal(t, "learner@example.com", tt.userRepo.created.Email)
			assert.Equal(t, models.RoleStudent, tt.userRepo.created.Role)
			assert.Equal(t, models.AnxietyLevelNone, tt.userRepo.created.AnxietyLevel)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(tt.userRepo.created.PasswordHash), []byte(tt.req.Password)))
			assert.Equal(t, []int{1}, tt.setup.called)
			require.Len(t, tt.tokenRepo.created, 1)
			assert.Equal(t, refresh, tt.tokenRepo.created[0].Token)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: 3, Email: "learner@example.com", PasswordHash: string(hash), Role: models.RoleStudent}

	tests := []struct {
		name          string
		req           models.LoginRequest
		userRepo      *mockUserRepository
		expectedError error
		validation    bool
	}{
		{
			name:     "success",
			req:      models.LoginRequest{Email: "Learner@example.com", Password: "Password123!"},
			userRepo: &mockUserRepository{user: user},
		},
		{
			name:          "wrong password",
			req:           models.LoginRequest{Email: "learner@example.com", Password: "Wrong123!"},
			userRepo:      &mockUserRepository{user: user},
			expectedError: models.ErrInvalidCredentials,
		},
		{
			name:          "unknown user",
			req:           models.LoginRequest{Email: "nobody@example.com", Password: "Password123!"},
			userRepo:      &mockUserRepository{},
			expectedError: models.ErrInvalidCredentials,
		},
		{
			name:       "empty email",
			req:        models.LoginRequest{Email: "", Password: "Password123!"},
			userRepo:   &mockUserRepository{user: user},
			validation: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenRepo := &mockUserTokenRepository{}
			svc := NewAuthService(tt.userRepo, tokenRepo, &mockLearnerSetup{}, newTestTokenGenerator(), logger)

			access, refresh, err := svc.Login(context.Background(), &tt.req)

			switch {
			case tt.validation:
				var vErr *models.ValidationError
				assert.ErrorAs(t, err, &vErr)
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, tokenRepo.created)
			default:
				require.NoError(t, err)
				assert.NotEmpty(t, access)
				assert.NotEmpty(t, refresh)
				assert.Len(t, tokenRepo.created, 1)
			}
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	tokenGen := newTestTokenGenerator()
	_, validRefresh, err := tokenGen.GenerateTokens(3, int(models.RoleStudent))
	require.NoError(t, err)
	user := &models.User{ID: 3, Role: models.RoleStudent}

	t.Run("rotates token", func(t *testing.T) {
		tokenRepo := &mockUserTokenRepository{token: &models.UserToken{UserID: 3, Token: validRefresh}}
		svc := NewAuthService(&mockUserRepository{user: user}, tokenRepo, &mockLearnerSetup{}, tokenGen, logger)

		access, refresh, err := svc.Refresh(context.Background(), validRefresh)

		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEqual(t, validRefresh, refresh)
		assert.Equal(t, refresh, tokenRepo.rotatedTo)
	})

	t.Run("malformed token is deleted", func(t *testing.T) {
		tokenRepo := &mockUserTokenRepository{}
		svc := NewAuthService(&mockUserRepository{user: user}, tokenRepo, &mockLearnerSetup{}, tokenGen, logger)

		_, _, err := svc.Refresh(context.Background(), "garbage")

		assert.ErrorIs(t, err, models.ErrInvalidToken)
		assert.Equal(t, []string{"garbage"}, tokenRepo.deleted)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc := NewAuthService(&mockUserRepository{user: user}, &mockUserTokenRepository{}, &mockLearnerSetup{}, tokenGen, logger)

		_, _, err := svc.Refresh(context.Background(), validRefresh)

		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("empty token", func(t *testing.T) {
		svc := NewAuthService(&mockUserRepository{}, &mockUserTokenRepository{}, &mockLearnerSetup{}, tokenGen, logger)

		_, _, err := svc.Refresh(context.Background(), "  ")

		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("concurrent rotation", func(t *testing.T) {
		tokenRepo := &mockUserTokenRepository{
			token:     &models.UserToken{UserID: 3, Token: validRefresh},
			updateErr: models.ErrTokenNotFound,
		}
		svc := NewAuthService(&mockUserRepository{user: user}, tokenRepo, &mockLearnerSetup{}, tokenGen, logger)

		_, _, err := svc.Refresh(context.Background(), validRefresh)

		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	tokenRepo := &mockUserTokenRepository{}
	svc := NewAuthService(&mockUserRepository{}, tokenRepo, &mockLearnerSetup{}, newTestTokenGenerator(), logger)

	require.NoError(t, svc.Logout(context.Background(), "token-1"))
	require.NoError(t, svc.Logout(context.Background(), ""))

	assert.Equal(t, []string{"token-1"}, tokenRepo.deleted)
}
