package services

import (
	"context"
	"strings"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

type profileService struct {
	userRepo UserRepository
	logger   *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(userRepo UserRepository, logger *zap.Logger) *profileService {
	return &profileService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetProfile returns the profile of a user
func (s *profileService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile applies the non-nil fields of req and returns the updated profile
func (s *profileService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, models.NewValidationError("full name cannot be empty")
		}
		user.FullName = name
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.TelegramChatID != nil {
		user.TelegramChatID = strings.TrimSpace(*req.TelegramChatID)
	}
	if req.PreferredTransmission != nil {
		switch *req.PreferredTransmission {
		case models.TransmissionManual, models.TransmissionAutomatic, "":
			user.PreferredTransmission = *req.PreferredTransmission
		default:
			return nil, models.NewValidationError("preferred transmission must be manual or automatic")
		}
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Debug("profile updated", zap.Int("user_id", userID))
	return user, nil
}
