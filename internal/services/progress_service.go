package services

import (
	"context"
	"errors"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

// ProgressRepository is the interface that wraps methods for LessonProgress table data access
type ProgressRepository interface {
	// Method Create inserts an empty counter with "totalLessons"; an existing counter is kept.
	Create(ctx context.Context, userID, totalLessons int) error
	// Method GetByUserID returns the counter of the learner with Percent filled.
	//
	// If the learner has no counter yet, models.ErrProgressNotFound will be returned together with "nil" value.
	GetByUserID(ctx context.Context, userID int) (*models.LessonProgress, error)
	// Method IncrementCompleted adds one completed lesson, creating the counter when missing.
	IncrementCompleted(ctx context.Context, userID int) error
	// Method SetTotalLessons changes the lesson target, creating the counter when missing.
	SetTotalLessons(ctx context.Context, userID, totalLessons int) error
}

// SkillRepository is the interface that wraps methods for SkillItems table data access
type SkillRepository interface {
	// Method SeedDefaults inserts "skills" for the learner, skipping skills already present.
	SeedDefaults(ctx context.Context, userID int, skills []models.DefaultSkill) error
	// Method ListByUser returns the checklist of the learner.
	ListByUser(ctx context.Context, userID int) ([]models.SkillItem, error)
	// Method SetCompleted marks a checklist entry owned by the learner.
	//
	// If the entry does not exist or belongs to another learner, models.ErrSkillNotFound will be returned.
	SetCompleted(ctx context.Context, userID, skillID int, completed bool) error
}

type progressService struct {
	progressRepo ProgressRepository
	skillRepo    SkillRepository
	userRepo     UserRepository
	logger       *zap.Logger
}

// NewProgressService creates a new progress service
func NewProgressService(progressRepo ProgressRepository, skillRepo SkillRepository, userRepo UserRepository, logger *zap.Logger) *progressService {
	return &progressService{
		progressRepo: progressRepo,
		skillRepo:    skillRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// InitLearner creates the lesson counter and the default checklist of a learner
func (s *progressService) InitLearner(ctx context.Context, userID int) error {
	if err := s.progressRepo.Create(ctx, userID, models.DefaultTotalLessons); err != nil {
		return err
	}
	return s.skillRepo.SeedDefaults(ctx, userID, models.DefaultSkills)
}

// GetProgress returns the lesson counter and skill checklist, creating them on first use
func (s *progressService) GetProgress(ctx context.Context, userID int) (*models.ProgressResponse, error) {
	lessons, err := s.progressRepo.GetByUserID(ctx, userID)
	if errors.Is(err, models.ErrProgressNotFound) {
		if err := s.progressRepo.Create(ctx, userID, models.DefaultTotalLessons); err != nil {
			return nil, err
		}
		lessons = &models.LessonProgress{UserID: userID, TotalLessons: models.DefaultTotalLessons}
	} else if err != nil {
		return nil, err
	}
	lessons.ComputePercent()

	skills, err := s.skillRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(skills) == 0 {
		if err := s.skillRepo.SeedDefaults(ctx, userID, models.DefaultSkills); err != nil {
			return nil, err
		}
		if skills, err = s.skillRepo.ListByUser(ctx, userID); err != nil {
			return nil, err
		}
	}

	return &models.ProgressResponse{
		Lessons:       *lessons,
		Skills:        skills,
		SkillsPercent: skillsPercent(skills),
	}, nil
}

// GetLearnerProgress returns the progress of an existing learner for staff
func (s *progressService) GetLearnerProgress(ctx context.Context, userID int) (*models.ProgressResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.GetProgress(ctx, userID)
}

// SetSkill marks a checklist entry and returns the refreshed progress
func (s *progressService) SetSkill(ctx context.Context, userID, skillID int, completed bool) (*models.ProgressResponse, error) {
	if err := s.skillRepo.SetCompleted(ctx, userID, skillID, completed); err != nil {
		return nil, err
	}
	return s.GetProgress(ctx, userID)
}

// SetTotalLessons changes a learner's lesson target
func (s *progressService) SetTotalLessons(ctx context.Context, userID, totalLessons int) (*models.ProgressResponse, error) {
	if totalLessons < 1 {
		return nil, models.NewValidationError("total lessons must be at least 1")
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.progressRepo.SetTotalLessons(ctx, userID, totalLessons); err != nil {
		return nil, err
	}
	return s.GetProgress(ctx, userID)
}

func skillsPercent(skills []models.SkillItem) int {
	if len(skills) == 0 {
		return 0
	}
	done := 0
	for _, s := range skills {
		if s.Completed {
			done++
		}
	}
	return done * 100 / len(skills)
}
