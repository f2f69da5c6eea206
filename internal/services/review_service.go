package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

// ReviewRepository is the interface that wraps methods for Reviews table data access
type ReviewRepository interface {
	// Method ListByInstructor returns a page of the instructor's reviews, newest first.
	ListByInstructor(ctx context.Context, instructorID, limit, offset int) ([]models.Review, error)
	// Method ListRecent returns the newest "limit" reviews across all instructors.
	ListRecent(ctx context.Context, limit int) ([]models.Review, error)
	// Method Create inserts a review; its ID is filled on success.
	Create(ctx context.Context, review *models.Review) error
	// Method HasCompletedBooking reports whether the learner finished a lesson with the instructor.
	HasCompletedBooking(ctx context.Context, userID, instructorID int) (bool, error)
}

const (
	defaultReviewPageSize = 10
	maxReviewPageSize     = 50
	defaultRecentReviews  = 6
	maxRecentReviews      = 20
	maxReviewComment      = 1000
)

type reviewService struct {
	reviewRepo     ReviewRepository
	instructorRepo InstructorRepository
	userRepo       UserRepository
	cache          InstructorCache
	logger         *zap.Logger
}

// NewReviewService creates a new review service. cache may be nil.
func NewReviewService(reviewRepo ReviewRepository, instructorRepo InstructorRepository, userRepo UserRepository, cache InstructorCache, logger *zap.Logger) *reviewService {
	return &reviewService{
		reviewRepo:     reviewRepo,
		instructorRepo: instructorRepo,
		userRepo:       userRepo,
		cache:          cache,
		logger:         logger,
	}
}

// ListByInstructor returns a page of an instructor's reviews.
// page starts at 1; non-positive page or count fall back to defaults.
func (s *reviewService) ListByInstructor(ctx context.Context, instructorID, page, count int) ([]models.Review, error) {
	if _, err := s.instructorRepo.GetByID(ctx, instructorID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if count < 1 {
		count = defaultReviewPageSize
	}
	count = min(count, maxReviewPageSize)

	return s.reviewRepo.ListByInstructor(ctx, instructorID, count, (page-1)*count)
}

// ListRecent returns the newest reviews for the testimonials section
func (s *reviewService) ListRecent(ctx context.Context, limit int) ([]models.Review, error) {
	if limit < 1 {
		limit = defaultRecentReviews
	}
	return s.reviewRepo.ListRecent(ctx, min(limit, maxRecentReviews))
}

// Create stores a review of an instructor the user has completed a lesson with
func (s *reviewService) Create(ctx context.Context, userID int, req *models.CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, models.NewValidationError("rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(req.Comment)
	if utf8.RuneCountInString(comment) > maxReviewComment {
		return nil, models.NewValidationError("comment must be at most 1000 characters")
	}

	if _, err := s.instructorRepo.GetByID(ctx, req.InstructorID); err != nil {
		return nil, err
	}

	allowed, err := s.reviewRepo.HasCompletedBooking(ctx, userID, req.InstructorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.ErrReviewNotAllowed
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		InstructorID: req.InstructorID,
		UserID:       userID,
		AuthorName:   user.FullName,
		Rating:       req.Rating,
		Comment:      comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	// cached lists carry average ratings
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("instructor cache invalidation failed", zap.Error(err))
		}
	}

	return review, nil
}
