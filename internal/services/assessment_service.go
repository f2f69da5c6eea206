package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

// InstructorCatalog lists instructors for recommendations
type InstructorCatalog interface {
	// Method List returns active instructors matching the filter. It never fails on store errors.
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, error)
}

// maxRecommendations is how many instructors an assessment suggests
const maxRecommendations = 3

// assessmentQuestions is the fixed questionnaire. Answers are 1 (strongly disagree) to 5 (strongly agree).
var assessmentQuestions = []models.AssessmentQuestion{
	{ID: 1, Text: "I feel nervous before getting behind the wheel."},
	{ID: 2, Text: "Busy traffic makes me tense or panicky."},
	{ID: 3, Text: "I worry about making mistakes in front of an instructor."},
	{ID: 4, Text: "Driving on fast roads or highways frightens me."},
	{ID: 5, Text: "I avoid driving situations whenever I can."},
	{ID: 6, Text: "I experience physical symptoms (sweaty palms, racing heart) when driving."},
	{ID: 7, Text: "Other drivers honking or tailgating upsets me for a long time."},
	{ID: 8, Text: "I doubt I will ever feel confident as a driver."},
}

type assessmentService struct {
	userRepo UserRepository
	catalog  InstructorCatalog
	logger   *zap.Logger
}

// NewAssessmentService creates a new anxiety assessment service
func NewAssessmentService(userRepo UserRepository, catalog InstructorCatalog, logger *zap.Logger) *assessmentService {
	return &assessmentService{
		userRepo: userRepo,
		catalog:  catalog,
		logger:   logger,
	}
}

// GetQuestions returns the questionnaire
func (s *assessmentService) GetQuestions() []models.AssessmentQuestion {
	questions := make([]models.AssessmentQuestion, len(assessmentQuestions))
	copy(questions, assessmentQuestions)
	return questions
}

// Submit scores the answers, stores the result on the profile and recommends instructors
func (s *assessmentService) Submit(ctx context.Context, userID int, req *models.SubmitAssessmentRequest) (*models.AssessmentResult, error) {
	score, err := ScoreAssessment(req.Answers)
	if err != nil {
		return nil, err
	}
	level := AnxietyLevelForScore(score)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateAnxiety(ctx, userID, score, level); err != nil {
		return nil, err
	}

	recommended, err := s.recommend(ctx, user.PreferredTransmission, level)
	if err != nil {
		s.logger.Warn("failed to build recommendations", zap.Int("user_id", userID), zap.Error(err))
		recommended = []models.Instructor{}
	}

	return &models.AssessmentResult{
		Score:       score,
		Level:       level,
		Recommended: recommended,
	}, nil
}

func (s *assessmentService) recommend(ctx context.Context, transmission models.Transmission, level models.AnxietyLevel) ([]models.Instructor, error) {
	instructors, err := s.catalog.List(ctx, models.InstructorFilter{Transmission: transmission})
	if err != nil {
		return nil, err
	}
	if len(instructors) == 0 && transmission != "" {
		if instructors, err = s.catalog.List(ctx, models.InstructorFilter{}); err != nil {
			return nil, err
		}
	}

	return RankInstructors(instructors, level, maxRecommendations), nil
}

// ScoreAssessment validates one answer per question and returns a 0..100 score
func ScoreAssessment(answers []models.AssessmentAnswer) (int, error) {
	n := len(assessmentQuestions)
	if len(answers) != n {
		return 0, models.NewValidationError(fmt.Sprintf("exactly %d answers are required", n))
	}

	known := make(map[int]bool, n)
	for _, q := range assessmentQuestions {
		known[q.ID] = true
	}

	seen := make(map[int]bool, n)
	sum := 0
	for _, a := range answers {
		if !known[a.QuestionID] {
			return 0, models.NewValidationError(fmt.Sprintf("unknown question %d", a.QuestionID))
		}
		if seen[a.QuestionID] {
			return 0, models.NewValidationError(fmt.Sprintf("question %d answered twice", a.QuestionID))
		}
		if a.Value < 1 || a.Value > 5 {
			return 0, models.NewValidationError("answers must be between 1 and 5")
		}
		seen[a.QuestionID] = true
		sum += a.Value
	}

	return int(math.Round(float64(sum-n) / float64(4*n) * 100)), nil
}

// AnxietyLevelForScore buckets a 0..100 score
func AnxietyLevelForScore(score int) models.AnxietyLevel {
	switch {
	case score < 25:
		return models.AnxietyLevelLow
	case score < 60:
		return models.AnxietyLevelModerate
	default:
		return models.AnxietyLevelHigh
	}
}

// RankInstructors orders instructors by rating and, for moderate or high anxiety,
// puts nervous-driver specialists first. At most limit instructors are returned.
func RankInstructors(instructors []models.Instructor, level models.AnxietyLevel, limit int) []models.Instructor {
	ranked := make([]models.Instructor, len(instructors))
	copy(ranked, instructors)

	preferSpecialists := level == models.AnxietyLevelModerate || level == models.AnxietyLevelHigh
	sort.SliceStable(ranked, func(i, j int) bool {
		if preferSpecialists {
			a := ranked[i].HasSpecialty(models.SpecialtyNervousDrivers)
			b := ranked[j].HasSpecialty(models.SpecialtyNervousDrivers)
			if a != b {
				return a
			}
		}
		return ranked[i].AverageRating > ranked[j].AverageRating
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
