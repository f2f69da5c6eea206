package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/drivingschool/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProfileService is a mock implementation of ProfileService
type mockProfileService struct {
	user *models.User
	err  error
	req  *models.UpdateProfileRequest
}

func (m *mockProfileService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	return m.user, m.err
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	m.req = req
	return m.user, m.err
}

// mockAssessmentService is a mock implementation of AssessmentService
type mockAssessmentService struct {
	result *models.AssessmentResult
	err    error
}

func (m *mockAssessmentService) GetQuestions() []models.AssessmentQuestion {
	return []models.AssessmentQuestion{{ID: 1, Text: "I feel nervous."}}
}

func (m *mockAssessmentService) Submit(ctx context.Context, userID int, req *models.SubmitAssessmentRequest) (*models.AssessmentResult, error) {
	return m.result, m.err
}

// mockProgressService is a mock implementation of ProgressService
type mockProgressService struct {
	progress  *models.ProgressResponse
	err       error
	userID    int
	skillID   int
	completed bool
	total     int

	unknownLearner bool
}

func (m *mockProgressService) GetProgress(ctx context.Context, userID int) (*models.ProgressResponse, error) {
	m.userID = userID
	return m.progress, m.err
}

func (m *mockProgressService) GetLearnerProgress(ctx context.Context, userID int) (*models.ProgressResponse, error) {
	m.userID = userID
	if m.unknownLearner {
		return nil, models.ErrUserNotFound
	}
	return m.progress, m.err
}

func (m *mockProgressService) SetSkill(ctx context.Context, userID, skillID int, completed bool) (*models.ProgressResponse, error) {
	m.userID, m.skillID, m.completed = userID, skillID, completed
	return m.progress, m.err
}

func (m *mockProgressService) SetTotalLessons(ctx context.Context, userID, totalLessons int) (*models.ProgressResponse, error) {
	m.userID, m.total = userID, totalLessons
	return m.progress, m.err
}

func TestProfileHandler(t *testing.T) {
	svc := &mockProfileService{user: &models.User{ID: 1, FullName: "Ann", PasswordHash: "secret-hash"}}
	router := newRouter(func(r chi.Router) {
		NewProfileHandler(svc, testLogger()).RegisterRoutes(r, withUser(1, models.RoleStudent))
	})

	w := doRequest(t, router, http.MethodGet, "/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-hash")

	w = doRequest(t, router, http.MethodPatch, "/profile", map[string]string{"phone": "07700 900123"})
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.req.Phone)
	assert.Nil(t, svc.req.FullName)

	w = doRequest(t, router, http.MethodPatch, "/profile", map[string]string{"preferredTransmission": "hover"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileHandler_RequiresUser(t *testing.T) {
	router := newRouter(func(r chi.Router) {
		NewProfileHandler(&mockProfileService{}, testLogger()).RegisterRoutes(r, passThrough)
	})

	w := doRequest(t, router, http.MethodGet, "/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAssessmentHandler(t *testing.T) {
	svc := &mockAssessmentService{result: &models.AssessmentResult{Score: 75, Level: models.AnxietyLevelHigh, Recommended: []models.Instructor{}}}
	router := newRouter(func(r chi.Router) {
		NewAssessmentHandler(svc, testLogger()).RegisterRoutes(r, withUser(1, models.RoleStudent))
	})

	w := doRequest(t, router, http.MethodGet, "/assessment/questions", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodPost, "/assessment", models.SubmitAssessmentRequest{
		Answers: []models.AssessmentAnswer{{QuestionID: 1, Value: 4}},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var result models.AssessmentResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, 75, result.Score)

	w = doRequest(t, router, http.MethodPost, "/assessment", models.SubmitAssessmentRequest{
		Answers: []models.AssessmentAnswer{{QuestionID: 1, Value: 7}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProgressHandler(t *testing.T) {
	svc := &mockProgressService{progress: &models.ProgressResponse{Skills: []models.SkillItem{}}}
	router := newRouter(func(r chi.Router) {
		NewProgressHandler(svc, testLogger()).RegisterRoutes(r, withUser(1, models.RoleStudent), passThrough)
	})

	w := doRequest(t, router, http.MethodGet, "/progress", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.userID)

	w = doRequest(t, router, http.MethodPatch, "/progress/skills/4", models.UpdateSkillRequest{Completed: true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, svc.skillID)
	assert.True(t, svc.completed)

	w = doRequest(t, router, http.MethodGet, "/progress/users/7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, svc.userID)

	svc.unknownLearner = true
	w = doRequest(t, router, http.MethodGet, "/progress/users/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 999, svc.userID)
	svc.unknownLearner = false

	w = doRequest(t, router, http.MethodPut, "/progress/users/7/total", models.SetTotalLessonsRequest{TotalLessons: 30})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, svc.userID)
	assert.Equal(t, 30, svc.total)

	w = doRequest(t, router, http.MethodPut, "/progress/users/7/total", models.SetTotalLessonsRequest{TotalLessons: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = models.ErrSkillNotFound
	w = doRequest(t, router, http.MethodPatch, "/progress/skills/99", models.UpdateSkillRequest{Completed: true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
