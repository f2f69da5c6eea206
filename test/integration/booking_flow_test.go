package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/drivingschool/backend/internal/auth"
	"github.com/drivingschool/backend/internal/config"
	"github.com/drivingschool/backend/internal/database"
	"github.com/drivingschool/backend/internal/handlers"
	"github.com/drivingschool/backend/internal/models"
	"github.com/drivingschool/backend/internal/repositories"
	"github.com/drivingschool/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testEmail = "integration.learner@example.com"

var (
	testDB     *sql.DB
	testRouter chi.Router
	testQueue  *recordingQueue
)

// noCache disables instructor caching so every request hits MySQL
type noCache struct{}

func (noCache) Get(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, bool, error) {
	return nil, false, nil
}

func (noCache) Set(ctx context.Context, filter models.InstructorFilter, instructors []models.Instructor) error {
	return nil
}

func (noCache) Invalidate(ctx context.Context) error {
	return nil
}

// recordingQueue stands in for asynq and keeps what would have been queued
type recordingQueue struct {
	mu            sync.Mutex
	notifications []models.Notification
	emails        []models.EmailMessage
}

func (q *recordingQueue) EnqueueNotification(ctx context.Context, n models.Notification) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notifications = append(q.notifications, n)
	return nil
}

func (q *recordingQueue) EnqueueEmail(ctx context.Context, msg models.EmailMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.emails = append(q.emails, msg)
	return nil
}

func (q *recordingQueue) notificationTypes() []models.NotificationType {
	q.mu.Lock()
	defer q.mu.Unlock()
	types := make([]models.NotificationType, 0, len(q.notifications))
	for _, n := range q.notifications {
		types = append(types, n.Type)
	}
	return types
}

// setupTestRouter wires the API the same way cmd/api does, minus Redis and Stripe
func setupTestRouter(db *sql.DB, secret string, logger *zap.Logger) chi.Router {
	tokenGenerator := auth.NewTokenGenerator(secret, time.Hour, 24*time.Hour)
	testQueue = &recordingQueue{}

	userRepo := repositories.NewUserRepository(db, logger)
	userTokenRepo := repositories.NewUserTokenRepository(db, logger)
	instructorRepo := repositories.NewInstructorRepository(db, logger)
	bookingRepo := repositories.NewBookingRepository(db, logger)
	progressRepo := repositories.NewProgressRepository(db, logger)
	skillRepo := repositories.NewSkillRepository(db, logger)

	progressService := services.NewProgressService(progressRepo, skillRepo, userRepo, logger)
	authService := services.NewAuthService(userRepo, userTokenRepo, progressService, tokenGenerator, logger)
	instructorService := services.NewInstructorService(instructorRepo, bookingRepo, noCache{}, time.UTC, logger)
	assessmentService := services.NewAssessmentService(userRepo, instructorService, logger)
	bookingService := services.NewBookingService(bookingRepo, instructorRepo, userRepo, progressRepo, testQueue, time.UTC, logger)

	authMiddleware := auth.AuthMiddleware(tokenGenerator)
	staffMiddleware := auth.RoleMiddleware(tokenGenerator, int(models.RoleInstructor))
	adminMiddleware := auth.RoleMiddleware(tokenGenerator, int(models.RoleAdmin))

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		handlers.NewAuthHandler(authService, time.Hour, 24*time.Hour, false, logger).RegisterRoutes(r)
		handlers.NewAssessmentHandler(assessmentService, logger).RegisterRoutes(r, authMiddleware)
		handlers.NewInstructorHandler(instructorService, logger).RegisterRoutes(r, adminMiddleware)
		handlers.NewBookingHandler(bookingService, logger).RegisterRoutes(r, authMiddleware, staffMiddleware)
		handlers.NewProgressHandler(progressService, logger).RegisterRoutes(r, authMiddleware, staffMiddleware)
	})
	return r
}

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	if !cfg.HasDatabase() {
		fmt.Println("TEST_DB_* is not set, integration tests are skipped")
		os.Exit(m.Run())
	}

	testDB, err = database.Connect(cfg.DSN())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}
	if err := database.RunMigrations(testDB); err != nil {
		panic(fmt.Sprintf("Failed to run migrations: %v", err))
	}

	testRouter = setupTestRouter(testDB, cfg.JWT.Secret, zap.NewNop())

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

func requireDatabase(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	if testDB == nil {
		t.Skip("Test database is not configured")
	}
}

func cleanupLearner(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec("DELETE FROM bookings WHERE user_id IN (SELECT id FROM users WHERE email = ?)", testEmail)
	require.NoError(t, err)
	_, err = testDB.Exec("DELETE FROM users WHERE email = ?", testEmail)
	require.NoError(t, err)
}

func call(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func TestIntegration_BookingFlow(t *testing.T) {
	requireDatabase(t)
	cleanupLearner(t)
	defer cleanupLearner(t)

	// Sign up
	w := call(t, http.MethodPost, "/api/v1/auth/register", "", models.RegisterRequest{
		Email:    testEmail,
		FullName: "Integration Learner",
		Password: "Str0ng!pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tokens handlers.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&tokens))
	require.NotEmpty(t, tokens.AccessToken)

	// Duplicate sign up
	w = call(t, http.MethodPost, "/api/v1/auth/register", "", models.RegisterRequest{
		Email:    testEmail,
		FullName: "Integration Learner",
		Password: "Str0ng!pass",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Anxiety assessment with every answer at "strongly agree"
	w = call(t, http.MethodGet, "/api/v1/assessment/questions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var questions []models.AssessmentQuestion
	require.NoError(t, json.NewDecoder(w.Body).Decode(&questions))
	answers := make([]models.AssessmentAnswer, 0, len(questions))
	for _, q := range questions {
		answers = append(answers, models.AssessmentAnswer{QuestionID: q.ID, Value: 5})
	}
	w = call(t, http.MethodPost, "/api/v1/assessment", tokens.AccessToken, models.SubmitAssessmentRequest{Answers: answers})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result models.AssessmentResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, models.AnxietyLevelHigh, result.Level)
	require.NotEmpty(t, result.Recommended)
	assert.Contains(t, result.Recommended[0].Specialties, "nervous-drivers")

	// Pick the first recommended instructor and book the 10:00 slot a week ahead
	instructorID := result.Recommended[0].ID
	lessonDate := time.Now().UTC().AddDate(0, 0, 7).Format(models.DateLayout)
	booking := models.CreateBookingRequest{
		InstructorID: instructorID,
		LessonDate:   lessonDate,
		LessonTime:   "10:00",
		LessonType:   models.LessonTypeAnxietySupport,
	}
	w = call(t, http.MethodPost, "/api/v1/bookings", tokens.AccessToken, booking)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Booking
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Len(t, created.Reference, 8)
	assert.Equal(t, models.BookingStatusPending, created.Status)

	// Same slot again
	w = call(t, http.MethodPost, "/api/v1/bookings", tokens.AccessToken, booking)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The slot is gone from availability
	w = call(t, http.MethodGet, fmt.Sprintf("/api/v1/instructors/%d/availability?date=%s", instructorID, lessonDate), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var availability models.Availability
	require.NoError(t, json.NewDecoder(w.Body).Decode(&availability))
	assert.NotContains(t, availability.FreeSlots, "10:00")
	assert.Contains(t, availability.FreeSlots, "11:00")

	// Listed under my bookings
	w = call(t, http.MethodGet, "/api/v1/bookings", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []models.Booking
	require.NoError(t, json.NewDecoder(w.Body).Decode(&mine))
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)

	// Cancel frees the slot for rebooking
	w = call(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/cancel", created.ID), tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = call(t, http.MethodPost, "/api/v1/bookings", tokens.AccessToken, booking)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, []models.NotificationType{
		models.NotificationBookingCreated,
		models.NotificationBookingCancelled,
		models.NotificationBookingCreated,
	}, testQueue.notificationTypes())

	// Fresh learners start with an empty counter and the default checklist
	w = call(t, http.MethodGet, "/api/v1/progress", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var progress models.ProgressResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&progress))
	assert.Equal(t, 0, progress.Lessons.LessonsCompleted)
	assert.Equal(t, 20, progress.Lessons.TotalLessons)
	assert.NotEmpty(t, progress.Skills)
	assert.Equal(t, 0, progress.SkillsPercent)
}

func TestIntegration_StaffRoutesRequireRole(t *testing.T) {
	requireDatabase(t)
	cleanupLearner(t)
	defer cleanupLearner(t)

	w := call(t, http.MethodPost, "/api/v1/auth/register", "", models.RegisterRequest{
		Email:    testEmail,
		FullName: "Integration Learner",
		Password: "Str0ng!pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tokens handlers.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&tokens))

	w = call(t, http.MethodGet, "/api/v1/bookings/schedule?date=2030-01-01", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(t, http.MethodGet, "/api/v1/bookings/schedule?date=2030-01-01", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
