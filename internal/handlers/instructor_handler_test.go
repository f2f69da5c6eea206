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

// mockInstructorService is a mock implementation of InstructorService
type mockInstructorService struct {
	instructors  []models.Instructor
	instructor   *models.Instructor
	availability *models.Availability
	err          error
	filter       models.InstructorFilter
	date         string
}

func (m *mockInstructorService) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, error) {
	m.filter = filter
	return m.instructors, m.err
}

func (m *mockInstructorService) Get(ctx context.Context, id int) (*models.Instructor, error) {
	return m.instructor, m.err
}

func (m *mockInstructorService) Create(ctx context.Context, req *models.CreateUpdateInstructorRequest) (*models.Instructor, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Instructor{ID: 9, FullName: req.FullName, Transmission: req.Transmission}, nil
}

func (m *mockInstructorService) Update(ctx context.Context, id int, req *models.CreateUpdateInstructorRequest) (*models.Instructor, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Instructor{ID: id, FullName: req.FullName}, nil
}

func (m *mockInstructorService) Availability(ctx context.Context, id int, date string) (*models.Availability, error) {
	m.date = date
	return m.availability, m.err
}

func setupInstructorRouter(svc InstructorService, admin func(http.Handler) http.Handler) *chi.Mux {
	h := NewInstructorHandler(svc, testLogger())
	return newRouter(func(r chi.Router) {
		h.RegisterRoutes(r, admin)
	})
}

func TestInstructorHandler_List(t *testing.T) {
	svc := &mockInstructorService{instructors: []models.Instructor{{ID: 1, FullName: "Sarah Mitchell"}}}

	w := doRequest(t, setupInstructorRouter(svc, passThrough), http.MethodGet, "/instructors?transmission=Manual&specialty=nervous-drivers", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TransmissionManual, svc.filter.Transmission)
	assert.Equal(t, "nervous-drivers", svc.filter.Specialty)
	var list []models.Instructor
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Len(t, list, 1)

	w = doRequest(t, setupInstructorRouter(svc, passThrough), http.MethodGet, "/instructors?transmission=hover", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInstructorHandler_Get(t *testing.T) {
	w := doRequest(t, setupInstructorRouter(&mockInstructorService{err: models.ErrInstructorNotFound}, passThrough), http.MethodGet, "/instructors/5", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, setupInstructorRouter(&mockInstructorService{instructor: &models.Instructor{ID: 5}}, passThrough), http.MethodGet, "/instructors/5", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, setupInstructorRouter(&mockInstructorService{}, passThrough), http.MethodGet, "/instructors/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInstructorHandler_Availability(t *testing.T) {
	svc := &mockInstructorService{availability: &models.Availability{InstructorID: 5, Date: "2030-03-12", FreeSlots: []string{"09:00"}}}

	w := doRequest(t, setupInstructorRouter(svc, passThrough), http.MethodGet, "/instructors/5/availability?date=2030-03-12", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2030-03-12", svc.date)

	w = doRequest(t, setupInstructorRouter(svc, passThrough), http.MethodGet, "/instructors/5/availability", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInstructorHandler_AdminRoutes(t *testing.T) {
	body := models.CreateUpdateInstructorRequest{FullName: "Lee Park", Transmission: models.TransmissionManual}

	w := doRequest(t, setupInstructorRouter(&mockInstructorService{}, passThrough), http.MethodPost, "/instructors", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, setupInstructorRouter(&mockInstructorService{}, passThrough), http.MethodPut, "/instructors/4", body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, setupInstructorRouter(&mockInstructorService{}, passThrough), http.MethodPost, "/instructors",
		models.CreateUpdateInstructorRequest{FullName: "Lee Park", Transmission: "hover"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, setupInstructorRouter(&mockInstructorService{}, deny), http.MethodPost, "/instructors", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, setupInstructorRouter(&mockInstructorService{}, deny), http.MethodGet, "/instructors", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
