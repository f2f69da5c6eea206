package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/drivingschool/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupInstructorService(repo *mockInstructorRepository, slots *mockSlotRepository, cache InstructorCache) *instructorService {
	logger, _ := zap.NewDevelopment()
	svc := NewInstructorService(repo, slots, cache, time.UTC, logger)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestLessonSlots(t *testing.T) {
	slots := LessonSlots()
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}, slots)
	assert.True(t, isLessonSlot("09:00"))
	assert.False(t, isLessonSlot("08:00"))
	assert.False(t, isLessonSlot("9:00"))
}

func TestInstructorService_List(t *testing.T) {
	stored := []models.Instructor{
		{ID: 7, FullName: "Lee", Transmission: models.TransmissionManual, Specialties: []string{"highway"}},
		{ID: 8, FullName: "Kim", Transmission: models.TransmissionAutomatic},
	}

	t.Run("reads store and caches", func(t *testing.T) {
		repo := &mockInstructorRepository{instructors: stored}
		cache := newMockInstructorCache()
		svc := setupInstructorService(repo, &mockSlotRepository{}, cache)
		filter := models.InstructorFilter{Transmission: models.TransmissionManual}

		list, err := svc.List(context.Background(), filter)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		list, err = svc.List(context.Background(), filter)
		require.NoError(t, err)
		assert.Len(t, list, 1)
		assert.Equal(t, 1, repo.listCalls)
	})

	t.Run("cache error falls through to store", func(t *testing.T) {
		repo := &mockInstructorRepository{instructors: stored}
		cache := newMockInstructorCache()
		cache.getErr = errors.New("redis down")
		svc := setupInstructorService(repo, &mockSlotRepository{}, cache)

		list, err := svc.List(context.Background(), models.InstructorFilter{})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("store failure serves defaults", func(t *testing.T) {
		repo := &mockInstructorRepository{listErr: errors.New("db down")}
		svc := setupInstructorService(repo, &mockSlotRepository{}, nil)

		list, err := svc.List(context.Background(), models.InstructorFilter{Specialty: " nervous-drivers "})
		require.NoError(t, err)
		require.Len(t, list, 2)
		for _, i := range list {
			assert.True(t, i.HasSpecialty(models.SpecialtyNervousDrivers))
		}
	})

	t.Run("empty result is not nil", func(t *testing.T) {
		repo := &mockInstructorRepository{}
		svc := setupInstructorService(repo, &mockSlotRepository{}, nil)

		list, err := svc.List(context.Background(), models.InstructorFilter{Specialty: "none"})
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})
}

func TestInstructorService_CreateUpdate(t *testing.T) {
	req := models.CreateUpdateInstructorRequest{
		FullName:        " Lee Park ",
		Transmission:    models.TransmissionManual,
		Specialties:     []string{" Highway ", ""},
		YearsExperience: 5,
		HourlyRateCents: 4000,
	}

	t.Run("create defaults to active", func(t *testing.T) {
		repo := &mockInstructorRepository{}
		cache := newMockInstructorCache()
		svc := setupInstructorService(repo, &mockSlotRepository{}, cache)

		instructor, err := svc.Create(context.Background(), &req)
		require.NoError(t, err)
		assert.Equal(t, 10, instructor.ID)
		assert.Equal(t, "Lee Park", instructor.FullName)
		assert.Equal(t, []string{"highway"}, instructor.Specialties)
		assert.True(t, instructor.Active)
		assert.Equal(t, 1, cache.invalidated)
	})

	t.Run("create validates transmission", func(t *testing.T) {
		bad := req
		bad.Transmission = "hover"
		svc := setupInstructorService(&mockInstructorRepository{}, &mockSlotRepository{}, nil)

		_, err := svc.Create(context.Background(), &bad)
		var vErr *models.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("update keeps active flag and rating", func(t *testing.T) {
		repo := &mockInstructorRepository{instructor: &models.Instructor{ID: 3, Active: false, AverageRating: 4.5, ReviewCount: 2}}
		cache := newMockInstructorCache()
		svc := setupInstructorService(repo, &mockSlotRepository{}, cache)

		instructor, err := svc.Update(context.Background(), 3, &req)
		require.NoError(t, err)
		assert.Equal(t, 3, instructor.ID)
		assert.False(t, instructor.Active)
		assert.Equal(t, 4.5, instructor.AverageRating)
		assert.Equal(t, 1, cache.invalidated)
	})

	t.Run("update can deactivate", func(t *testing.T) {
		repo := &mockInstructorRepository{instructor: &models.Instructor{ID: 3, Active: true}}
		svc := setupInstructorService(repo, &mockSlotRepository{}, nil)
		deactivate := req
		deactivate.Active = ptr(false)

		instructor, err := svc.Update(context.Background(), 3, &deactivate)
		require.NoError(t, err)
		assert.False(t, instructor.Active)
	})

	t.Run("update unknown instructor", func(t *testing.T) {
		svc := setupInstructorService(&mockInstructorRepository{}, &mockSlotRepository{}, nil)
		_, err := svc.Update(context.Background(), 3, &req)
		assert.ErrorIs(t, err, models.ErrInstructorNotFound)
	})
}

func TestInstructorService_Availability(t *testing.T) {
	active := &models.Instructor{ID: 2, Active: true}

	tests := []struct {
		name          string
		date          string
		instructor    *models.Instructor
		booked        []string
		expectedSlots []string
		expectedError bool
	}{
		{
			name:          "future day minus booked",
			date:          "2030-03-12",
			instructor:    active,
			booked:        []string{"09:00", "13:00"},
			expectedSlots: []string{"10:00", "11:00", "12:00", "14:00", "15:00", "16:00"},
		},
		{
			name:          "today skips started slots",
			date:          "2030-03-10",
			instructor:    active,
			booked:        []string{"12:00"},
			expectedSlots: []string{"11:00", "13:00", "14:00", "15:00", "16:00"},
		},
		{
			name:          "past day",
			date:          "2030-03-01",
			instructor:    active,
			expectedSlots: []string{},
		},
		{
			name:          "inactive instructor",
			date:          "2030-03-12",
			instructor:    &models.Instructor{ID: 2},
			expectedSlots: []string{},
		},
		{
			name:          "bad date",
			date:          "12-03-2030",
			instructor:    active,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setupInstructorService(&mockInstructorRepository{instructor: tt.instructor}, &mockSlotRepository{slots: tt.booked}, nil)

			availability, err := svc.Availability(context.Background(), 2, tt.date)

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.date, availability.Date)
			assert.Equal(t, tt.expectedSlots, availability.FreeSlots)
		})
	}
}
