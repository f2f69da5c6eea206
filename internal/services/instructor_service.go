package services

import (
	"context"
	"strings"
	"time"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

// InstructorRepository is the interface that wraps methods for Instructors table data access
type InstructorRepository interface {
	// Method List returns active instructors matching "filter" with their average rating and review count.
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, error)
	// Method GetByID returns an instructor regardless of its active flag.
	//
	// If instructor with such ID does not exist, models.ErrInstructorNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Instructor, error)
	// Method Create inserts a new instructor; its ID is filled on success.
	Create(ctx context.Context, instructor *models.Instructor) error
	// Method Update overwrites all editable fields of the instructor.
	//
	// If instructor with such ID does not exist, models.ErrInstructorNotFound will be returned.
	Update(ctx context.Context, instructor *models.Instructor) error
}

// SlotRepository is the interface that wraps slot lookups of the Bookings table
type SlotRepository interface {
	// Method BookedSlots returns the HH:MM start times held by non-cancelled bookings of the instructor on "date".
	BookedSlots(ctx context.Context, instructorID int, date string) ([]string, error)
}

// InstructorCache is the interface that wraps the instructor list cache
type InstructorCache interface {
	// Method Get returns the cached list for "filter"; "ok" is false on a miss.
	Get(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, bool, error)
	// Method Set caches the list for "filter".
	Set(ctx context.Context, filter models.InstructorFilter, instructors []models.Instructor) error
	// Method Invalidate drops every cached list.
	Invalidate(ctx context.Context) error
}

// Lessons start on the hour from firstLessonHour to lastLessonHour inclusive
const (
	firstLessonHour = 9
	lastLessonHour  = 16
)

// LessonSlots returns every bookable HH:MM start time of a day
func LessonSlots() []string {
	slots := make([]string, 0, lastLessonHour-firstLessonHour+1)
	for h := firstLessonHour; h <= lastLessonHour; h++ {
		slots = append(slots, time.Date(0, 1, 1, h, 0, 0, 0, time.UTC).Format(models.TimeLayout))
	}
	return slots
}

func isLessonSlot(slot string) bool {
	for _, s := range LessonSlots() {
		if s == slot {
			return true
		}
	}
	return false
}

// defaultInstructors is served when the catalogue cannot be read
var defaultInstructors = []models.Instructor{
	{
		ID:              1,
		FullName:        "Sarah Mitchell",
		Bio:             "Patient, calm teaching style. Specialises in helping nervous learners build confidence step by step.",
		Transmission:    models.TransmissionManual,
		Specialties:     []string{models.SpecialtyNervousDrivers, "test-prep"},
		YearsExperience: 12,
		HourlyRateCents: 4500,
		Active:          true,
	},
	{
		ID:              2,
		FullName:        "James Carter",
		Bio:             "Former advanced driving examiner focused on test preparation and motorway skills.",
		Transmission:    models.TransmissionManual,
		Specialties:     []string{"test-prep", "highway"},
		YearsExperience: 15,
		HourlyRateCents: 5000,
		Active:          true,
	},
	{
		ID:              3,
		FullName:        "Priya Shah",
		Bio:             "Automatic specialist with a relaxed approach, popular with returning drivers.",
		Transmission:    models.TransmissionAutomatic,
		Specialties:     []string{models.SpecialtyNervousDrivers, "refresher"},
		YearsExperience: 8,
		HourlyRateCents: 4800,
		Active:          true,
	},
	{
		ID:              4,
		FullName:        "Tom Nguyen",
		Bio:             "Parking and city driving coach. Short focused sessions for specific skills.",
		Transmission:    models.TransmissionAutomatic,
		Specialties:     []string{"parking", "city"},
		YearsExperience: 6,
		HourlyRateCents: 4200,
		Active:          true,
	},
}

type instructorService struct {
	repo     InstructorRepository
	slots    SlotRepository
	cache    InstructorCache
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewInstructorService creates a new instructor service. cache may be nil.
func NewInstructorService(repo InstructorRepository, slots SlotRepository, cache InstructorCache, location *time.Location, logger *zap.Logger) *instructorService {
	return &instructorService{
		repo:     repo,
		slots:    slots,
		cache:    cache,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

// List returns the catalogue filtered by transmission and specialty.
// Store failures are logged and answered with the built-in default list.
func (s *instructorService) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, error) {
	filter.Specialty = strings.TrimSpace(filter.Specialty)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, filter)
		if err != nil {
			s.logger.Warn("instructor cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	instructors, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to load instructors, serving defaults", zap.Error(err))
		return filterInstructors(defaultInstructors, filter), nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, filter, instructors); err != nil {
			s.logger.Warn("instructor cache write failed", zap.Error(err))
		}
	}

	return instructors, nil
}

// Get returns a single instructor
func (s *instructorService) Get(ctx context.Context, id int) (*models.Instructor, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds an instructor to the catalogue
func (s *instructorService) Create(ctx context.Context, req *models.CreateUpdateInstructorRequest) (*models.Instructor, error) {
	instructor, err := instructorFromRequest(req)
	if err != nil {
		return nil, err
	}
	if req.Active == nil {
		instructor.Active = true
	}

	if err := s.repo.Create(ctx, instructor); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return instructor, nil
}

// Update replaces the editable fields of an instructor.
// A nil Active keeps the current flag.
func (s *instructorService) Update(ctx context.Context, id int, req *models.CreateUpdateInstructorRequest) (*models.Instructor, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	instructor, err := instructorFromRequest(req)
	if err != nil {
		return nil, err
	}
	instructor.ID = id
	if req.Active == nil {
		instructor.Active = current.Active
	}

	if err := s.repo.Update(ctx, instructor); err != nil {
		return nil, err
	}

	instructor.AverageRating = current.AverageRating
	instructor.ReviewCount = current.ReviewCount
	s.invalidate(ctx)
	return instructor, nil
}

// Availability returns the free lesson slots of an instructor on a date.
// Past slots and days of inactive instructors have no free slots.
func (s *instructorService) Availability(ctx context.Context, id int, date string) (*models.Availability, error) {
	day, err := time.ParseInLocation(models.DateLayout, date, s.location)
	if err != nil {
		return nil, models.NewValidationError("date must be in YYYY-MM-DD format")
	}

	instructor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	availability := &models.Availability{
		InstructorID: id,
		Date:         day.Format(models.DateLayout),
		FreeSlots:    []string{},
	}
	if !instructor.Active {
		return availability, nil
	}

	booked, err := s.slots.BookedSlots(ctx, id, availability.Date)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(booked))
	for _, slot := range booked {
		taken[slot] = true
	}

	now := s.now().In(s.location)
	for _, slot := range LessonSlots() {
		start, _ := time.ParseInLocation(models.DateLayout+" "+models.TimeLayout, availability.Date+" "+slot, s.location)
		if taken[slot] || !start.After(now) {
			continue
		}
		availability.FreeSlots = append(availability.FreeSlots, slot)
	}

	return availability, nil
}

func (s *instructorService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("instructor cache invalidation failed", zap.Error(err))
	}
}

func instructorFromRequest(req *models.CreateUpdateInstructorRequest) (*models.Instructor, error) {
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return nil, models.NewValidationError("full name cannot be empty")
	}
	if req.Transmission != models.TransmissionManual && req.Transmission != models.TransmissionAutomatic {
		return nil, models.NewValidationError("transmission must be manual or automatic")
	}
	if req.YearsExperience < 0 || req.HourlyRateCents < 0 {
		return nil, models.NewValidationError("experience and rate cannot be negative")
	}

	specialties := []string{}
	for _, sp := range req.Specialties {
		if sp = strings.ToLower(strings.TrimSpace(sp)); sp != "" {
			specialties = append(specialties, sp)
		}
	}

	instructor := &models.Instructor{
		FullName:        name,
		Bio:             strings.TrimSpace(req.Bio),
		PhotoURL:        strings.TrimSpace(req.PhotoURL),
		Transmission:    req.Transmission,
		Specialties:     specialties,
		YearsExperience: req.YearsExperience,
		HourlyRateCents: req.HourlyRateCents,
	}
	if req.Active != nil {
		instructor.Active = *req.Active
	}
	return instructor, nil
}

func filterInstructors(instructors []models.Instructor, filter models.InstructorFilter) []models.Instructor {
	filtered := []models.Instructor{}
	for _, i := range instructors {
		if filter.Transmission != "" && i.Transmission != filter.Transmission {
			continue
		}
		if filter.Specialty != "" && !i.HasSpecialty(filter.Specialty) {
			continue
		}
		filtered = append(filtered, i)
	}
	return filtered
}
