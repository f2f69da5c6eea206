package services

import (
	"context"
	"sync"

	"github.com/drivingschool/backend/internal/models"
)

// mockUserRepository is a mock implementation of UserRepository
type mockUserRepository struct {
	mu         sync.Mutex
	user       *models.User
	exists     bool
	err        error
	createErr  error
	existsErr  error
	updateErr  error
	created    *models.User
	updated    *models.User
	anxiety    *models.AnxietyLevel
	anxietyVal int
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = 1
	m.created = user
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil {
		return nil, models.ErrUserNotFound
	}
	u := *m.user
	return &u, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return m.GetByEmail(ctx, "")
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exists, m.existsErr
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = user
	return nil
}

func (m *mockUserRepository) UpdateAnxiety(ctx context.Context, userID int, score int, level models.AnxietyLevel) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.anxiety = &level
	m.anxietyVal = score
	return nil
}

// mockUserTokenRepository is a mock implementation of UserTokenRepository
type mockUserTokenRepository struct {
	token     *models.UserToken
	err       error
	createErr error
	updateErr error
	created   []models.UserToken
	deleted   []string
	rotatedTo string
}

func (m *mockUserTokenRepository) Create(ctx context.Context, userToken *models.UserToken) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, *userToken)
	return nil
}

func (m *mockUserTokenRepository) GetByToken(ctx context.Context, token string) (*models.UserToken, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.token == nil {
		return nil, models.ErrTokenNotFound
	}
	return m.token, nil
}

func (m *mockUserTokenRepository) UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.rotatedTo = newToken
	return nil
}

func (m *mockUserTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	m.deleted = append(m.deleted, token)
	return nil
}

// mockLearnerSetup is a mock implementation of LearnerSetup
type mockLearnerSetup struct {
	err    error
	called []int
}

func (m *mockLearnerSetup) InitLearner(ctx context.Context, userID int) error {
	m.called = append(m.called, userID)
	return m.err
}

// mockInstructorRepository is a mock implementation of InstructorRepository
type mockInstructorRepository struct {
	instructors []models.Instructor
	instructor  *models.Instructor
	err         error
	listErr     error
	listCalls   int
	lastFilter  models.InstructorFilter
	saved       *models.Instructor
}

func (m *mockInstructorRepository) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, error) {
	m.listCalls++
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	return filterInstructors(m.instructors, filter), nil
}

func (m *mockInstructorRepository) GetByID(ctx context.Context, id int) (*models.Instructor, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.instructor == nil {
		return nil, models.ErrInstructorNotFound
	}
	i := *m.instructor
	return &i, nil
}

func (m *mockInstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	if m.err != nil {
		return m.err
	}
	instructor.ID = 10
	m.saved = instructor
	return nil
}

func (m *mockInstructorRepository) Update(ctx context.Context, instructor *models.Instructor) error {
	if m.err != nil {
		return m.err
	}
	m.saved = instructor
	return nil
}

// mockSlotRepository is a mock implementation of SlotRepository
type mockSlotRepository struct {
	slots []string
	err   error
}

func (m *mockSlotRepository) BookedSlots(ctx context.Context, instructorID int, date string) ([]string, error) {
	return m.slots, m.err
}

// mockInstructorCache is a mock implementation of InstructorCache
type mockInstructorCache struct {
	entries     map[models.InstructorFilter][]models.Instructor
	getErr      error
	invalidated int
}

func newMockInstructorCache() *mockInstructorCache {
	return &mockInstructorCache{entries: map[models.InstructorFilter][]models.Instructor{}}
}

func (m *mockInstructorCache) Get(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	list, ok := m.entries[filter]
	return list, ok, nil
}

func (m *mockInstructorCache) Set(ctx context.Context, filter models.InstructorFilter, instructors []models.Instructor) error {
	m.entries[filter] = instructors
	return nil
}

func (m *mockInstructorCache) Invalidate(ctx context.Context) error {
	m.invalidated++
	m.entries = map[models.InstructorFilter][]models.Instructor{}
	return nil
}

// mockBookingRepository is a mock implementation of BookingRepository
type mockBookingRepository struct {
	mu            sync.Mutex
	booking       *models.Booking
	readBarrier   *sync.WaitGroup
	changedTo     models.BookingStatus
	bookings      []models.Booking
	taken         bool
	err           error
	createErr     error
	updateErr     error
	created       *models.Booking
	updatedStatus models.BookingStatus
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if m.createErr != nil {
		return m.createErr
	}
	booking.ID = 21
	m.created = booking
	return nil
}

// GetByID returns a copy of the stored booking. With readBarrier set it blocks until every
// reader has loaded the booking; with changedTo set the stored status moves right after the read.
func (m *mockBookingRepository) GetByID(ctx context.Context, id int) (*models.Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	if m.booking == nil {
		m.mu.Unlock()
		return nil, models.ErrBookingNotFound
	}
	b := *m.booking
	if m.changedTo != "" {
		m.booking.Status = m.changedTo
	}
	m.mu.Unlock()

	if m.readBarrier != nil {
		m.readBarrier.Done()
		m.readBarrier.Wait()
	}
	return &b, nil
}

func (m *mockBookingRepository) ListByUser(ctx context.Context, userID int) ([]models.Booking, error) {
	return m.bookings, m.err
}

func (m *mockBookingRepository) ListByDate(ctx context.Context, date string) ([]models.Booking, error) {
	return m.bookings, m.err
}

func (m *mockBookingRepository) ExistsActiveAtSlot(ctx context.Context, instructorID int, date, slot string) (bool, error) {
	return m.taken, m.err
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id int, from, to models.BookingStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.booking != nil {
		if m.booking.Status != from {
			return models.ErrBookingStatusChanged
		}
		m.booking.Status = to
	}
	m.updatedStatus = to
	return nil
}

// mockProgressRepository is a mock implementation of ProgressRepository and ProgressCounter
type mockProgressRepository struct {
	progress    *models.LessonProgress
	err         error
	created     int
	incremented int
	total       int
}

func (m *mockProgressRepository) Create(ctx context.Context, userID, totalLessons int) error {
	if m.err != nil {
		return m.err
	}
	m.created++
	return nil
}

func (m *mockProgressRepository) GetByUserID(ctx context.Context, userID int) (*models.LessonProgress, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.progress == nil {
		return nil, models.ErrProgressNotFound
	}
	p := *m.progress
	return &p, nil
}

func (m *mockProgressRepository) IncrementCompleted(ctx context.Context, userID int) error {
	if m.err != nil {
		return m.err
	}
	m.incremented++
	return nil
}

func (m *mockProgressRepository) SetTotalLessons(ctx context.Context, userID, totalLessons int) error {
	if m.err != nil {
		return m.err
	}
	m.total = totalLessons
	if m.progress != nil {
		m.progress.TotalLessons = totalLessons
	}
	return nil
}

// mockSkillRepository is a mock implementation of SkillRepository
type mockSkillRepository struct {
	skills    []models.SkillItem
	err       error
	setErr    error
	seeded    int
	completed map[int]bool
}

func (m *mockSkillRepository) SeedDefaults(ctx context.Context, userID int, skills []models.DefaultSkill) error {
	if m.err != nil {
		return m.err
	}
	m.seeded++
	if len(m.skills) == 0 {
		for i, s := range skills {
			m.skills = append(m.skills, models.SkillItem{ID: i + 1, UserID: userID, Skill: s.Skill, Title: s.Title})
		}
	}
	return nil
}

func (m *mockSkillRepository) ListByUser(ctx context.Context, userID int) ([]models.SkillItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.SkillItem, len(m.skills))
	copy(out, m.skills)
	return out, nil
}

func (m *mockSkillRepository) SetCompleted(ctx context.Context, userID, skillID int, completed bool) error {
	if m.setErr != nil {
		return m.setErr
	}
	for i := range m.skills {
		if m.skills[i].ID == skillID {
			m.skills[i].Completed = completed
			return nil
		}
	}
	return models.ErrSkillNotFound
}

// mockReviewRepository is a mock implementation of ReviewRepository
type mockReviewRepository struct {
	reviews []models.Review
	allowed bool
	err     error
	created *models.Review
	limit   int
	offset  int
}

func (m *mockReviewRepository) ListByInstructor(ctx context.Context, instructorID, limit, offset int) ([]models.Review, error) {
	m.limit, m.offset = limit, offset
	return m.reviews, m.err
}

func (m *mockReviewRepository) ListRecent(ctx context.Context, limit int) ([]models.Review, error) {
	m.limit = limit
	return m.reviews, m.err
}

func (m *mockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if m.err != nil {
		return m.err
	}
	review.ID = 5
	m.created = review
	return nil
}

func (m *mockReviewRepository) HasCompletedBooking(ctx context.Context, userID, instructorID int) (bool, error) {
	return m.allowed, m.err
}

// mockSupportRepository is a mock implementation of SupportRepository
type mockSupportRepository struct {
	messages []models.SupportMessage
	err      error
	created  *models.SupportMessage
	limit    int
	offset   int
	resolved int
}

func (m *mockSupportRepository) Create(ctx context.Context, message *models.SupportMessage) error {
	if m.err != nil {
		return m.err
	}
	message.ID = 7
	m.created = message
	return nil
}

func (m *mockSupportRepository) List(ctx context.Context, status models.SupportStatus, limit, offset int) ([]models.SupportMessage, error) {
	m.limit, m.offset = limit, offset
	return m.messages, m.err
}

func (m *mockSupportRepository) Resolve(ctx context.Context, id int) error {
	if m.err != nil {
		return m.err
	}
	m.resolved = id
	return nil
}

// mockQueue is a mock implementation of NotificationQueue
type mockQueue struct {
	notifications []models.Notification
	emails        []models.EmailMessage
	err           error
}

func (m *mockQueue) EnqueueNotification(ctx context.Context, n models.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockQueue) EnqueueEmail(ctx context.Context, msg models.EmailMessage) error {
	if m.err != nil {
		return m.err
	}
	m.emails = append(m.emails, msg)
	return nil
}

// mockCatalog is a mock implementation of InstructorCatalog
type mockCatalog struct {
	instructors []models.Instructor
	filters     []models.InstructorFilter
}

func (m *mockCatalog) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, error) {
	m.filters = append(m.filters, filter)
	return filterInstructors(m.instructors, filter), nil
}

// mockGateway is a mock implementation of CheckoutGateway
type mockGateway struct {
	url   string
	err   error
	email string
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, userID int, email string, pkg models.LessonPackage) (string, error) {
	m.email = email
	return m.url, m.err
}
