package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

type instructorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInstructorRepository creates a new instructor repository
func NewInstructorRepository(db *sql.DB, logger *zap.Logger) *instructorRepository {
	return &instructorRepository{
		db:     db,
		logger: logger,
	}
}

const instructorSelect = `
		SELECT i.id, i.full_name, i.bio, i.photo_url, i.transmission, i.specialties,
			i.years_experience, i.hourly_rate_cents, i.active,
			COALESCE(AVG(r.rating), 0) AS average_rating, COUNT(r.id) AS review_count
		FROM instructors i
		LEFT JOIN reviews r ON r.instructor_id = i.id
`

// List returns active instructors matching the filter, ordered by name
func (r *instructorRepository) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, error) {
	var (
		where = []string{"i.active = TRUE"}
		args  []any
	)
	if filter.Transmission != "" {
		where = append(where, "i.transmission = ?")
		args = append(args, filter.Transmission)
	}
	if filter.Specialty != "" {
		where = append(where, "FIND_IN_SET(?, i.specialties) > 0")
		args = append(args, filter.Specialty)
	}

	query := instructorSelect + " WHERE " + strings.Join(where, " AND ") + `
		GROUP BY i.id
		ORDER BY i.full_name
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query instructors", zap.Error(err))
		return nil, fmt.Errorf("failed to query instructors: %w", err)
	}
	defer rows.Close()

	instructors := []models.Instructor{}
	for rows.Next() {
		instructor, err := scanInstructor(rows)
		if err != nil {
			r.logger.Error("failed to scan instructor", zap.Error(err))
			return nil, fmt.Errorf("failed to scan instructor: %w", err)
		}
		instructors = append(instructors, *instructor)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return instructors, nil
}

// GetByID returns an instructor regardless of the active flag
func (r *instructorRepository) GetByID(ctx context.Context, id int) (*models.Instructor, error) {
	query := instructorSelect + `
		WHERE i.id = ?
		GROUP BY i.id
	`

	instructor, err := scanInstructor(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrInstructorNotFound
	}
	if err != nil {
		r.logger.Error("failed to get instructor", zap.Error(err), zap.Int("instructor_id", id))
		return nil, fmt.Errorf("failed to get instructor: %w", err)
	}

	return instructor, nil
}

// Create inserts a new instructor
func (r *instructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	query := `
		INSERT INTO instructors (full_name, bio, photo_url, transmission, specialties, years_experience, hourly_rate_cents, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		instructor.FullName,
		instructor.Bio,
		instructor.PhotoURL,
		instructor.Transmission,
		joinSpecialties(instructor.Specialties),
		instructor.YearsExperience,
		instructor.HourlyRateCents,
		instructor.Active,
	)
	if err != nil {
		r.logger.Error("failed to create instructor", zap.Error(err))
		return fmt.Errorf("failed to create instructor: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	instructor.ID = int(id)
	return nil
}

// Update overwrites the editable fields of an instructor
func (r *instructorRepository) Update(ctx context.Context, instructor *models.Instructor) error {
	query := `
		UPDATE instructors
		SET full_name = ?, bio = ?, photo_url = ?, transmission = ?, specialties = ?,
			years_experience = ?, hourly_rate_cents = ?, active = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		instructor.FullName,
		instructor.Bio,
		instructor.PhotoURL,
		instructor.Transmission,
		joinSpecialties(instructor.Specialties),
		instructor.YearsExperience,
		instructor.HourlyRateCents,
		instructor.Active,
		instructor.ID,
	)
	if err != nil {
		r.logger.Error("failed to update instructor", zap.Error(err), zap.Int("instructor_id", instructor.ID))
		return fmt.Errorf("failed to update instructor: %w", err)
	}

	return expectAffected(result, models.ErrInstructorNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstructor(row rowScanner) (*models.Instructor, error) {
	var (
		instructor  models.Instructor
		specialties string
		avg         float64
	)
	err := row.Scan(
		&instructor.ID,
		&instructor.FullName,
		&instructor.Bio,
		&instructor.PhotoURL,
		&instructor.Transmission,
		&specialties,
		&instructor.YearsExperience,
		&instructor.HourlyRateCents,
		&instructor.Active,
		&avg,
		&instructor.ReviewCount,
	)
	if err != nil {
		return nil, err
	}
	instructor.Specialties = splitSpecialties(specialties)
	instructor.AverageRating = math.Round(avg*10) / 10
	return &instructor, nil
}

func joinSpecialties(specialties []string) string {
	cleaned := make([]string, 0, len(specialties))
	for _, s := range specialties {
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return strings.Join(cleaned, ",")
}

func splitSpecialties(raw string) []string {
	specialties := []string{}
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			specialties = append(specialties, s)
		}
	}
	return specialties
}
