package models

// SpecialtyNervousDrivers marks instructors trained to work with anxious learners
const SpecialtyNervousDrivers = "nervous-drivers"

// Instructor represents a driving instructor as shown in the catalogue
type Instructor struct {
	ID              int          `json:"id"`
	FullName        string       `json:"fullName"`
	Bio             string       `json:"bio"`
	PhotoURL        string       `json:"photoUrl,omitempty"`
	Transmission    Transmission `json:"transmission"`
	Specialties     []string     `json:"specialties"`
	YearsExperience int          `json:"yearsExperience"`
	HourlyRateCents int64        `json:"hourlyRateCents"`
	Active          bool         `json:"active"`
	AverageRating   float64      `json:"averageRating"`
	ReviewCount     int          `json:"reviewCount"`
}

// HasSpecialty reports whether the instructor lists the given specialty
func (i *Instructor) HasSpecialty(specialty string) bool {
	for _, s := range i.Specialties {
		if s == specialty {
			return true
		}
	}
	return false
}

// InstructorFilter narrows the instructor catalogue
type InstructorFilter struct {
	Transmission Transmission
	Specialty    string
}

// CreateUpdateInstructorRequest is used by admins to manage the catalogue
type CreateUpdateInstructorRequest struct {
	FullName        string       `json:"fullName" validate:"required,max=100"`
	Bio             string       `json:"bio" validate:"max=2000"`
	PhotoURL        string       `json:"photoUrl" validate:"omitempty,url"`
	Transmission    Transmission `json:"transmission" validate:"required,oneof=manual automatic"`
	Specialties     []string     `json:"specialties" validate:"dive,max=50"`
	YearsExperience int          `json:"yearsExperience" validate:"min=0,max=60"`
	HourlyRateCents int64        `json:"hourlyRateCents" validate:"min=0"`
	Active          *bool        `json:"active,omitempty"`
}

// Availability lists the free hourly slots of an instructor on a date
type Availability struct {
	InstructorID int      `json:"instructorId"`
	Date         string   `json:"date"`
	FreeSlots    []string `json:"freeSlots"`
}
