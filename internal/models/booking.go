package models

import (
	"fmt"
	"time"
)

// LessonType is the kind of lesson being booked
type LessonType string

const (
	LessonTypeStandard       LessonType = "standard"
	LessonTypeHighway        LessonType = "highway"
	LessonTypeParking        LessonType = "parking"
	LessonTypeTestPrep       LessonType = "test-prep"
	LessonTypeAnxietySupport LessonType = "anxiety-support"
)

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Date and time layouts used for lesson slots
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Booking is a scheduled lesson linking a learner and an instructor to a slot
type Booking struct {
	ID             int           `json:"id"`
	Reference      string        `json:"reference"`
	UserID         int           `json:"userId"`
	InstructorID   int           `json:"instructorId"`
	InstructorName string        `json:"instructorName,omitempty"`
	LessonDate     string        `json:"lessonDate"` // YYYY-MM-DD
	LessonTime     string        `json:"lessonTime"` // HH:MM
	LessonType     LessonType    `json:"lessonType"`
	Status         BookingStatus `json:"status"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// StartsAt returns the lesson start time in the given location
func (b *Booking) StartsAt(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, b.LessonDate+" "+b.LessonTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid lesson slot: %w", err)
	}
	return t, nil
}

// CreateBookingRequest represents a request to book a lesson
type CreateBookingRequest struct {
	InstructorID int        `json:"instructorId" validate:"required,min=1"`
	LessonDate   string     `json:"lessonDate" validate:"required,datetime=2006-01-02"`
	LessonTime   string     `json:"lessonTime" validate:"required,datetime=15:04"`
	LessonType   LessonType `json:"lessonType" validate:"required,oneof=standard highway parking test-prep anxiety-support"`
	Notes        string     `json:"notes" validate:"max=500"`
}

// UpdateBookingStatusRequest is used by instructors and admins
type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" validate:"required,oneof=confirmed completed cancelled"`
}

// ReminderBooking is a booking joined with the data needed to remind the learner
type ReminderBooking struct {
	BookingID      int    `json:"bookingId"`
	Reference      string `json:"reference"`
	LessonDate     string `json:"lessonDate"`
	LessonTime     string `json:"lessonTime"`
	LessonType     string `json:"lessonType"`
	InstructorName string `json:"instructorName"`
	UserEmail      string `json:"userEmail"`
	UserName       string `json:"userName"`
	TelegramChatID string `json:"telegramChatId,omitempty"`
}
