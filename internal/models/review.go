package models

import "time"

// Review is a learner's rating of an instructor
type Review struct {
	ID           int       `json:"id"`
	InstructorID int       `json:"instructorId"`
	UserID       int       `json:"userId"`
	AuthorName   string    `json:"authorName"`
	Rating       int       `json:"rating"` // 1..5
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateReviewRequest represents a request to review an instructor
type CreateReviewRequest struct {
	InstructorID int    `json:"instructorId" validate:"required,min=1"`
	Rating       int    `json:"rating" validate:"required,min=1,max=5"`
	Comment      string `json:"comment" validate:"max=1000"`
}
