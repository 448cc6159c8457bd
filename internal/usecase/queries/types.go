package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type BookView struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Genre           string    `json:"genre"`
	Description     *string   `json:"description,omitempty"`
	TotalCopies     int32     `json:"total_copies"`
	AvailableCopies int32     `json:"available_copies"`
	Version         int64     `json:"version"`
	PublicationYear *int32    `json:"publication_year,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type BookSearchResult struct {
	Items  []*BookView `json:"items"`
	Total  int64       `json:"total"`
	Limit  int32       `json:"limit"`
	Offset int32       `json:"offset"`
}

type RentalView struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	BookID          uuid.UUID  `json:"book_id"`
	BookTitle       string     `json:"book_title"`
	BookAuthor      string     `json:"book_author"`
	RentedAt        time.Time  `json:"rented_at"`
	DueDate         time.Time  `json:"due_date"`
	ReturnedAt      *time.Time `json:"returned_at,omitempty"`
	Status          string     `json:"status"`
	IsOverdue       bool       `json:"is_overdue"`
	ReadingProgress int32      `json:"reading_progress"`
	ExtensionCount  int32      `json:"extension_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type RentalListItem struct {
	ID              uuid.UUID  `json:"id"`
	BookID          uuid.UUID  `json:"book_id"`
	BookTitle       string     `json:"book_title"`
	DueDate         time.Time  `json:"due_date"`
	ReturnedAt      *time.Time `json:"returned_at,omitempty"`
	Status          string     `json:"status"`
	IsOverdue       bool       `json:"is_overdue"`
	ReadingProgress int32      `json:"reading_progress"`
	CreatedAt       time.Time  `json:"created_at"`
}
