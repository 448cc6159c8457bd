package response

import (
	"time"

	"library-rental-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type RentalResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"userId"`
	BookID          uuid.UUID  `json:"bookId"`
	BookTitle       string     `json:"bookTitle"`
	BookAuthor      string     `json:"bookAuthor"`
	RentedAt        time.Time  `json:"rentedAt"`
	DueDate         time.Time  `json:"dueDate"`
	ReturnedAt      *time.Time `json:"returnedAt,omitempty"`
	Status          string     `json:"status"`
	IsOverdue       bool       `json:"isOverdue"`
	ReadingProgress int32      `json:"readingProgress"`
	ExtensionCount  int32      `json:"extensionCount"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type RentalListResponse struct {
	ID              uuid.UUID  `json:"id"`
	BookID          uuid.UUID  `json:"bookId"`
	BookTitle       string     `json:"bookTitle"`
	DueDate         time.Time  `json:"dueDate"`
	ReturnedAt      *time.Time `json:"returnedAt,omitempty"`
	Status          string     `json:"status"`
	IsOverdue       bool       `json:"isOverdue"`
	ReadingProgress int32      `json:"readingProgress"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func FromRentalView(view *queries.RentalView) (*RentalResponse, error) {
	var resp RentalResponse
	if err := copier.Copy(&resp, view); err != nil {
		return nil, err
	}
	return &resp, nil
}

func FromRentalListItem(item *queries.RentalListItem) (*RentalListResponse, error) {
	var resp RentalListResponse
	if err := copier.Copy(&resp, item); err != nil {
		return nil, err
	}
	return &resp, nil
}
