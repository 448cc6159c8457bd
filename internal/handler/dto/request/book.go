package request

import (
	"library-rental-api/internal/domain/book"
	"library-rental-api/internal/usecase/commands"
)

type CreateBookRequest struct {
	Title           string  `json:"title" binding:"required,max=255"`
	Author          string  `json:"author" binding:"required,max=255"`
	ISBN            string  `json:"isbn" binding:"required"`
	Genre           string  `json:"genre" binding:"required,max=100"`
	Description     *string `json:"description"`
	TotalCopies     int     `json:"totalCopies" binding:"required,min=1"`
	PublicationYear *int32  `json:"publicationYear"`
}

func (r *CreateBookRequest) ToParams() commands.CreateBookParams {
	return commands.CreateBookParams{
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		Genre:           r.Genre,
		Description:     r.Description,
		TotalCopies:     r.TotalCopies,
		PublicationYear: r.PublicationYear,
	}
}

// UpdateBookRequest is a partial update; omitted fields stay unchanged.
// Version is mandatory: it is the optimistic-lock precondition.
type UpdateBookRequest struct {
	Title           *string `json:"title" binding:"omitempty,max=255"`
	Author          *string `json:"author" binding:"omitempty,max=255"`
	ISBN            *string `json:"isbn"`
	Genre           *string `json:"genre" binding:"omitempty,max=100"`
	Description     *string `json:"description"`
	TotalCopies     *int    `json:"totalCopies" binding:"omitempty,min=1"`
	PublicationYear *int32  `json:"publicationYear"`
	Version         int64   `json:"version" binding:"required,min=1"`
}

func (r *UpdateBookRequest) ToParams() commands.UpdateBookParams {
	return commands.UpdateBookParams{
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		Genre:           r.Genre,
		Description:     r.Description,
		TotalCopies:     r.TotalCopies,
		PublicationYear: r.PublicationYear,
		Version:         r.Version,
	}
}

type DeleteBookRequest struct {
	Version int64 `json:"version" binding:"required,min=1"`
}

type SearchBooksQuery struct {
	Title         *string `form:"title"`
	Author        *string `form:"author"`
	Genre         *string `form:"genre"`
	AvailableOnly bool    `form:"availableOnly"`
	SortBy        string  `form:"sortBy"`
	SortDir       string  `form:"sortDir"`
	Limit         int32   `form:"limit"`
	Offset        int32   `form:"offset"`
}

func (q *SearchBooksQuery) ToCriteria() book.SearchCriteria {
	return book.SearchCriteria{
		Title:         q.Title,
		Author:        q.Author,
		Genre:         q.Genre,
		AvailableOnly: q.AvailableOnly,
		SortBy:        q.SortBy,
		SortDirection: book.SortDirection(q.SortDir),
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
}
