//go:build unit

package builder

import (
	"time"

	"library-rental-api/internal/domain/book"

	"github.com/google/uuid"
)

type BookBuilder struct {
	ID              uuid.UUID
	Title           string
	Author          string
	ISBN            string
	Genre           string
	Description     *string
	TotalCopies     int
	AvailableCopies int
	Version         int64
	PublicationYear *int32
}

func NewBookBuilder() *BookBuilder {
	year := int32(2008)
	return &BookBuilder{
		ID:              uuid.New(),
		Title:           "Clean Code",
		Author:          "Robert C. Martin",
		ISBN:            "9780132350884",
		Genre:           "software",
		TotalCopies:     3,
		AvailableCopies: 3,
		Version:         1,
		PublicationYear: &year,
	}
}

func (b *BookBuilder) WithTitle(title string) *BookBuilder {
	b.Title = title
	return b
}

func (b *BookBuilder) WithISBN(isbn string) *BookBuilder {
	b.ISBN = isbn
	return b
}

func (b *BookBuilder) WithCopies(total, available int) *BookBuilder {
	b.TotalCopies = total
	b.AvailableCopies = available
	return b
}

func (b *BookBuilder) WithVersion(version int64) *BookBuilder {
	b.Version = version
	return b
}

// BuildDomain creates a fresh book; availability always equals total.
func (b *BookBuilder) BuildDomain() (*book.Book, error) {
	isbn, err := book.NewISBN(b.ISBN)
	if err != nil {
		return nil, err
	}
	return book.NewBook(b.Title, b.Author, isbn, b.Genre, b.Description, b.TotalCopies, b.PublicationYear)
}

// BuildReconstructed creates a book in an arbitrary stored state, including
// partial availability and advanced versions.
func (b *BookBuilder) BuildReconstructed() (*book.Book, error) {
	isbn, err := book.NewISBN(b.ISBN)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return book.ReconstructBook(b.ID, b.Title, b.Author, isbn, b.Genre, b.Description,
		b.TotalCopies, b.AvailableCopies, b.Version, b.PublicationYear, nil, now, now)
}
