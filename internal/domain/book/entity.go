package book

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCopyCount  = errors.New("total copies must be at least 1")
	ErrCopyCountExceeded = errors.New("available copies cannot exceed total copies")
	ErrNegativeCopies    = errors.New("available copies cannot be negative")
	ErrInvalidVersion    = errors.New("version must be at least 1")
)

// Book is the aggregate root for inventory. Availability is only ever changed
// through version-guarded conditional writes; the version field is the
// optimistic-lock counter and advances on every successful mutation.
type Book struct {
	id              uuid.UUID
	title           string
	author          string
	isbn            ISBN
	genre           string
	description     *string
	totalCopies     int
	availableCopies int
	version         int64
	publicationYear *int32
	deletedAt       *time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

// NewBook creates a book with all copies available and version 1.
func NewBook(title, author string, isbn ISBN, genre string, description *string, totalCopies int, publicationYear *int32) (*Book, error) {
	if totalCopies < 1 {
		return nil, ErrInvalidCopyCount
	}

	return &Book{
		id:              uuid.New(),
		title:           title,
		author:          author,
		isbn:            isbn,
		genre:           genre,
		description:     description,
		totalCopies:     totalCopies,
		availableCopies: totalCopies,
		version:         1,
		publicationYear: publicationYear,
	}, nil
}

func ReconstructBook(
	id uuid.UUID,
	title, author string,
	isbn ISBN,
	genre string,
	description *string,
	totalCopies, availableCopies int,
	version int64,
	publicationYear *int32,
	deletedAt *time.Time,
	createdAt, updatedAt time.Time,
) (*Book, error) {
	if availableCopies < 0 {
		return nil, ErrNegativeCopies
	}
	if availableCopies > totalCopies {
		return nil, ErrCopyCountExceeded
	}
	if version < 1 {
		return nil, ErrInvalidVersion
	}

	return &Book{
		id:              id,
		title:           title,
		author:          author,
		isbn:            isbn,
		genre:           genre,
		description:     description,
		totalCopies:     totalCopies,
		availableCopies: availableCopies,
		version:         version,
		publicationYear: publicationYear,
		deletedAt:       deletedAt,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}, nil
}

func (b *Book) IsAvailable() bool {
	return b.availableCopies > 0 && b.deletedAt == nil
}

func (b *Book) RentedCopies() int {
	return b.totalCopies - b.availableCopies
}

// ChangeTotalCopies recomputes availability from the number of copies
// currently rented out. Shrinking below the rented count clamps availability
// to zero instead of failing; the surplus is absorbed as copies come back.
func (b *Book) ChangeTotalCopies(newTotal int) error {
	if newTotal < 1 {
		return ErrInvalidCopyCount
	}

	rented := b.RentedCopies()
	b.totalCopies = newTotal
	b.availableCopies = max(0, newTotal-rented)
	return nil
}

func (b *Book) Rename(title string)               { b.title = title }
func (b *Book) ChangeAuthor(author string)        { b.author = author }
func (b *Book) ChangeISBN(isbn ISBN)              { b.isbn = isbn }
func (b *Book) ChangeGenre(genre string)          { b.genre = genre }
func (b *Book) ChangeDescription(desc *string)    { b.description = desc }
func (b *Book) ChangePublicationYear(year *int32) { b.publicationYear = year }

func (b *Book) ID() uuid.UUID           { return b.id }
func (b *Book) Title() string           { return b.title }
func (b *Book) Author() string          { return b.author }
func (b *Book) ISBN() ISBN              { return b.isbn }
func (b *Book) Genre() string           { return b.genre }
func (b *Book) Description() *string    { return b.description }
func (b *Book) TotalCopies() int        { return b.totalCopies }
func (b *Book) AvailableCopies() int    { return b.availableCopies }
func (b *Book) Version() int64          { return b.version }
func (b *Book) PublicationYear() *int32 { return b.publicationYear }
func (b *Book) DeletedAt() *time.Time   { return b.deletedAt }
func (b *Book) CreatedAt() time.Time    { return b.createdAt }
func (b *Book) UpdatedAt() time.Time    { return b.updatedAt }
