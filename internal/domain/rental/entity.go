package rental

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	MaxExtensions = 5
	DefaultDays   = 14
)

var (
	ErrAlreadyReturned = errors.New("rental is already returned")
	ErrCannotExtend    = errors.New("rental cannot be extended")
	ErrInvalidStatus   = errors.New("invalid rental status")
)

// Rental records one user borrowing one book copy. Completed is terminal:
// no mutation is permitted after Return.
type Rental struct {
	id             uuid.UUID
	userID         uuid.UUID
	bookID         uuid.UUID
	period         RentalPeriod
	status         Status
	progress       ReadingProgress
	extensionCount int
	createdAt      time.Time
	updatedAt      time.Time
}

// NewRental starts an active rental with zero progress and no extensions.
// days <= 0 falls back to the default rental period.
func NewRental(userID, bookID uuid.UUID, now time.Time, days int) *Rental {
	if days <= 0 {
		days = DefaultDays
	}

	return &Rental{
		id:     uuid.New(),
		userID: userID,
		bookID: bookID,
		period: NewRentalPeriodStarting(now, days),
		status: StatusActive,
	}
}

func ReconstructRental(
	id, userID, bookID uuid.UUID,
	period RentalPeriod,
	status Status,
	progress ReadingProgress,
	extensionCount int,
	createdAt, updatedAt time.Time,
) (*Rental, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	return &Rental{
		id:             id,
		userID:         userID,
		bookID:         bookID,
		period:         period,
		status:         status,
		progress:       progress,
		extensionCount: extensionCount,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (r *Rental) IsActive() bool {
	return r.status == StatusActive
}

func (r *Rental) IsOverdue(now time.Time) bool {
	return r.period.IsOverdue(now)
}

func (r *Rental) CanExtend(now time.Time) bool {
	return r.status == StatusActive &&
		r.extensionCount < MaxExtensions &&
		!r.period.IsOverdue(now)
}

// Extend pushes the due date forward and bumps the extension counter.
// days <= 0 falls back to the default rental period.
func (r *Rental) Extend(now time.Time, days int) error {
	if !r.CanExtend(now) {
		return ErrCannotExtend
	}
	if days <= 0 {
		days = DefaultDays
	}

	r.period = r.period.Extend(days)
	r.extensionCount++
	return nil
}

// Return transitions the rental to its terminal state and marks the book
// as read through.
func (r *Rental) Return(now time.Time) error {
	if r.status == StatusCompleted {
		return ErrAlreadyReturned
	}

	r.period = r.period.Close(now)
	r.status = StatusCompleted
	r.progress, _ = NewReadingProgress(100)
	return nil
}

func (r *Rental) UpdateProgress(progress ReadingProgress) error {
	if r.status == StatusCompleted {
		return ErrAlreadyReturned
	}

	r.progress = progress
	return nil
}

func (r *Rental) ID() uuid.UUID             { return r.id }
func (r *Rental) UserID() uuid.UUID         { return r.userID }
func (r *Rental) BookID() uuid.UUID         { return r.bookID }
func (r *Rental) Period() RentalPeriod      { return r.period }
func (r *Rental) Status() Status            { return r.status }
func (r *Rental) Progress() ReadingProgress { return r.progress }
func (r *Rental) ExtensionCount() int       { return r.extensionCount }
func (r *Rental) CreatedAt() time.Time      { return r.createdAt }
func (r *Rental) UpdatedAt() time.Time      { return r.updatedAt }
