//go:build unit

package builder

import (
	"time"

	"library-rental-api/internal/domain/rental"

	"github.com/google/uuid"
)

type RentalBuilder struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	BookID         uuid.UUID
	RentedAt       time.Time
	DueDate        time.Time
	ReturnedAt     *time.Time
	Status         rental.Status
	Progress       int
	ExtensionCount int
}

func NewRentalBuilder() *RentalBuilder {
	now := time.Now()
	return &RentalBuilder{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		BookID:   uuid.New(),
		RentedAt: now,
		DueDate:  now.AddDate(0, 0, rental.DefaultDays),
		Status:   rental.StatusActive,
	}
}

func (r *RentalBuilder) WithUserID(id uuid.UUID) *RentalBuilder {
	r.UserID = id
	return r
}

func (r *RentalBuilder) WithBookID(id uuid.UUID) *RentalBuilder {
	r.BookID = id
	return r
}

func (r *RentalBuilder) WithPeriod(rentedAt, dueDate time.Time) *RentalBuilder {
	r.RentedAt = rentedAt
	r.DueDate = dueDate
	return r
}

func (r *RentalBuilder) WithExtensionCount(count int) *RentalBuilder {
	r.ExtensionCount = count
	return r
}

func (r *RentalBuilder) Returned(at time.Time) *RentalBuilder {
	r.ReturnedAt = &at
	r.Status = rental.StatusCompleted
	r.Progress = 100
	return r
}

func (r *RentalBuilder) BuildDomain() (*rental.Rental, error) {
	period, err := rental.NewRentalPeriod(r.RentedAt, r.DueDate, r.ReturnedAt)
	if err != nil {
		return nil, err
	}
	progress, err := rental.NewReadingProgress(r.Progress)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return rental.ReconstructRental(r.ID, r.UserID, r.BookID, period, r.Status,
		progress, r.ExtensionCount, now, now)
}
