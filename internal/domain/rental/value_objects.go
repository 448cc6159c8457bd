package rental

import (
	"errors"
	"time"
)

var (
	ErrDueBeforeRented = errors.New("due date cannot be before rented date")
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
)

// RentalPeriod is an immutable value; Extend and Close return new values
// rather than mutating in place.
type RentalPeriod struct {
	rentedAt   time.Time
	dueDate    time.Time
	returnedAt *time.Time
}

func NewRentalPeriod(rentedAt, dueDate time.Time, returnedAt *time.Time) (RentalPeriod, error) {
	if dueDate.Before(rentedAt) {
		return RentalPeriod{}, ErrDueBeforeRented
	}
	return RentalPeriod{
		rentedAt:   rentedAt,
		dueDate:    dueDate,
		returnedAt: returnedAt,
	}, nil
}

func NewRentalPeriodStarting(now time.Time, days int) RentalPeriod {
	return RentalPeriod{
		rentedAt: now,
		dueDate:  now.AddDate(0, 0, days),
	}
}

func (p RentalPeriod) RentedAt() time.Time    { return p.rentedAt }
func (p RentalPeriod) DueDate() time.Time     { return p.dueDate }
func (p RentalPeriod) ReturnedAt() *time.Time { return p.returnedAt }

func (p RentalPeriod) IsOverdue(now time.Time) bool {
	return p.returnedAt == nil && p.dueDate.Before(now)
}

func (p RentalPeriod) DaysRemaining(now time.Time) int {
	if p.returnedAt != nil {
		return 0
	}
	remaining := int(p.dueDate.Sub(now).Hours() / 24)
	return max(0, remaining)
}

func (p RentalPeriod) Extend(days int) RentalPeriod {
	return RentalPeriod{
		rentedAt:   p.rentedAt,
		dueDate:    p.dueDate.AddDate(0, 0, days),
		returnedAt: p.returnedAt,
	}
}

func (p RentalPeriod) Close(returnedAt time.Time) RentalPeriod {
	return RentalPeriod{
		rentedAt:   p.rentedAt,
		dueDate:    p.dueDate,
		returnedAt: &returnedAt,
	}
}

type ReadingProgress struct {
	value int
}

func NewReadingProgress(value int) (ReadingProgress, error) {
	if value < 0 || value > 100 {
		return ReadingProgress{}, ErrInvalidProgress
	}
	return ReadingProgress{value: value}, nil
}

func (r ReadingProgress) Value() int {
	return r.value
}

func (r ReadingProgress) IsComplete() bool {
	return r.value == 100
}
