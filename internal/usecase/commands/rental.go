package commands

import (
	"context"

	"library-rental-api/internal/domain/rental"
	"library-rental-api/internal/infra"
	"library-rental-api/internal/pkg/clock"
	"library-rental-api/internal/pkg/config"
	"library-rental-api/internal/pkg/errs"
	"library-rental-api/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrBookNotFound           = errs.New("book not found")
	ErrBookNotAvailable       = errs.New("book is not available for rent")
	ErrActiveRentalExists     = errs.New("active rental already exists for this book")
	ErrRentalNotFound         = errs.New("rental not found")
	ErrAlreadyReturned        = errs.New("rental is already returned")
	ErrCannotExtend           = errs.New("rental cannot be extended")
	ErrInvalidProgress        = errs.New("invalid reading progress")
	ErrOptimisticLockConflict = errs.New("concurrent modification detected, retry with fresh data")
)

type RentalCommands interface {
	RentBook(ctx context.Context, userID, bookID uuid.UUID, rentalDays int) (*rental.Rental, error)
	ReturnBook(ctx context.Context, rentalID, userID uuid.UUID) (*rental.Rental, error)
	ExtendRental(ctx context.Context, rentalID, userID uuid.UUID, days int) (*rental.Rental, error)
	UpdateReadingProgress(ctx context.Context, rentalID, userID uuid.UUID, progress int) (*rental.Rental, error)
}

type rentalCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	cfg   config.RentalConfig
}

func NewRentalCommands(uow shared.UnitOfWork, clock clock.Clock, cfg config.RentalConfig) RentalCommands {
	return &rentalCommandsImpl{
		uow:   uow,
		clock: clock,
		cfg:   cfg,
	}
}

// resolveDays applies the configured default and upper bound to a
// client-supplied period length. The DTO layer enforces the same bound for
// HTTP callers; this keeps non-HTTP callers inside it too.
func (r *rentalCommandsImpl) resolveDays(days int) int {
	if days <= 0 {
		return r.cfg.DefaultDays
	}
	if r.cfg.MaxDays > 0 && days > r.cfg.MaxDays {
		return r.cfg.MaxDays
	}
	return days
}

// RentBook reserves one copy for the user. The availability check on the
// snapshot only short-circuits the common case; the version-guarded decrement
// inside the transaction is the authoritative guard. On conflict the whole
// operation fails and the caller decides whether to retry with a fresh read.
func (r *rentalCommandsImpl) RentBook(ctx context.Context, userID, bookID uuid.UUID, rentalDays int) (*rental.Rental, error) {
	snapshot, err := r.uow.Books().FindByID(ctx, bookID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if !snapshot.IsAvailable() {
		return nil, ErrBookNotAvailable
	}

	hasActive, err := r.uow.Rentals().HasActiveRental(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if hasActive {
		return nil, ErrActiveRentalExists
	}

	newRental := rental.NewRental(userID, bookID, r.clock.Now(), r.resolveDays(rentalDays))

	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ok, decErr := tx.Books().DecrementAvailability(ctx, bookID, snapshot.Version())
		if decErr != nil {
			return decErr
		}
		if !ok {
			return ErrOptimisticLockConflict
		}

		return tx.Rentals().Create(ctx, newRental)
	})
	if err != nil {
		// The partial unique index on active rentals closes the race the
		// earlier existence check cannot see.
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, ErrActiveRentalExists
		}
		return nil, err
	}

	return newRental, nil
}

// ReturnBook completes the rental and releases the copy. The completion write
// and the conditional increment share one transaction: if the increment loses
// the version race, the completion rolls back with it.
func (r *rentalCommandsImpl) ReturnBook(ctx context.Context, rentalID, userID uuid.UUID) (*rental.Rental, error) {
	ren, err := r.findRental(ctx, rentalID, userID)
	if err != nil {
		return nil, err
	}

	if err := ren.Return(r.clock.Now()); err != nil {
		return nil, errs.Mark(err, ErrAlreadyReturned)
	}

	snapshot, err := r.uow.Books().FindByID(ctx, ren.BookID())
	if err != nil {
		return nil, err
	}

	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if updateErr := tx.Rentals().Update(ctx, ren); updateErr != nil {
			return updateErr
		}

		ok, incErr := tx.Books().IncrementAvailability(ctx, ren.BookID(), snapshot.Version())
		if incErr != nil {
			return incErr
		}
		if !ok {
			return ErrOptimisticLockConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ren, nil
}

func (r *rentalCommandsImpl) ExtendRental(ctx context.Context, rentalID, userID uuid.UUID, days int) (*rental.Rental, error) {
	ren, err := r.findRental(ctx, rentalID, userID)
	if err != nil {
		return nil, err
	}

	if err := ren.Extend(r.clock.Now(), r.resolveDays(days)); err != nil {
		return nil, errs.Mark(err, ErrCannotExtend)
	}

	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Rentals().Update(ctx, ren)
	})
	if err != nil {
		return nil, err
	}

	return ren, nil
}

func (r *rentalCommandsImpl) UpdateReadingProgress(ctx context.Context, rentalID, userID uuid.UUID, progress int) (*rental.Rental, error) {
	// Validate at the value-object boundary before touching storage
	newProgress, err := rental.NewReadingProgress(progress)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidProgress)
	}

	ren, err := r.findRental(ctx, rentalID, userID)
	if err != nil {
		return nil, err
	}

	if err := ren.UpdateProgress(newProgress); err != nil {
		return nil, errs.Mark(err, ErrAlreadyReturned)
	}

	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Rentals().Update(ctx, ren)
	})
	if err != nil {
		return nil, err
	}

	return ren, nil
}

func (r *rentalCommandsImpl) findRental(ctx context.Context, rentalID, userID uuid.UUID) (*rental.Rental, error) {
	ren, err := r.uow.Rentals().FindByIDForUser(ctx, rentalID, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRentalNotFound
		}
		return nil, err
	}
	return ren, nil
}
