package queries

import (
	"context"

	"library-rental-api/internal/infra"
	"library-rental-api/internal/pkg/clock"
	"library-rental-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrRentalNotFound = errs.New("rental not found")

type RentalQueries interface {
	GetByID(ctx context.Context, id, userID uuid.UUID) (*RentalView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*RentalListItem, error)
}

type RentalReadStore interface {
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*RentalView, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*RentalListItem, error)
}

type rentalQueriesImpl struct {
	store RentalReadStore
	clock clock.Clock
}

func NewRentalQueries(store RentalReadStore, clock clock.Clock) RentalQueries {
	return &rentalQueriesImpl{store: store, clock: clock}
}

func (q *rentalQueriesImpl) GetByID(ctx context.Context, id, userID uuid.UUID) (*RentalView, error) {
	view, err := q.store.FindByIDForUser(ctx, id, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRentalNotFound
		}
		return nil, err
	}

	// Overdue is derived, never stored
	now := q.clock.Now()
	view.IsOverdue = view.ReturnedAt == nil && view.DueDate.Before(now)
	return view, nil
}

func (q *rentalQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*RentalListItem, error) {
	items, err := q.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := q.clock.Now()
	for _, item := range items {
		item.IsOverdue = item.ReturnedAt == nil && item.DueDate.Before(now)
	}
	return items, nil
}
