package shared

import (
	"context"

	"library-rental-api/internal/domain/book"
	"library-rental-api/internal/domain/rental"
	"library-rental-api/internal/domain/user"

	"github.com/google/uuid"
)

// UnitOfWork is the transactional boundary for the rental workflow. The
// rental-record write and the inventory conditional write must land in the
// same Within call so they commit or roll back together.
type UnitOfWork interface {
	// Within: Full transaction for write operations
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Books/Rentals/Users: pool-backed repositories for reads outside a transaction
	Books() BookRepository
	Rentals() RentalRepository
	Users() UserRepository
}

type Tx interface {
	Books() BookRepository
	Rentals() RentalRepository
	Users() UserRepository
}

// BookRepository owns the inventory side of the books table. The conditional
// operations are compare-and-swap writes: they apply only if the stored
// version equals expectedVersion (and the availability guard holds) and they
// bump the version atomically. A false return means the guard did not hold;
// the caller must re-read to find out why.
type BookRepository interface {
	Create(ctx context.Context, b *book.Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*book.Book, error)
	UpdateWithLock(ctx context.Context, b *book.Book, expectedVersion int64) (bool, error)
	DeleteWithLock(ctx context.Context, id uuid.UUID, expectedVersion int64) (bool, error)
	DecrementAvailability(ctx context.Context, id uuid.UUID, expectedVersion int64) (bool, error)
	IncrementAvailability(ctx context.Context, id uuid.UUID, expectedVersion int64) (bool, error)
	CountActiveRentals(ctx context.Context, bookID uuid.UUID) (int64, error)
}

type RentalRepository interface {
	Create(ctx context.Context, r *rental.Rental) error
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*rental.Rental, error)
	HasActiveRental(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	Update(ctx context.Context, r *rental.Rental) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}
