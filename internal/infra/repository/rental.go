package repository

import (
	"context"
	"time"

	"library-rental-api/internal/domain/rental"
	"library-rental-api/internal/infra"
	"library-rental-api/internal/infra/db"
	"library-rental-api/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type RentalRepository struct {
	db db.DBTX
}

func NewRentalRepository(dbtx db.DBTX) *RentalRepository {
	return &RentalRepository{db: dbtx}
}

func (r *RentalRepository) Create(ctx context.Context, ren *rental.Rental) error {
	const query = `
		INSERT INTO rentals (id, user_id, book_id, rented_at, due_date, returned_at,
		                     status, reading_progress, extension_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	period := ren.Period()
	_, err := r.db.Exec(ctx, query,
		ren.ID(), ren.UserID(), ren.BookID(),
		period.RentedAt(), period.DueDate(), pgconv.TimePtrToPgtype(period.ReturnedAt()),
		ren.Status().String(), ren.Progress().Value(), ren.ExtensionCount(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return infra.WrapRepoErr("rental references missing user or book", err, infra.KindForeignKeyViolated)
		}
		return infra.WrapRepoErr("failed to create rental", err)
	}

	return nil
}

// FindByIDForUser scopes the lookup to the owning user; a rental owned by
// someone else is indistinguishable from a missing one.
func (r *RentalRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*rental.Rental, error) {
	const query = `
		SELECT id, user_id, book_id, rented_at, due_date, returned_at,
		       status, reading_progress, extension_count, created_at, updated_at
		FROM rentals
		WHERE id = $1 AND user_id = $2`

	return scanRental(r.db.QueryRow(ctx, query, id, userID))
}

func (r *RentalRepository) HasActiveRental(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM rentals
			WHERE user_id = $1 AND book_id = $2 AND status = 'active'
		)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, bookID).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check active rental", err)
	}

	return exists, nil
}

func (r *RentalRepository) Update(ctx context.Context, ren *rental.Rental) error {
	const query = `
		UPDATE rentals
		SET due_date = $2, returned_at = $3, status = $4,
		    reading_progress = $5, extension_count = $6, updated_at = now()
		WHERE id = $1`

	period := ren.Period()
	tag, err := r.db.Exec(ctx, query,
		ren.ID(), period.DueDate(), pgconv.TimePtrToPgtype(period.ReturnedAt()),
		ren.Status().String(), ren.Progress().Value(), ren.ExtensionCount(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update rental", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("rental not found", nil, infra.KindNotFound)
	}

	return nil
}

func scanRental(row rowScanner) (*rental.Rental, error) {
	var (
		id             uuid.UUID
		userID         uuid.UUID
		bookID         uuid.UUID
		rentedAt       time.Time
		dueDate        time.Time
		returnedAt     pgtype.Timestamptz
		status         string
		progressValue  int
		extensionCount int
		createdAt      time.Time
		updatedAt      time.Time
	)

	err := row.Scan(&id, &userID, &bookID, &rentedAt, &dueDate, &returnedAt,
		&status, &progressValue, &extensionCount, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("rental not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan rental", err)
	}

	period, err := rental.NewRentalPeriod(rentedAt, dueDate, pgconv.TimePtrFromPgtype(returnedAt))
	if err != nil {
		return nil, infra.WrapRepoErr("stored rental period is invalid", err)
	}

	progress, err := rental.NewReadingProgress(progressValue)
	if err != nil {
		return nil, infra.WrapRepoErr("stored reading progress is invalid", err)
	}

	entity, err := rental.ReconstructRental(
		id, userID, bookID, period, rental.Status(status),
		progress, extensionCount, createdAt, updatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("stored rental violates invariants", err)
	}

	return entity, nil
}
