package repository

import (
	"context"
	"time"

	"library-rental-api/internal/domain/book"
	"library-rental-api/internal/infra"
	"library-rental-api/internal/infra/db"
	"library-rental-api/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// BookRepository applies inventory changes with optimistic locking: every
// write predicate carries the expected version, so a concurrent writer makes
// the statement a no-op instead of producing a lost update.
type BookRepository struct {
	db db.DBTX
}

func NewBookRepository(dbtx db.DBTX) *BookRepository {
	return &BookRepository{db: dbtx}
}

func (r *BookRepository) Create(ctx context.Context, b *book.Book) error {
	const query = `
		INSERT INTO books (id, title, author, isbn, genre, description,
		                   total_copies, available_copies, version, publication_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		b.ID(), b.Title(), b.Author(), b.ISBN().Value(), b.Genre(),
		pgconv.StringPtrToPgtype(b.Description()),
		b.TotalCopies(), b.AvailableCopies(), b.Version(),
		pgconv.Int32PtrToPgtype(b.PublicationYear()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("book with this ISBN already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create book", err)
	}

	return nil
}

func (r *BookRepository) FindByID(ctx context.Context, id uuid.UUID) (*book.Book, error) {
	const query = `
		SELECT id, title, author, isbn, genre, description,
		       total_copies, available_copies, version, publication_year,
		       deleted_at, created_at, updated_at
		FROM books
		WHERE id = $1 AND deleted_at IS NULL`

	return r.scanBook(r.db.QueryRow(ctx, query, id))
}

// UpdateWithLock replaces all caller-editable fields if the stored version
// still matches. Returns false on version mismatch or missing row.
func (r *BookRepository) UpdateWithLock(ctx context.Context, b *book.Book, expectedVersion int64) (bool, error) {
	const query = `
		UPDATE books
		SET title = $3, author = $4, isbn = $5, genre = $6, description = $7,
		    total_copies = $8, available_copies = $9, publication_year = $10,
		    version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query,
		b.ID(), expectedVersion,
		b.Title(), b.Author(), b.ISBN().Value(), b.Genre(),
		pgconv.StringPtrToPgtype(b.Description()),
		b.TotalCopies(), b.AvailableCopies(),
		pgconv.Int32PtrToPgtype(b.PublicationYear()),
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to update book", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteWithLock soft-deletes; the version still advances so later stale
// writers are rejected by their version guard rather than resurrecting the row.
func (r *BookRepository) DeleteWithLock(ctx context.Context, id uuid.UUID, expectedVersion int64) (bool, error) {
	const query = `
		UPDATE books
		SET deleted_at = now(), version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, expectedVersion)
	if err != nil {
		return false, infra.WrapRepoErr("failed to delete book", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DecrementAvailability is the authoritative guard for renting: the
// availability check lives in the WHERE clause, so two racers for the last
// copy can have at most one winner.
func (r *BookRepository) DecrementAvailability(ctx context.Context, id uuid.UUID, expectedVersion int64) (bool, error) {
	const query = `
		UPDATE books
		SET available_copies = available_copies - 1, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2 AND available_copies > 0 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, expectedVersion)
	if err != nil {
		return false, infra.WrapRepoErr("failed to decrement availability", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *BookRepository) IncrementAvailability(ctx context.Context, id uuid.UUID, expectedVersion int64) (bool, error) {
	const query = `
		UPDATE books
		SET available_copies = available_copies + 1, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2 AND available_copies < total_copies AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, expectedVersion)
	if err != nil {
		return false, infra.WrapRepoErr("failed to increment availability", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *BookRepository) CountActiveRentals(ctx context.Context, bookID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM rentals WHERE book_id = $1 AND status = 'active'`

	var count int64
	if err := r.db.QueryRow(ctx, query, bookID).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count active rentals", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *BookRepository) scanBook(row rowScanner) (*book.Book, error) {
	var (
		id              uuid.UUID
		title           string
		author          string
		isbnValue       string
		genre           string
		description     pgtype.Text
		totalCopies     int
		available       int
		version         int64
		publicationYear pgtype.Int4
		deletedAt       pgtype.Timestamptz
		createdAt       time.Time
		updatedAt       time.Time
	)

	err := row.Scan(&id, &title, &author, &isbnValue, &genre, &description,
		&totalCopies, &available, &version, &publicationYear,
		&deletedAt, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("book not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan book", err)
	}

	isbn, err := book.NewISBN(isbnValue)
	if err != nil {
		return nil, infra.WrapRepoErr("stored ISBN is invalid", err)
	}

	entity, err := book.ReconstructBook(
		id, title, author, isbn, genre,
		pgconv.StringPtrFromPgtype(description),
		totalCopies, available, version,
		pgconv.Int32PtrFromPgtype(publicationYear),
		pgconv.TimePtrFromPgtype(deletedAt),
		createdAt, updatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("stored book violates invariants", err)
	}

	return entity, nil
}
