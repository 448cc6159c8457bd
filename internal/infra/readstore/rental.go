package readstore

import (
	"context"

	"library-rental-api/internal/infra"
	"library-rental-api/internal/infra/db"
	"library-rental-api/internal/pkg/pgconv"
	"library-rental-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type RentalReadStore struct {
	db db.DBTX
}

func NewRentalReadStore(dbtx db.DBTX) *RentalReadStore {
	return &RentalReadStore{db: dbtx}
}

func (s *RentalReadStore) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*queries.RentalView, error) {
	const query = `
		SELECT r.id, r.user_id, r.book_id, b.title, b.author,
		       r.rented_at, r.due_date, r.returned_at, r.status,
		       r.reading_progress, r.extension_count, r.created_at, r.updated_at
		FROM rentals r
		JOIN books b ON b.id = r.book_id
		WHERE r.id = $1 AND r.user_id = $2`

	var (
		view       queries.RentalView
		returnedAt pgtype.Timestamptz
	)
	err := s.db.QueryRow(ctx, query, id, userID).Scan(
		&view.ID, &view.UserID, &view.BookID, &view.BookTitle, &view.BookAuthor,
		&view.RentedAt, &view.DueDate, &returnedAt, &view.Status,
		&view.ReadingProgress, &view.ExtensionCount, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("rental not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find rental by ID", err)
	}

	view.ReturnedAt = pgconv.TimePtrFromPgtype(returnedAt)
	return &view, nil
}

func (s *RentalReadStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*queries.RentalListItem, error) {
	const query = `
		SELECT r.id, r.book_id, b.title, r.due_date, r.returned_at, r.status,
		       r.reading_progress, r.created_at
		FROM rentals r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list rentals by user", err)
	}
	defer rows.Close()

	var result []*queries.RentalListItem
	for rows.Next() {
		var (
			item       queries.RentalListItem
			returnedAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(&item.ID, &item.BookID, &item.BookTitle, &item.DueDate,
			&returnedAt, &item.Status, &item.ReadingProgress, &item.CreatedAt); scanErr != nil {
			return nil, infra.WrapRepoErr("failed to scan rental row", scanErr)
		}
		item.ReturnedAt = pgconv.TimePtrFromPgtype(returnedAt)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate rental rows", err)
	}

	return result, nil
}
