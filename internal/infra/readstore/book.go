package readstore

import (
	"context"
	"fmt"
	"strings"

	"library-rental-api/internal/domain/book"
	"library-rental-api/internal/infra"
	"library-rental-api/internal/infra/db"
	"library-rental-api/internal/pkg/pgconv"
	"library-rental-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const bookViewColumns = `id, title, author, isbn, genre, description,
	total_copies, available_copies, version, publication_year, created_at, updated_at`

type BookReadStore struct {
	db db.DBTX
}

func NewBookReadStore(dbtx db.DBTX) *BookReadStore {
	return &BookReadStore{db: dbtx}
}

func (s *BookReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookView, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1 AND deleted_at IS NULL`, bookViewColumns)

	view, err := scanBookView(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("book not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find book by ID", err)
	}

	return view, nil
}

// Search filters and pages the catalog. Criteria must already be normalized;
// the sort column is validated against a whitelist there, never interpolated
// from raw input.
func (s *BookReadStore) Search(ctx context.Context, criteria book.SearchCriteria) ([]*queries.BookView, int64, error) {
	where, args := buildSearchPredicate(criteria)

	countQuery := `SELECT COUNT(*) FROM books ` + where
	var total int64
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to count books", err)
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM books %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		bookViewColumns, where, criteria.SortBy, strings.ToUpper(string(criteria.SortDirection)),
		len(args)+1, len(args)+2)
	args = append(args, criteria.Limit, criteria.Offset)

	rows, err := s.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, infra.WrapRepoErr("failed to search books", err)
	}
	defer rows.Close()

	var result []*queries.BookView
	for rows.Next() {
		view, scanErr := scanBookView(rows)
		if scanErr != nil {
			return nil, 0, infra.WrapRepoErr("failed to scan book row", scanErr)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to iterate book rows", err)
	}

	return result, total, nil
}

func buildSearchPredicate(criteria book.SearchCriteria) (string, []any) {
	conditions := []string{"deleted_at IS NULL"}
	var args []any

	appendCondition := func(format string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(format, len(args)))
	}

	if criteria.Title != nil {
		appendCondition("title ILIKE '%%' || $%d || '%%'", *criteria.Title)
	}
	if criteria.Author != nil {
		appendCondition("author ILIKE '%%' || $%d || '%%'", *criteria.Author)
	}
	if criteria.Genre != nil {
		appendCondition("genre = $%d", *criteria.Genre)
	}
	if criteria.AvailableOnly {
		conditions = append(conditions, "available_copies > 0")
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookView(row rowScanner) (*queries.BookView, error) {
	var (
		view            queries.BookView
		description     pgtype.Text
		publicationYear pgtype.Int4
	)

	err := row.Scan(&view.ID, &view.Title, &view.Author, &view.ISBN, &view.Genre,
		&description, &view.TotalCopies, &view.AvailableCopies, &view.Version,
		&publicationYear, &view.CreatedAt, &view.UpdatedAt)
	if err != nil {
		return nil, err
	}

	view.Description = pgconv.StringPtrFromPgtype(description)
	view.PublicationYear = pgconv.Int32PtrFromPgtype(publicationYear)
	return &view, nil
}
