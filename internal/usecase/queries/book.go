package queries

import (
	"context"

	"library-rental-api/internal/domain/book"
	"library-rental-api/internal/infra"
	"library-rental-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrBookNotFound = errs.New("book not found")

type BookQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*BookView, error)
	Search(ctx context.Context, criteria book.SearchCriteria) (*BookSearchResult, error)
}

type BookReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookView, error)
	Search(ctx context.Context, criteria book.SearchCriteria) ([]*BookView, int64, error)
}

type bookQueriesImpl struct {
	store BookReadStore
}

func NewBookQueries(store BookReadStore) BookQueries {
	return &bookQueriesImpl{store: store}
}

func (q *bookQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*BookView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *bookQueriesImpl) Search(ctx context.Context, criteria book.SearchCriteria) (*BookSearchResult, error) {
	criteria = criteria.Normalize()

	items, total, err := q.store.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}

	return &BookSearchResult{
		Items:  items,
		Total:  total,
		Limit:  criteria.Limit,
		Offset: criteria.Offset,
	}, nil
}
