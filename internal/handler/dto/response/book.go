package response

import (
	"time"

	"library-rental-api/internal/domain/book"
	"library-rental-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BookResponse struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Genre           string    `json:"genre"`
	Description     *string   `json:"description,omitempty"`
	TotalCopies     int32     `json:"totalCopies"`
	AvailableCopies int32     `json:"availableCopies"`
	Version         int64     `json:"version"`
	PublicationYear *int32    `json:"publicationYear,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type BookSearchResponse struct {
	Items  []*BookResponse `json:"items"`
	Total  int64           `json:"total"`
	Limit  int32           `json:"limit"`
	Offset int32           `json:"offset"`
}

func FromBookView(view *queries.BookView) (*BookResponse, error) {
	var resp BookResponse
	if err := copier.Copy(&resp, view); err != nil {
		return nil, err
	}
	return &resp, nil
}

func FromBookSearchResult(result *queries.BookSearchResult) (*BookSearchResponse, error) {
	items := make([]*BookResponse, len(result.Items))
	for i, view := range result.Items {
		resp, err := FromBookView(view)
		if err != nil {
			return nil, err
		}
		items[i] = resp
	}

	return &BookSearchResponse{
		Items:  items,
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	}, nil
}

func FromBook(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:              b.ID(),
		Title:           b.Title(),
		Author:          b.Author(),
		ISBN:            b.ISBN().Value(),
		Genre:           b.Genre(),
		Description:     b.Description(),
		TotalCopies:     int32(b.TotalCopies()),
		AvailableCopies: int32(b.AvailableCopies()),
		Version:         b.Version(),
		PublicationYear: b.PublicationYear(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}
