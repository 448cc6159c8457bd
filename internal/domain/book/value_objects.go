package book

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidISBN = errors.New("invalid ISBN")

// Matches both ISBN-10 and ISBN-13 after hyphens/spaces are stripped.
var isbnRegex = regexp.MustCompile(`^(?:\d{9}[\dXx]|\d{13})$`)

type ISBN struct {
	value string
}

func NewISBN(s string) (ISBN, error) {
	normalized := strings.NewReplacer("-", "", " ", "").Replace(s)
	if !isbnRegex.MatchString(normalized) {
		return ISBN{}, ErrInvalidISBN
	}
	return ISBN{value: normalized}, nil
}

func (i ISBN) Value() string {
	return i.value
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SearchCriteria narrows and orders catalog queries. Zero values mean
// "no filter"; Normalize fills in paging and sort defaults.
type SearchCriteria struct {
	Title         *string
	Author        *string
	Genre         *string
	AvailableOnly bool
	SortBy        string
	SortDirection SortDirection
	Limit         int32
	Offset        int32
}

var sortableColumns = map[string]struct{}{
	"title":            {},
	"author":           {},
	"genre":            {},
	"publication_year": {},
	"created_at":       {},
}

func (c SearchCriteria) Normalize() SearchCriteria {
	if _, ok := sortableColumns[c.SortBy]; !ok {
		c.SortBy = "title"
	}
	if c.SortDirection != SortDesc {
		c.SortDirection = SortAsc
	}
	if c.Limit <= 0 || c.Limit > 100 {
		c.Limit = 20
	}
	if c.Offset < 0 {
		c.Offset = 0
	}
	return c
}
