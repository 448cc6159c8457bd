package commands

import (
	"context"

	"library-rental-api/internal/domain/book"
	"library-rental-api/internal/infra"
	"library-rental-api/internal/pkg/errs"
	"library-rental-api/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrDuplicateISBN       = errs.New("book with this ISBN already exists")
	ErrBookHasActiveRental = errs.New("book has active rentals and cannot be deleted")
	ErrDomainValidation    = errs.New("domain validation failed")
)

type CreateBookParams struct {
	Title           string
	Author          string
	ISBN            string
	Genre           string
	Description     *string
	TotalCopies     int
	PublicationYear *int32
}

// UpdateBookParams carries partial updates: nil means "leave unchanged".
// Version is the optimistic-lock precondition read by the client.
type UpdateBookParams struct {
	Title           *string
	Author          *string
	ISBN            *string
	Genre           *string
	Description     *string
	TotalCopies     *int
	PublicationYear *int32
	Version         int64
}

type BookCommands interface {
	CreateBook(ctx context.Context, params CreateBookParams) (*book.Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, params UpdateBookParams) (*book.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID, version int64) error
}

type bookCommandsImpl struct {
	uow shared.UnitOfWork
}

func NewBookCommands(uow shared.UnitOfWork) BookCommands {
	return &bookCommandsImpl{uow: uow}
}

func (b *bookCommandsImpl) CreateBook(ctx context.Context, params CreateBookParams) (*book.Book, error) {
	isbn, err := book.NewISBN(params.ISBN)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	newBook, err := book.NewBook(params.Title, params.Author, isbn, params.Genre,
		params.Description, params.TotalCopies, params.PublicationYear)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	err = b.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Books().Create(ctx, newBook)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, ErrDuplicateISBN
		}
		return nil, err
	}

	return newBook, nil
}

// UpdateBook applies a partial update guarded by the version the client read.
// The guard lives in the UPDATE predicate, so a stale version loses cleanly
// even when two admins submit at the same moment.
func (b *bookCommandsImpl) UpdateBook(ctx context.Context, id uuid.UUID, params UpdateBookParams) (*book.Book, error) {
	current, err := b.uow.Books().FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if err := applyBookUpdates(current, params); err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	err = b.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ok, updErr := tx.Books().UpdateWithLock(ctx, current, params.Version)
		if updErr != nil {
			return updErr
		}
		if !ok {
			return ErrOptimisticLockConflict
		}
		return nil
	})
	if err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, ErrDuplicateISBN
		}
		return nil, err
	}

	return b.uow.Books().FindByID(ctx, id)
}

func (b *bookCommandsImpl) DeleteBook(ctx context.Context, id uuid.UUID, version int64) error {
	if _, err := b.uow.Books().FindByID(ctx, id); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	active, err := b.uow.Books().CountActiveRentals(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrBookHasActiveRental
	}

	return b.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ok, delErr := tx.Books().DeleteWithLock(ctx, id, version)
		if delErr != nil {
			return delErr
		}
		if !ok {
			return ErrOptimisticLockConflict
		}
		return nil
	})
}

func applyBookUpdates(target *book.Book, params UpdateBookParams) error {
	if params.Title != nil {
		target.Rename(*params.Title)
	}
	if params.Author != nil {
		target.ChangeAuthor(*params.Author)
	}
	if params.ISBN != nil {
		isbn, err := book.NewISBN(*params.ISBN)
		if err != nil {
			return err
		}
		target.ChangeISBN(isbn)
	}
	if params.Genre != nil {
		target.ChangeGenre(*params.Genre)
	}
	if params.Description != nil {
		target.ChangeDescription(params.Description)
	}
	if params.PublicationYear != nil {
		target.ChangePublicationYear(params.PublicationYear)
	}
	if params.TotalCopies != nil {
		if err := target.ChangeTotalCopies(*params.TotalCopies); err != nil {
			return err
		}
	}
	return nil
}
