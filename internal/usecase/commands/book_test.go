//go:build unit

package commands_test

import (
	"context"
	"testing"

	"library-rental-api/internal/pkg/clock"
	"library-rental-api/internal/pkg/config"
	"library-rental-api/internal/usecase/commands"
	"library-rental-api/tests/common/builder"
	"library-rental-api/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBookCommands(t *testing.T) (*fake.UnitOfWork, commands.BookCommands) {
	t.Helper()
	uow := fake.NewUnitOfWork()
	return uow, commands.NewBookCommands(uow)
}

func TestCreateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("登録直後は全冊貸出可能でバージョン1", func(t *testing.T) {
		_, cmds := setupBookCommands(t)

		created, err := cmds.CreateBook(ctx, commands.CreateBookParams{
			Title:       "The Go Programming Language",
			Author:      "Alan Donovan",
			ISBN:        "978-0-13-419044-0",
			Genre:       "software",
			TotalCopies: 5,
		})
		require.NoError(t, err)

		assert.Equal(t, 5, created.TotalCopies())
		assert.Equal(t, 5, created.AvailableCopies())
		assert.Equal(t, int64(1), created.Version())
		// Hyphens are stripped on normalization
		assert.Equal(t, "9780134190440", created.ISBN().Value())
	})

	t.Run("不正なISBNは拒否", func(t *testing.T) {
		_, cmds := setupBookCommands(t)

		_, err := cmds.CreateBook(ctx, commands.CreateBookParams{
			Title:       "Bad ISBN",
			Author:      "Nobody",
			ISBN:        "not-an-isbn",
			Genre:       "software",
			TotalCopies: 1,
		})
		assert.ErrorIs(t, err, commands.ErrDomainValidation)
	})

	t.Run("冊数ゼロは拒否", func(t *testing.T) {
		_, cmds := setupBookCommands(t)

		_, err := cmds.CreateBook(ctx, commands.CreateBookParams{
			Title:       "Zero Copies",
			Author:      "Nobody",
			ISBN:        "9780132350884",
			Genre:       "software",
			TotalCopies: 0,
		})
		assert.ErrorIs(t, err, commands.ErrDomainValidation)
	})

	t.Run("ISBN重複は拒否", func(t *testing.T) {
		_, cmds := setupBookCommands(t)

		params := commands.CreateBookParams{
			Title:       "Clean Code",
			Author:      "Robert C. Martin",
			ISBN:        "9780132350884",
			Genre:       "software",
			TotalCopies: 1,
		}
		_, err := cmds.CreateBook(ctx, params)
		require.NoError(t, err)

		params.Title = "Clean Code (2nd print)"
		_, err = cmds.CreateBook(ctx, params)
		assert.ErrorIs(t, err, commands.ErrDuplicateISBN)
	})
}

func TestUpdateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("正しいバージョンで更新できる", func(t *testing.T) {
		uow, cmds := setupBookCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder())

		newTitle := "Clean Code (2nd Edition)"
		updated, err := cmds.UpdateBook(ctx, bookID, commands.UpdateBookParams{
			Title:   &newTitle,
			Version: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, newTitle, updated.Title())
		assert.Equal(t, int64(2), updated.Version())
	})

	t.Run("古いバージョンでは更新できない", func(t *testing.T) {
		uow, cmds := setupBookCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder())

		titleA := "First Writer Wins"
		_, err := cmds.UpdateBook(ctx, bookID, commands.UpdateBookParams{Title: &titleA, Version: 1})
		require.NoError(t, err)

		titleB := "Second Writer Loses"
		_, err = cmds.UpdateBook(ctx, bookID, commands.UpdateBookParams{Title: &titleB, Version: 1})
		assert.ErrorIs(t, err, commands.ErrOptimisticLockConflict)

		current, err := uow.Books().FindByID(ctx, bookID)
		require.NoError(t, err)
		assert.Equal(t, titleA, current.Title())
	})

	t.Run("総冊数の変更は貸出中の冊数を保つ", func(t *testing.T) {
		// 5 copies, 3 rented out (available 2)
		uow, cmds := setupBookCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder().WithCopies(5, 2))

		newTotal := 10
		updated, err := cmds.UpdateBook(ctx, bookID, commands.UpdateBookParams{
			TotalCopies: &newTotal,
			Version:     1,
		})
		require.NoError(t, err)
		assert.Equal(t, 10, updated.TotalCopies())
		assert.Equal(t, 7, updated.AvailableCopies())
	})

	t.Run("貸出数を下回る縮小は在庫ゼロに丸める", func(t *testing.T) {
		uow, cmds := setupBookCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder().WithCopies(5, 2))

		newTotal := 2 // 3 copies are out
		updated, err := cmds.UpdateBook(ctx, bookID, commands.UpdateBookParams{
			TotalCopies: &newTotal,
			Version:     1,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.TotalCopies())
		assert.Equal(t, 0, updated.AvailableCopies())
	})

	t.Run("存在しない本は更新できない", func(t *testing.T) {
		_, cmds := setupBookCommands(t)

		title := "Ghost"
		_, err := cmds.UpdateBook(ctx, uuid.New(), commands.UpdateBookParams{Title: &title, Version: 1})
		assert.ErrorIs(t, err, commands.ErrBookNotFound)
	})
}

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()

	t.Run("貸出がなければ削除できる", func(t *testing.T) {
		uow, cmds := setupBookCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder())

		err := cmds.DeleteBook(ctx, bookID, 1)
		require.NoError(t, err)

		_, err = uow.Books().FindByID(ctx, bookID)
		assert.Error(t, err)
	})

	t.Run("貸出中の本は削除できない", func(t *testing.T) {
		uow, cmds := setupBookCommands(t)
		mockClock := clock.NewMockClock(baseTime)
		bookID := seedBook(t, uow, builder.NewBookBuilder().WithCopies(3, 3))

		rentalCmds := commands.NewRentalCommands(uow, mockClock, config.NewTestConfig().Rental)
		_, err := rentalCmds.RentBook(ctx, uuid.New(), bookID, 14)
		require.NoError(t, err)

		err = cmds.DeleteBook(ctx, bookID, 2)
		assert.ErrorIs(t, err, commands.ErrBookHasActiveRental)
	})

	t.Run("古いバージョンでは削除できない", func(t *testing.T) {
		uow, cmds := setupBookCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder().WithVersion(3))

		err := cmds.DeleteBook(ctx, bookID, 1)
		assert.ErrorIs(t, err, commands.ErrOptimisticLockConflict)
	})
}
