//go:build unit

package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"library-rental-api/internal/domain/rental"
	"library-rental-api/internal/infra"
	"library-rental-api/internal/pkg/clock"
	"library-rental-api/internal/pkg/config"
	"library-rental-api/internal/usecase/commands"
	"library-rental-api/tests/common/builder"
	"library-rental-api/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupRentalCommands(t *testing.T) (*fake.UnitOfWork, *clock.MockClock, commands.RentalCommands) {
	t.Helper()
	uow := fake.NewUnitOfWork()
	mockClock := clock.NewMockClock(baseTime)
	return uow, mockClock, commands.NewRentalCommands(uow, mockClock, config.NewTestConfig().Rental)
}

func seedBook(t *testing.T, uow *fake.UnitOfWork, b *builder.BookBuilder) uuid.UUID {
	t.Helper()
	entity, err := b.BuildReconstructed()
	require.NoError(t, err)
	require.NoError(t, uow.Books().Create(context.Background(), entity))
	return entity.ID()
}

func TestRentBook(t *testing.T) {
	ctx := context.Background()

	t.Run("貸出成功で在庫が減りバージョンが進む", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder().WithCopies(3, 3))
		userID := uuid.New()

		ren, err := cmds.RentBook(ctx, userID, bookID, 14)
		require.NoError(t, err)
		require.NotNil(t, ren)

		assert.Equal(t, rental.StatusActive, ren.Status())
		assert.Equal(t, baseTime, ren.Period().RentedAt())
		assert.Equal(t, baseTime.AddDate(0, 0, 14), ren.Period().DueDate())
		assert.Equal(t, 0, ren.Progress().Value())
		assert.Equal(t, 0, ren.ExtensionCount())

		stored, err := uow.Books().FindByID(ctx, bookID)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.AvailableCopies())
		assert.Equal(t, int64(2), stored.Version())
	})

	t.Run("日数未指定はデフォルト貸出期間", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder())

		ren, err := cmds.RentBook(ctx, uuid.New(), bookID, 0)
		require.NoError(t, err)
		assert.Equal(t, baseTime.AddDate(0, 0, rental.DefaultDays), ren.Period().DueDate())
	})

	t.Run("デフォルト貸出期間は設定から決まる", func(t *testing.T) {
		uow := fake.NewUnitOfWork()
		cmds := commands.NewRentalCommands(uow, clock.NewMockClock(baseTime),
			config.RentalConfig{DefaultDays: 21, MaxDays: 90})
		bookID := seedBook(t, uow, builder.NewBookBuilder())

		ren, err := cmds.RentBook(ctx, uuid.New(), bookID, 0)
		require.NoError(t, err)
		assert.Equal(t, baseTime.AddDate(0, 0, 21), ren.Period().DueDate())
	})

	t.Run("上限を超える日数は上限に丸める", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder())

		ren, err := cmds.RentBook(ctx, uuid.New(), bookID, 365)
		require.NoError(t, err)
		assert.Equal(t, baseTime.AddDate(0, 0, 90), ren.Period().DueDate())
	})

	t.Run("存在しない本は貸出不可", func(t *testing.T) {
		_, _, cmds := setupRentalCommands(t)

		_, err := cmds.RentBook(ctx, uuid.New(), uuid.New(), 14)
		assert.ErrorIs(t, err, commands.ErrBookNotFound)
	})

	t.Run("スナップショット読取の障害は404扱いにしない", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder())
		dbErr := infra.WrapRepoErr("connection reset", errors.New("conn reset"), infra.KindDBFailure)
		uow.FailBookReadsWith(dbErr)

		_, err := cmds.RentBook(ctx, uuid.New(), bookID, 14)
		require.Error(t, err)
		assert.NotErrorIs(t, err, commands.ErrBookNotFound)
	})

	t.Run("在庫ゼロは貸出不可", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder().WithCopies(2, 0))

		_, err := cmds.RentBook(ctx, uuid.New(), bookID, 14)
		assert.ErrorIs(t, err, commands.ErrBookNotAvailable)
	})

	t.Run("同一書籍の重複貸出は不可", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder().WithCopies(3, 3))
		userID := uuid.New()

		_, err := cmds.RentBook(ctx, userID, bookID, 14)
		require.NoError(t, err)

		_, err = cmds.RentBook(ctx, userID, bookID, 14)
		assert.ErrorIs(t, err, commands.ErrActiveRentalExists)
	})

	t.Run("返却後は同じ本を再度借りられる", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder().WithCopies(1, 1))
		userID := uuid.New()

		ren, err := cmds.RentBook(ctx, userID, bookID, 14)
		require.NoError(t, err)
		_, err = cmds.ReturnBook(ctx, ren.ID(), userID)
		require.NoError(t, err)

		_, err = cmds.RentBook(ctx, userID, bookID, 14)
		assert.NoError(t, err)
	})

	t.Run("最後の1冊を同時に借りると片方だけ成功する", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder().WithCopies(1, 1))

		var wg sync.WaitGroup
		results := make([]error, 2)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = cmds.RentBook(ctx, uuid.New(), bookID, 14)
			}(i)
		}
		wg.Wait()

		// The loser fails either on the version guard or, if its snapshot read
		// landed after the winner committed, on the availability precheck.
		var succeeded, lost int
		for _, err := range results {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, commands.ErrOptimisticLockConflict),
				errors.Is(err, commands.ErrBookNotAvailable):
				lost++
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, lost)

		stored, err := uow.Books().FindByID(ctx, bookID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.AvailableCopies())
	})
}

func TestReturnBook(t *testing.T) {
	ctx := context.Background()

	t.Run("返却で在庫が戻り進捗100で完了する", func(t *testing.T) {
		uow, mockClock, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder().WithCopies(3, 3))
		userID := uuid.New()

		ren, err := cmds.RentBook(ctx, userID, bookID, 14)
		require.NoError(t, err)

		mockClock.Add(48 * time.Hour)
		returned, err := cmds.ReturnBook(ctx, ren.ID(), userID)
		require.NoError(t, err)

		assert.Equal(t, rental.StatusCompleted, returned.Status())
		require.NotNil(t, returned.Period().ReturnedAt())
		assert.Equal(t, baseTime.Add(48*time.Hour), *returned.Period().ReturnedAt())
		assert.Equal(t, 100, returned.Progress().Value())

		stored, err := uow.Books().FindByID(ctx, bookID)
		require.NoError(t, err)
		assert.Equal(t, 3, stored.AvailableCopies())
	})

	t.Run("貸出から返却でバージョンが2進む", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder().WithCopies(2, 2))
		userID := uuid.New()

		ren, err := cmds.RentBook(ctx, userID, bookID, 14)
		require.NoError(t, err)
		_, err = cmds.ReturnBook(ctx, ren.ID(), userID)
		require.NoError(t, err)

		stored, err := uow.Books().FindByID(ctx, bookID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stored.Version())
		assert.Equal(t, 2, stored.AvailableCopies())
	})

	t.Run("二重返却は不可", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder())
		userID := uuid.New()

		ren, err := cmds.RentBook(ctx, userID, bookID, 14)
		require.NoError(t, err)
		_, err = cmds.ReturnBook(ctx, ren.ID(), userID)
		require.NoError(t, err)

		_, err = cmds.ReturnBook(ctx, ren.ID(), userID)
		assert.ErrorIs(t, err, commands.ErrAlreadyReturned)
	})

	t.Run("他人の貸出は見えない", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder())
		userID := uuid.New()

		ren, err := cmds.RentBook(ctx, userID, bookID, 14)
		require.NoError(t, err)

		_, err = cmds.ReturnBook(ctx, ren.ID(), uuid.New())
		assert.ErrorIs(t, err, commands.ErrRentalNotFound)
	})
}

func TestExtendRental(t *testing.T) {
	ctx := context.Background()

	t.Run("延長で期限が延びて回数が進む", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder())
		userID := uuid.New()

		ren, err := cmds.RentBook(ctx, userID, bookID, 14)
		require.NoError(t, err)

		extended, err := cmds.ExtendRental(ctx, ren.ID(), userID, 7)
		require.NoError(t, err)
		assert.Equal(t, baseTime.AddDate(0, 0, 21), extended.Period().DueDate())
		assert.Equal(t, 1, extended.ExtensionCount())
	})

	t.Run("延長は5回まで", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder())
		userID := uuid.New()

		ren, err := cmds.RentBook(ctx, userID, bookID, 14)
		require.NoError(t, err)

		for i := 0; i < rental.MaxExtensions; i++ {
			_, err = cmds.ExtendRental(ctx, ren.ID(), userID, 7)
			require.NoError(t, err)
		}

		_, err = cmds.ExtendRental(ctx, ren.ID(), userID, 7)
		assert.ErrorIs(t, err, commands.ErrCannotExtend)
	})

	t.Run("期限切れの貸出は延長不可", func(t *testing.T) {
		uow, mockClock, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder())
		userID := uuid.New()

		ren, err := cmds.RentBook(ctx, userID, bookID, 7)
		require.NoError(t, err)

		mockClock.Set(baseTime.AddDate(0, 0, 8))
		_, err = cmds.ExtendRental(ctx, ren.ID(), userID, 7)
		assert.ErrorIs(t, err, commands.ErrCannotExtend)
	})

	t.Run("返却済みは延長不可", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder())
		userID := uuid.New()

		ren, err := cmds.RentBook(ctx, userID, bookID, 14)
		require.NoError(t, err)
		_, err = cmds.ReturnBook(ctx, ren.ID(), userID)
		require.NoError(t, err)

		_, err = cmds.ExtendRental(ctx, ren.ID(), userID, 7)
		assert.ErrorIs(t, err, commands.ErrCannotExtend)
	})
}

func TestUpdateReadingProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("進捗は0から100まで更新できる", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder())
		userID := uuid.New()

		ren, err := cmds.RentBook(ctx, userID, bookID, 14)
		require.NoError(t, err)

		for _, progress := range []int{0, 42, 100} {
			updated, updateErr := cmds.UpdateReadingProgress(ctx, ren.ID(), userID, progress)
			require.NoError(t, updateErr)
			assert.Equal(t, progress, updated.Progress().Value())
		}
	})

	t.Run("範囲外の進捗はストレージに触れず拒否する", func(t *testing.T) {
		_, _, cmds := setupRentalCommands(t)

		// Rental ID does not even exist: validation must fire first
		_, err := cmds.UpdateReadingProgress(ctx, uuid.New(), uuid.New(), 101)
		assert.ErrorIs(t, err, commands.ErrInvalidProgress)

		_, err = cmds.UpdateReadingProgress(ctx, uuid.New(), uuid.New(), -1)
		assert.ErrorIs(t, err, commands.ErrInvalidProgress)
	})

	t.Run("返却済みの進捗更新は不可", func(t *testing.T) {
		uow, _, cmds := setupRentalCommands(t)
		bookID := seedBook(t, uow, builder.NewBookBuilder())
		userID := uuid.New()

		ren, err := cmds.RentBook(ctx, userID, bookID, 14)
		require.NoError(t, err)
		_, err = cmds.ReturnBook(ctx, ren.ID(), userID)
		require.NoError(t, err)

		_, err = cmds.UpdateReadingProgress(ctx, ren.ID(), userID, 50)
		assert.ErrorIs(t, err, commands.ErrAlreadyReturned)
	})
}
