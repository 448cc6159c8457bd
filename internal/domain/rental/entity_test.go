//go:build unit

package rental_test

import (
	"testing"
	"time"

	"library-rental-api/internal/domain/rental"
	"library-rental-api/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNewRental(t *testing.T) {
	t.Run("基本成功ケース", func(t *testing.T) {
		userID, bookID := uuid.New(), uuid.New()
		actual := rental.NewRental(userID, bookID, now, 7)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, userID, actual.UserID())
		assert.Equal(t, bookID, actual.BookID())
		assert.Equal(t, rental.StatusActive, actual.Status())
		assert.Equal(t, now, actual.Period().RentedAt())
		assert.Equal(t, now.AddDate(0, 0, 7), actual.Period().DueDate())
		assert.Nil(t, actual.Period().ReturnedAt())
		assert.Equal(t, 0, actual.Progress().Value())
		assert.Equal(t, 0, actual.ExtensionCount())
	})

	t.Run("日数ゼロ以下はデフォルト期間", func(t *testing.T) {
		actual := rental.NewRental(uuid.New(), uuid.New(), now, 0)
		assert.Equal(t, now.AddDate(0, 0, rental.DefaultDays), actual.Period().DueDate())

		actual = rental.NewRental(uuid.New(), uuid.New(), now, -3)
		assert.Equal(t, now.AddDate(0, 0, rental.DefaultDays), actual.Period().DueDate())
	})
}

func TestRentalReturn(t *testing.T) {
	t.Run("返却で完了し進捗100になる", func(t *testing.T) {
		ren := rental.NewRental(uuid.New(), uuid.New(), now, 14)

		returnedAt := now.AddDate(0, 0, 3)
		require.NoError(t, ren.Return(returnedAt))

		assert.Equal(t, rental.StatusCompleted, ren.Status())
		require.NotNil(t, ren.Period().ReturnedAt())
		assert.Equal(t, returnedAt, *ren.Period().ReturnedAt())
		assert.True(t, ren.Progress().IsComplete())
		assert.False(t, ren.IsActive())
	})

	t.Run("二重返却はNG", func(t *testing.T) {
		ren := rental.NewRental(uuid.New(), uuid.New(), now, 14)
		require.NoError(t, ren.Return(now))

		assert.ErrorIs(t, ren.Return(now), rental.ErrAlreadyReturned)
	})

	t.Run("期限後の返却でも完了できる", func(t *testing.T) {
		ren := rental.NewRental(uuid.New(), uuid.New(), now, 7)

		lateReturn := now.AddDate(0, 0, 30)
		require.NoError(t, ren.Return(lateReturn))
		assert.Equal(t, rental.StatusCompleted, ren.Status())
		// Returned rentals are never overdue
		assert.False(t, ren.IsOverdue(lateReturn))
	})
}

func TestRentalExtend(t *testing.T) {
	t.Run("延長で期限が進む", func(t *testing.T) {
		ren := rental.NewRental(uuid.New(), uuid.New(), now, 14)

		require.NoError(t, ren.Extend(now, 7))
		assert.Equal(t, now.AddDate(0, 0, 21), ren.Period().DueDate())
		assert.Equal(t, 1, ren.ExtensionCount())
	})

	t.Run("日数ゼロ以下はデフォルト期間で延長", func(t *testing.T) {
		ren := rental.NewRental(uuid.New(), uuid.New(), now, 14)

		require.NoError(t, ren.Extend(now, 0))
		assert.Equal(t, now.AddDate(0, 0, 14+rental.DefaultDays), ren.Period().DueDate())
	})

	t.Run("上限回数を超える延長はNG", func(t *testing.T) {
		ren, err := builder.NewRentalBuilder().
			WithPeriod(now, now.AddDate(0, 0, 14)).
			WithExtensionCount(rental.MaxExtensions).
			BuildDomain()
		require.NoError(t, err)

		assert.False(t, ren.CanExtend(now))
		assert.ErrorIs(t, ren.Extend(now, 7), rental.ErrCannotExtend)
	})

	t.Run("期限切れの延長はNG", func(t *testing.T) {
		ren := rental.NewRental(uuid.New(), uuid.New(), now, 7)

		afterDue := now.AddDate(0, 0, 8)
		assert.True(t, ren.IsOverdue(afterDue))
		assert.ErrorIs(t, ren.Extend(afterDue, 7), rental.ErrCannotExtend)
	})

	t.Run("返却済みの延長はNG", func(t *testing.T) {
		ren := rental.NewRental(uuid.New(), uuid.New(), now, 14)
		require.NoError(t, ren.Return(now))

		assert.ErrorIs(t, ren.Extend(now, 7), rental.ErrCannotExtend)
	})
}

func TestRentalUpdateProgress(t *testing.T) {
	t.Run("進捗を更新できる", func(t *testing.T) {
		ren := rental.NewRental(uuid.New(), uuid.New(), now, 14)

		progress, err := rental.NewReadingProgress(42)
		require.NoError(t, err)
		require.NoError(t, ren.UpdateProgress(progress))
		assert.Equal(t, 42, ren.Progress().Value())
	})

	t.Run("返却済みの進捗更新はNG", func(t *testing.T) {
		ren := rental.NewRental(uuid.New(), uuid.New(), now, 14)
		require.NoError(t, ren.Return(now))

		progress, err := rental.NewReadingProgress(50)
		require.NoError(t, err)
		assert.ErrorIs(t, ren.UpdateProgress(progress), rental.ErrAlreadyReturned)
	})
}
