//go:build unit

package book_test

import (
	"testing"

	"library-rental-api/internal/domain/book"
	"library-rental-api/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBook(t *testing.T) {
	t.Run("基本成功ケース", func(t *testing.T) {
		actual, err := builder.NewBookBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, actual.TotalCopies(), actual.AvailableCopies())
		assert.Equal(t, int64(1), actual.Version())
		assert.True(t, actual.IsAvailable())
		assert.Equal(t, 0, actual.RentedCopies())
	})

	t.Run("冊数ゼロはNG", func(t *testing.T) {
		_, err := builder.NewBookBuilder().WithCopies(0, 0).BuildDomain()
		assert.ErrorIs(t, err, book.ErrInvalidCopyCount)
	})
}

func TestReconstructBook(t *testing.T) {
	t.Run("在庫が総数を超えるのはNG", func(t *testing.T) {
		_, err := builder.NewBookBuilder().WithCopies(2, 3).BuildReconstructed()
		assert.ErrorIs(t, err, book.ErrCopyCountExceeded)
	})

	t.Run("負の在庫はNG", func(t *testing.T) {
		_, err := builder.NewBookBuilder().WithCopies(2, -1).BuildReconstructed()
		assert.ErrorIs(t, err, book.ErrNegativeCopies)
	})

	t.Run("バージョン0はNG", func(t *testing.T) {
		_, err := builder.NewBookBuilder().WithVersion(0).BuildReconstructed()
		assert.ErrorIs(t, err, book.ErrInvalidVersion)
	})
}

func TestChangeTotalCopies(t *testing.T) {
	t.Run("増加分はそのまま在庫に乗る", func(t *testing.T) {
		// 5 total, 2 available: 3 rented out
		b, err := builder.NewBookBuilder().WithCopies(5, 2).BuildReconstructed()
		require.NoError(t, err)

		require.NoError(t, b.ChangeTotalCopies(8))
		assert.Equal(t, 8, b.TotalCopies())
		assert.Equal(t, 5, b.AvailableCopies())
		assert.Equal(t, 3, b.RentedCopies())
	})

	t.Run("貸出数を下回る縮小は在庫ゼロに丸める", func(t *testing.T) {
		b, err := builder.NewBookBuilder().WithCopies(5, 2).BuildReconstructed()
		require.NoError(t, err)

		require.NoError(t, b.ChangeTotalCopies(2))
		assert.Equal(t, 2, b.TotalCopies())
		assert.Equal(t, 0, b.AvailableCopies())
		assert.False(t, b.IsAvailable())
	})

	t.Run("1未満への縮小はNG", func(t *testing.T) {
		b, err := builder.NewBookBuilder().BuildReconstructed()
		require.NoError(t, err)

		assert.ErrorIs(t, b.ChangeTotalCopies(0), book.ErrInvalidCopyCount)
	})
}
