//go:build unit

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"library-rental-api/internal/domain/rental"
	"library-rental-api/internal/handler/api"
	"library-rental-api/internal/usecase/commands"
	"library-rental-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type mockRentalCommands struct {
	mock.Mock
}

func (m *mockRentalCommands) RentBook(ctx context.Context, userID, bookID uuid.UUID, rentalDays int) (*rental.Rental, error) {
	args := m.Called(ctx, userID, bookID, rentalDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Rental), args.Error(1)
}

func (m *mockRentalCommands) ReturnBook(ctx context.Context, rentalID, userID uuid.UUID) (*rental.Rental, error) {
	args := m.Called(ctx, rentalID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Rental), args.Error(1)
}

func (m *mockRentalCommands) ExtendRental(ctx context.Context, rentalID, userID uuid.UUID, days int) (*rental.Rental, error) {
	args := m.Called(ctx, rentalID, userID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Rental), args.Error(1)
}

func (m *mockRentalCommands) UpdateReadingProgress(ctx context.Context, rentalID, userID uuid.UUID, progress int) (*rental.Rental, error) {
	args := m.Called(ctx, rentalID, userID, progress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Rental), args.Error(1)
}

type mockRentalQueries struct {
	mock.Mock
}

func (m *mockRentalQueries) GetByID(ctx context.Context, id, userID uuid.UUID) (*queries.RentalView, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.RentalView), args.Error(1)
}

func (m *mockRentalQueries) ListByUser(ctx context.Context, userID uuid.UUID) ([]*queries.RentalListItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*queries.RentalListItem), args.Error(1)
}

type RentalHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCommands *mockRentalCommands
	mockQueries  *mockRentalQueries
	userID       uuid.UUID
}

func (s *RentalHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCommands = new(mockRentalCommands)
	s.mockQueries = new(mockRentalQueries)
	s.userID = uuid.New()
	handler := api.NewRentalHandler(s.mockCommands, s.mockQueries)

	// Mock middleware behavior: inject the authenticated user
	s.router.Use(func(c *gin.Context) {
		c.Set("user_id", s.userID)
	})
	s.router.POST("/rentals", handler.RentBook)
	s.router.GET("/rentals/:id", handler.GetRental)
	s.router.POST("/rentals/:id/return", handler.ReturnBook)
	s.router.PATCH("/rentals/:id/progress", handler.UpdateProgress)
}

func TestRentalHandlerSuite(t *testing.T) {
	suite.Run(t, new(RentalHandlerTestSuite))
}

func (s *RentalHandlerTestSuite) postJSON(url string, body map[string]any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RentalHandlerTestSuite) TestRentBook() {
	bookID := uuid.New()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.Run("success: returns 201 with the rental view", func() {
		ren := rental.NewRental(s.userID, bookID, now, 14)
		view := &queries.RentalView{ID: ren.ID(), UserID: s.userID, BookID: bookID, Status: "active"}

		s.mockCommands.On("RentBook", mock.Anything, s.userID, bookID, 14).Return(ren, nil).Once()
		s.mockQueries.On("GetByID", mock.Anything, ren.ID(), s.userID).Return(view, nil).Once()

		rec := s.postJSON("/rentals", map[string]any{"bookId": bookID.String(), "rentalDays": 14})

		s.Equal(http.StatusCreated, rec.Code)
		s.Contains(rec.Body.String(), ren.ID().String())
		s.mockCommands.AssertExpectations(s.T())
	})

	s.Run("error: 404 when the book does not exist", func() {
		s.mockCommands.On("RentBook", mock.Anything, s.userID, bookID, 14).
			Return(nil, commands.ErrBookNotFound).Once()

		rec := s.postJSON("/rentals", map[string]any{"bookId": bookID.String(), "rentalDays": 14})
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("error: 409 when no copies are available", func() {
		s.mockCommands.On("RentBook", mock.Anything, s.userID, bookID, 14).
			Return(nil, commands.ErrBookNotAvailable).Once()

		rec := s.postJSON("/rentals", map[string]any{"bookId": bookID.String(), "rentalDays": 14})
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("error: 409 on optimistic lock conflict", func() {
		s.mockCommands.On("RentBook", mock.Anything, s.userID, bookID, 14).
			Return(nil, commands.ErrOptimisticLockConflict).Once()

		rec := s.postJSON("/rentals", map[string]any{"bookId": bookID.String(), "rentalDays": 14})
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("error: 400 for malformed body", func() {
		rec := s.postJSON("/rentals", map[string]any{"bookId": "not-a-uuid"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *RentalHandlerTestSuite) TestReturnBook() {
	rentalID := uuid.New()

	s.Run("error: 409 when already returned", func() {
		s.mockCommands.On("ReturnBook", mock.Anything, rentalID, s.userID).
			Return(nil, commands.ErrAlreadyReturned).Once()

		rec := s.postJSON("/rentals/"+rentalID.String()+"/return", map[string]any{})
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("error: 404 for someone else's rental", func() {
		s.mockCommands.On("ReturnBook", mock.Anything, rentalID, s.userID).
			Return(nil, commands.ErrRentalNotFound).Once()

		rec := s.postJSON("/rentals/"+rentalID.String()+"/return", map[string]any{})
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *RentalHandlerTestSuite) TestUpdateProgress() {
	rentalID := uuid.New()

	s.Run("error: 422 for out-of-range progress", func() {
		s.mockCommands.On("UpdateReadingProgress", mock.Anything, rentalID, s.userID, 150).
			Return(nil, commands.ErrInvalidProgress).Once()

		payload, err := json.Marshal(map[string]any{"progress": 150})
		s.Require().NoError(err)
		req := httptest.NewRequest(http.MethodPatch, "/rentals/"+rentalID.String()+"/progress", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})
}

func (s *RentalHandlerTestSuite) TestGetRental() {
	rentalID := uuid.New()

	s.Run("success: returns 200 with the view", func() {
		view := &queries.RentalView{ID: rentalID, UserID: s.userID, Status: "active", IsOverdue: true}
		s.mockQueries.On("GetByID", mock.Anything, rentalID, s.userID).Return(view, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/rentals/"+rentalID.String(), nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"isOverdue":true`)
	})

	s.Run("error: 404 when not found", func() {
		s.mockQueries.On("GetByID", mock.Anything, rentalID, s.userID).
			Return(nil, queries.ErrRentalNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/rentals/"+rentalID.String(), nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusNotFound, rec.Code)
	})
}
