package api

import (
	"errors"
	"net/http"

	reqdto "library-rental-api/internal/handler/dto/request"
	resdto "library-rental-api/internal/handler/dto/response"
	"library-rental-api/internal/handler/middleware"
	"library-rental-api/internal/usecase/commands"
	"library-rental-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RentalHandler struct {
	rentalCommands commands.RentalCommands
	rentalQueries  queries.RentalQueries
}

func NewRentalHandler(rentalCommands commands.RentalCommands, rentalQueries queries.RentalQueries) *RentalHandler {
	return &RentalHandler{
		rentalCommands: rentalCommands,
		rentalQueries:  rentalQueries,
	}
}

// @Summary Rent book
// @Description Rent an available book for the current user
// @Tags rentals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.RentBookRequest true "Rental request"
// @Success 201 {object} resdto.RentalResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /rentals [post]
func (h *RentalHandler) RentBook(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.RentBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	ren, err := h.rentalCommands.RentBook(c.Request.Context(), userID, req.BookID, req.RentalDays)
	if err != nil {
		h.respondRentalError(c, err)
		return
	}

	h.respondWithView(c, http.StatusCreated, ren.ID(), userID)
}

// @Summary Get rental
// @Description Get one of the current user's rentals by ID
// @Tags rentals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Rental ID"
// @Success 200 {object} resdto.RentalResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /rentals/{id} [get]
func (h *RentalHandler) GetRental(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	view, err := h.rentalQueries.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrRentalNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Rental not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	response, err := resdto.FromRentalView(view)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List rentals
// @Description List all rentals of the current user, newest first
// @Tags rentals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.RentalListResponse
// @Failure 401 {object} map[string]string
// @Router /rentals [get]
func (h *RentalHandler) ListRentals(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	items, err := h.rentalQueries.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.RentalListResponse, len(items))
	for i, item := range items {
		resp, convErr := resdto.FromRentalListItem(item)
		if convErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			return
		}
		response[i] = resp
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Return book
// @Description Return a rented book and release its copy
// @Tags rentals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Rental ID"
// @Success 200 {object} resdto.RentalResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /rentals/{id}/return [post]
func (h *RentalHandler) ReturnBook(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ren, err := h.rentalCommands.ReturnBook(c.Request.Context(), id, userID)
	if err != nil {
		h.respondRentalError(c, err)
		return
	}

	h.respondWithView(c, http.StatusOK, ren.ID(), userID)
}

// @Summary Extend rental
// @Description Extend the due date of an active rental
// @Tags rentals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Rental ID"
// @Param request body reqdto.ExtendRentalRequest true "Extension request"
// @Success 200 {object} resdto.RentalResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /rentals/{id}/extend [post]
func (h *RentalHandler) ExtendRental(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req reqdto.ExtendRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	ren, err := h.rentalCommands.ExtendRental(c.Request.Context(), id, userID, req.Days)
	if err != nil {
		h.respondRentalError(c, err)
		return
	}

	h.respondWithView(c, http.StatusOK, ren.ID(), userID)
}

// @Summary Update reading progress
// @Description Update the reading progress of an active rental
// @Tags rentals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Rental ID"
// @Param request body reqdto.UpdateProgressRequest true "Progress update"
// @Success 200 {object} resdto.RentalResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /rentals/{id}/progress [patch]
func (h *RentalHandler) UpdateProgress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req reqdto.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	ren, err := h.rentalCommands.UpdateReadingProgress(c.Request.Context(), id, userID, *req.Progress)
	if err != nil {
		h.respondRentalError(c, err)
		return
	}

	h.respondWithView(c, http.StatusOK, ren.ID(), userID)
}

// respondWithView re-reads the rental through the query side so mutation
// responses carry the same enriched shape as GET.
func (h *RentalHandler) respondWithView(c *gin.Context, status int, rentalID, userID uuid.UUID) {
	view, err := h.rentalQueries.GetByID(c.Request.Context(), rentalID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response, err := resdto.FromRentalView(view)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(status, response)
}

func (h *RentalHandler) respondRentalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrBookNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Book not found",
		})
	case errors.Is(err, commands.ErrRentalNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Rental not found",
		})
	case errors.Is(err, commands.ErrBookNotAvailable):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Book is not available for rent",
		})
	case errors.Is(err, commands.ErrActiveRentalExists):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Active rental already exists for this book",
		})
	case errors.Is(err, commands.ErrAlreadyReturned):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Rental is already returned",
		})
	case errors.Is(err, commands.ErrCannotExtend):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Rental cannot be extended",
		})
	case errors.Is(err, commands.ErrOptimisticLockConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Book was modified concurrently, retry with fresh data",
		})
	case errors.Is(err, commands.ErrInvalidProgress):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Reading progress must be between 0 and 100",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
