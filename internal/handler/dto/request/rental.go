package request

import (
	"github.com/google/uuid"
)

type RentBookRequest struct {
	BookID uuid.UUID `json:"bookId" binding:"required"`
	// RentalDays falls back to the default loan period when omitted
	RentalDays int `json:"rentalDays" binding:"omitempty,min=1,max=90"`
}

type ExtendRentalRequest struct {
	Days int `json:"days" binding:"required,min=1,max=90"`
}

// Progress is a pointer so that an explicit 0 survives binding.
type UpdateProgressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}
