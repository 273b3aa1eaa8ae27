package utils

import (
	"errors"
	"net/http"

	"ticketly/internal/models"
)

// RenderError maps a domain error onto an HTTP status and writes the
// standard response envelope.
func RenderError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		WriteJSON(w, http.StatusBadRequest, ValidationErrorResponse("validation failed", verr.Fields))
		return
	}

	status := http.StatusInternalServerError
	message := "server error"

	switch {
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrTicketNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	// State-conflict failures surface as 400, not 409. Existing clients
	// depend on that.
	case errors.Is(err, models.ErrSeatTaken),
		errors.Is(err, models.ErrNoSeatsAvailable),
		errors.Is(err, models.ErrTicketUsed),
		errors.Is(err, models.ErrTicketNotActive),
		errors.Is(err, models.ErrAlreadyCheckedIn),
		errors.Is(err, models.ErrTicketCancelled),
		errors.Is(err, models.ErrEventHasTickets),
		errors.Is(err, models.ErrSeatAdjustment):
		status = http.StatusBadRequest
		message = err.Error()
	}

	WriteJSON(w, status, ErrorResponse(message, err.Error()))
}
