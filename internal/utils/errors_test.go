package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"ticketly/internal/models"
)

func render(t *testing.T, err error) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	RenderError(rec, err)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestRenderErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{models.ErrEventNotFound, http.StatusNotFound},
		{models.ErrTicketNotFound, http.StatusNotFound},
		{models.ErrForbidden, http.StatusForbidden},
		{models.ErrSeatTaken, http.StatusBadRequest},
		{models.ErrNoSeatsAvailable, http.StatusBadRequest},
		{models.ErrTicketUsed, http.StatusBadRequest},
		{models.ErrTicketNotActive, http.StatusBadRequest},
		{models.ErrAlreadyCheckedIn, http.StatusBadRequest},
		{models.ErrTicketCancelled, http.StatusBadRequest},
		{models.ErrEventHasTickets, http.StatusBadRequest},
		{models.ErrSeatAdjustment, http.StatusBadRequest},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec, resp := render(t, tc.err)
		require.Equal(t, tc.code, rec.Code, "error %v", tc.err)
		require.False(t, resp.Success)
	}
}

func TestRenderErrorWrappedSentinel(t *testing.T) {
	// a plain string match is not enough, the sentinel must be in the chain
	rec, _ := render(t, errors.New("outer: "+models.ErrSeatTaken.Error()))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	rec, resp := render(t, fmt.Errorf("booking: %w", models.ErrSeatTaken))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, resp.Message, models.ErrSeatTaken.Error())
}

func TestRenderErrorValidation(t *testing.T) {
	verr := &models.ValidationError{}
	verr.Add("eventId", "Valid event ID is required")
	verr.Add("seatNumber", "Seat number is required")

	rec, resp := render(t, verr)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation failed", resp.Message)
	require.NotNil(t, resp.Errors)
}

func TestGeneratePaymentID(t *testing.T) {
	a := GeneratePaymentID()
	b := GeneratePaymentID()
	require.Regexp(t, `^pay_\d+_\d{6}$`, a)
	require.NotEqual(t, a, b)
}

func TestNewID(t *testing.T) {
	a := NewID()
	require.Len(t, a, 36)
	require.NotEqual(t, a, NewID())
}
