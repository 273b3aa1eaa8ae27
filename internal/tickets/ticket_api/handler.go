package ticket_api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ticketly/internal/auth"
	"ticketly/internal/models"
	"ticketly/internal/utils"
)

// LedgerService is the slice of the booking ledger the ticket routes use.
type LedgerService interface {
	Book(ctx context.Context, actor models.Actor, eventID, seatNumber string) (*models.Ticket, error)
	Cancel(ctx context.Context, actor models.Actor, ticketID string) error
	CheckIn(ctx context.Context, actor models.Actor, ticketID string) (*models.Ticket, error)
	GetTicket(ctx context.Context, actor models.Actor, ticketID string) (*models.Ticket, error)
	ListUserTickets(ctx context.Context, actor models.Actor) ([]models.Ticket, error)
	TicketQR(ctx context.Context, actor models.Actor, ticketID string) ([]byte, error)
}

type Handler struct {
	Ledger LedgerService
}

func NewHandler(ledger LedgerService) *Handler {
	return &Handler{Ledger: ledger}
}

// Routes mounts the ticket surface. Every route requires an
// authenticated actor; role checks happen in the ledger.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/book", h.BookTicket)
	r.Get("/my-tickets", h.MyTickets)
	r.Get("/{ticketID}", h.GetTicket)
	r.Get("/{ticketID}/qr", h.TicketQR)
	r.Put("/{ticketID}/check-in", h.CheckInTicket)
	r.Delete("/{ticketID}", h.CancelTicket)
}

func (h *Handler) BookTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("authorization required", "no actor"))
		return
	}

	var req models.BookTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	ticket, err := h.Ledger.Book(r.Context(), actor, req.EventID, req.SeatNumber)
	if err != nil {
		utils.RenderError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("ticket booked", ticket))
}

func (h *Handler) MyTickets(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("authorization required", "no actor"))
		return
	}

	tickets, err := h.Ledger.ListUserTickets(r.Context(), actor)
	if err != nil {
		utils.RenderError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("tickets", tickets))
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("authorization required", "no actor"))
		return
	}

	ticket, err := h.Ledger.GetTicket(r.Context(), actor, chi.URLParam(r, "ticketID"))
	if err != nil {
		utils.RenderError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ticket", ticket))
}

func (h *Handler) TicketQR(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("authorization required", "no actor"))
		return
	}

	png, err := h.Ledger.TicketQR(r.Context(), actor, chi.URLParam(r, "ticketID"))
	if err != nil {
		utils.RenderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) CheckInTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("authorization required", "no actor"))
		return
	}

	ticket, err := h.Ledger.CheckIn(r.Context(), actor, chi.URLParam(r, "ticketID"))
	if err != nil {
		utils.RenderError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ticket checked in", ticket))
}

func (h *Handler) CancelTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("authorization required", "no actor"))
		return
	}

	if err := h.Ledger.Cancel(r.Context(), actor, chi.URLParam(r, "ticketID")); err != nil {
		utils.RenderError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket cancelled successfully", nil))
}
