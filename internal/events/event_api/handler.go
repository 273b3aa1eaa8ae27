package event_api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ticketly/internal/auth"
	"ticketly/internal/models"
	"ticketly/internal/utils"
)

type EventService interface {
	List(ctx context.Context, filter models.EventFilter) (*models.EventPage, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, actor models.Actor, req models.CreateEventRequest) (*models.Event, error)
	Update(ctx context.Context, actor models.Actor, id string, req models.UpdateEventRequest) (*models.Event, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

type Handler struct {
	Events EventService
}

func NewHandler(events EventService) *Handler {
	return &Handler{Events: events}
}

// PublicRoutes mounts the unauthenticated browse surface.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Get("/", h.ListEvents)
	r.Get("/{eventID}", h.GetEvent)
}

// AdminRoutes mounts the authenticated administrative surface.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Post("/", h.CreateEvent)
	r.Put("/{eventID}", h.UpdateEvent)
	r.Delete("/{eventID}", h.DeleteEvent)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.EventFilter{
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Search:   q.Get("search"),
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	page, err := h.Events.List(r.Context(), filter)
	if err != nil {
		utils.RenderError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("events", page))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.Events.Get(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		utils.RenderError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("event", event))
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("authorization required", "no actor"))
		return
	}

	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	event, err := h.Events.Create(r.Context(), actor, req)
	if err != nil {
		utils.RenderError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("event created", event))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("authorization required", "no actor"))
		return
	}

	var req models.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	event, err := h.Events.Update(r.Context(), actor, chi.URLParam(r, "eventID"), req)
	if err != nil {
		utils.RenderError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("event updated", event))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("authorization required", "no actor"))
		return
	}

	if err := h.Events.Delete(r.Context(), actor, chi.URLParam(r, "eventID")); err != nil {
		utils.RenderError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event deleted successfully", nil))
}
