package events

import (
	"context"
	"fmt"
	"time"

	"ticketly/internal/logger"
	"ticketly/internal/models"
	"ticketly/internal/utils"
)

// EventDBLayer is the persistence surface of the event administration
// module. UpdateEvent and DeleteEvent carry the seat-accounting rules.
type EventDBLayer interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	ListPublicEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	UpdateEvent(ctx context.Context, event *models.Event, seatDelta int) error
	DeleteEvent(ctx context.Context, id string) error
}

type Service struct {
	DB     EventDBLayer
	Logger *logger.Logger
}

func NewService(db EventDBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

// List returns one page of public events.
func (s *Service) List(ctx context.Context, filter models.EventFilter) (*models.EventPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	events, total, err := s.DB.ListPublicEvents(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := total / filter.Limit
	if total%filter.Limit != 0 {
		totalPages++
	}

	return &models.EventPage{
		Events:      events,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: filter.Page,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, id)
}

// Create publishes a new event. Admin only. Available seats start equal
// to the total.
func (s *Service) Create(ctx context.Context, actor models.Actor, req models.CreateEventRequest) (*models.Event, error) {
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}

	verr := &models.ValidationError{}
	if req.Title == "" {
		verr.Add("title", "Title is required")
	}
	if req.Description == "" {
		verr.Add("description", "Description is required")
	}
	date, err := parseEventDate(req.Date)
	if err != nil {
		verr.Add("date", "Valid date is required")
	}
	if req.Time == "" {
		verr.Add("time", "Time is required")
	}
	if req.Venue.Name == "" {
		verr.Add("venue.name", "Venue name is required")
	}
	if req.Venue.Address == "" {
		verr.Add("venue.address", "Venue address is required")
	}
	if req.Venue.City == "" {
		verr.Add("venue.city", "Venue city is required")
	}
	if req.Price.IsNegative() {
		verr.Add("price", "Price must be non-negative")
	}
	if req.TotalSeats < 1 {
		verr.Add("totalSeats", "Total seats must be at least 1")
	}
	if !models.EventCategory(req.Category).Valid() {
		verr.Add("category", "Invalid category")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	now := time.Now()
	event := &models.Event{
		ID:          utils.NewID(),
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Time:        req.Time,
		Venue: models.Venue{
			Name:    req.Venue.Name,
			Address: req.Venue.Address,
			City:    req.Venue.City,
		},
		Price:          req.Price,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		Category:       models.EventCategory(req.Category),
		Status:         models.EventUpcoming,
		OrganizerID:    actor.ID,
		IsPublic:       isPublic,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.LogDatabase("INSERT", "events", fmt.Sprintf("event %s created with %d seats", event.ID, event.TotalSeats))
	}
	return event, nil
}

// Update edits an event. Admin only. A totalSeats change shifts
// availableSeats by the same delta so the sold count is preserved.
func (s *Service) Update(ctx context.Context, actor models.Actor, id string, req models.UpdateEventRequest) (*models.Event, error) {
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}

	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &models.ValidationError{}
	if req.Title != nil {
		if *req.Title == "" {
			verr.Add("title", "Title cannot be empty")
		}
		event.Title = *req.Title
	}
	if req.Description != nil {
		if *req.Description == "" {
			verr.Add("description", "Description cannot be empty")
		}
		event.Description = *req.Description
	}
	if req.Date != nil {
		date, err := parseEventDate(*req.Date)
		if err != nil {
			verr.Add("date", "Valid date is required")
		}
		event.Date = date
	}
	if req.Time != nil {
		if *req.Time == "" {
			verr.Add("time", "Time cannot be empty")
		}
		event.Time = *req.Time
	}
	if req.Venue != nil {
		event.Venue = models.Venue{
			Name:    req.Venue.Name,
			Address: req.Venue.Address,
			City:    req.Venue.City,
		}
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			verr.Add("price", "Price must be non-negative")
		}
		event.Price = *req.Price
	}
	if req.Category != nil {
		if !models.EventCategory(*req.Category).Valid() {
			verr.Add("category", "Invalid category")
		}
		event.Category = models.EventCategory(*req.Category)
	}
	if req.Status != nil {
		if !models.EventStatus(*req.Status).Valid() {
			verr.Add("status", "Invalid status")
		}
		event.Status = models.EventStatus(*req.Status)
	}
	if req.IsPublic != nil {
		event.IsPublic = *req.IsPublic
	}

	seatDelta := 0
	if req.TotalSeats != nil {
		if *req.TotalSeats < 1 {
			verr.Add("totalSeats", "Total seats must be at least 1")
		} else {
			seatDelta = *req.TotalSeats - event.TotalSeats
			event.TotalSeats = *req.TotalSeats
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	event.UpdatedAt = time.Now()
	if err := s.DB.UpdateEvent(ctx, event, seatDelta); err != nil {
		return nil, err
	}
	event.AvailableSeats += seatDelta

	if s.Logger != nil && seatDelta != 0 {
		s.Logger.LogDatabase("UPDATE", "events", fmt.Sprintf("event %s seats adjusted by %+d", event.ID, seatDelta))
	}
	return event, nil
}

// Delete removes an event. Admin only; refused while tickets exist.
func (s *Service) Delete(ctx context.Context, actor models.Actor, id string) error {
	if !actor.IsAdmin() {
		return models.ErrForbidden
	}
	return s.DB.DeleteEvent(ctx, id)
}

func parseEventDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
