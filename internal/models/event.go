package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type EventCategory string

const (
	CategoryConference EventCategory = "conference"
	CategoryWorkshop   EventCategory = "workshop"
	CategorySeminar    EventCategory = "seminar"
	CategoryConcert    EventCategory = "concert"
	CategorySports     EventCategory = "sports"
	CategoryExhibition EventCategory = "exhibition"
	CategoryOther      EventCategory = "other"
)

func (c EventCategory) Valid() bool {
	switch c {
	case CategoryConference, CategoryWorkshop, CategorySeminar,
		CategoryConcert, CategorySports, CategoryExhibition, CategoryOther:
		return true
	}
	return false
}

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventActive    EventStatus = "active"
	EventClosed    EventStatus = "closed"
	EventCancelled EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventUpcoming, EventActive, EventClosed, EventCancelled:
		return true
	}
	return false
}

type Venue struct {
	Name    string `bun:"name" json:"name"`
	Address string `bun:"address" json:"address"`
	City    string `bun:"city" json:"city"`
}

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID             string          `bun:"id,pk" json:"id"`
	Title          string          `bun:"title,notnull" json:"title"`
	Description    string          `bun:"description" json:"description"`
	Date           time.Time       `bun:"date,notnull" json:"date"`
	Time           string          `bun:"time,notnull" json:"time"`
	Venue          Venue           `bun:"embed:venue_" json:"venue"`
	Price          decimal.Decimal `bun:"price,notnull" json:"price"`
	TotalSeats     int             `bun:"total_seats,notnull" json:"totalSeats"`
	AvailableSeats int             `bun:"available_seats,notnull" json:"availableSeats"`
	Category       EventCategory   `bun:"category,notnull" json:"category"`
	Status         EventStatus     `bun:"status,notnull" json:"status"`
	OrganizerID    string          `bun:"organizer_id,notnull" json:"organizerId"`
	IsPublic       bool            `bun:"is_public" json:"isPublic"`
	CreatedAt      time.Time       `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt      time.Time       `bun:"updated_at,notnull" json:"updatedAt"`
}

// EventPage is the paginated listing envelope returned by the events API.
type EventPage struct {
	Events      []Event `json:"events"`
	Total       int     `json:"total"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
}

// EventFilter narrows the public event listing.
type EventFilter struct {
	Category string
	Status   string
	Search   string
	Page     int
	Limit    int
}
