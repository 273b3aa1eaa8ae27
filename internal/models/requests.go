package models

import "github.com/shopspring/decimal"

// BookTicketRequest is the body of POST /tickets/book.
type BookTicketRequest struct {
	EventID    string `json:"eventId"`
	SeatNumber string `json:"seatNumber"`
}

// VenueRequest mirrors the nested venue object of the events API.
type VenueRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// CreateEventRequest is the body of POST /events. Date is an ISO 8601
// calendar date, Time a local clock time like "19:30".
type CreateEventRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Venue       VenueRequest    `json:"venue"`
	Price       decimal.Decimal `json:"price"`
	TotalSeats  int             `json:"totalSeats"`
	Category    string          `json:"category"`
	IsPublic    *bool           `json:"isPublic"`
}

// UpdateEventRequest is the body of PUT /events/{id}. Nil fields are
// left unchanged.
type UpdateEventRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
	Time        *string          `json:"time"`
	Venue       *VenueRequest    `json:"venue"`
	Price       *decimal.Decimal `json:"price"`
	TotalSeats  *int             `json:"totalSeats"`
	Category    *string          `json:"category"`
	Status      *string          `json:"status"`
	IsPublic    *bool            `json:"isPublic"`
}
