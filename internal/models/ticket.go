package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type TicketStatus string

const (
	TicketActive    TicketStatus = "active"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
	TicketRefunded  TicketStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID            string          `bun:"id,pk" json:"id"`
	EventID       string          `bun:"event_id,notnull" json:"eventId"`
	UserID        string          `bun:"user_id,notnull" json:"userId"`
	SeatNumber    string          `bun:"seat_number,notnull" json:"seatNumber"`
	Price         decimal.Decimal `bun:"price,notnull" json:"price"`
	QRCode        string          `bun:"qr_code,notnull" json:"qrCode"`
	Status        TicketStatus    `bun:"status,notnull" json:"status"`
	BookingDate   time.Time       `bun:"booking_date,notnull" json:"bookingDate"`
	CheckInTime   *time.Time      `bun:"check_in_time" json:"checkInTime,omitempty"`
	PaymentID     string          `bun:"payment_id,notnull" json:"paymentId"`
	PaymentStatus PaymentStatus   `bun:"payment_status,notnull" json:"paymentStatus"`
}
