package ledger

import (
	"context"
	"fmt"
	"time"

	"ticketly/internal/kafka"
	"ticketly/internal/logger"
	"ticketly/internal/models"
	"ticketly/internal/monitoring"
	"ticketly/internal/tickets/qr"
	"ticketly/internal/utils"
)

// DBLayer is the transactional storage the ledger drives. Every method
// that touches seat inventory is atomic: the ticket row and the event's
// available_seats counter commit or fail together.
type DBLayer interface {
	BookSeat(ctx context.Context, ticket *models.Ticket) error
	CancelTicket(ctx context.Context, ticketID string) (*models.Ticket, error)
	CheckInTicket(ctx context.Context, ticketID string, now time.Time) (*models.Ticket, error)
	GetTicketByID(ctx context.Context, ticketID string) (*models.Ticket, error)
	GetTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error)
}

// EventLock serializes bookings per event. Correctness does not depend
// on it (the storage transaction does that); it keeps contending callers
// from burning transaction retries on hot events.
type EventLock interface {
	Acquire(ctx context.Context, eventID, token string) error
	Release(ctx context.Context, eventID, token string) error
}

// Service is the booking ledger: it owns every ticket lifecycle
// transition and the event seat accounting they imply.
type Service struct {
	DB     DBLayer
	Lock   EventLock
	Kafka  kafka.Publisher
	QR     *qr.Generator
	Logger *logger.Logger
}

func NewService(db DBLayer, lock EventLock, publisher kafka.Publisher, qrGen *qr.Generator, log *logger.Logger) *Service {
	if lock == nil {
		lock = NewLocalLock()
	}
	if publisher == nil {
		publisher = kafka.NoopPublisher{}
	}
	return &Service{DB: db, Lock: lock, Kafka: publisher, QR: qrGen, Logger: log}
}

// Book claims a seat on an event for the acting user and returns the
// created ticket. Payment is simulated and always succeeds.
func (s *Service) Book(ctx context.Context, actor models.Actor, eventID, seatNumber string) (*models.Ticket, error) {
	start := time.Now()

	verr := &models.ValidationError{}
	if eventID == "" {
		verr.Add("eventId", "Valid event ID is required")
	}
	if seatNumber == "" {
		verr.Add("seatNumber", "Seat number is required")
	}
	if verr.HasErrors() {
		monitoring.RecordBooking("invalid")
		return nil, verr
	}

	now := time.Now()
	ticket := &models.Ticket{
		ID:            utils.NewID(),
		EventID:       eventID,
		UserID:        actor.ID,
		SeatNumber:    seatNumber,
		Status:        models.TicketActive,
		BookingDate:   now,
		PaymentID:     utils.GeneratePaymentID(),
		PaymentStatus: models.PaymentCompleted,
	}

	token, err := s.QR.Sign(qr.Payload{
		TicketID:   ticket.ID,
		EventID:    eventID,
		UserID:     actor.ID,
		SeatNumber: seatNumber,
		IssuedAt:   now,
	})
	if err != nil {
		monitoring.RecordBooking("error")
		return nil, fmt.Errorf("failed to generate QR: %w", err)
	}
	ticket.QRCode = token

	if err := s.Lock.Acquire(ctx, eventID, ticket.ID); err != nil {
		monitoring.RecordBooking("error")
		return nil, fmt.Errorf("event lock: %w", err)
	}
	defer func() {
		_ = s.Lock.Release(ctx, eventID, ticket.ID)
	}()

	if err := s.DB.BookSeat(ctx, ticket); err != nil {
		monitoring.RecordBooking("rejected")
		return nil, err
	}

	monitoring.RecordBooking("success")
	monitoring.ObserveBookingDuration(time.Since(start).Seconds())
	s.logBooking("BOOK", ticket.ID, fmt.Sprintf("seat %s on event %s for user %s", seatNumber, eventID, actor.ID))

	if err := s.Kafka.PublishTicketBooked(ctx, *ticket); err != nil {
		s.logKafkaError("ticket.booked", err)
	}

	return ticket, nil
}

// Cancel releases a ticket's seat back to the event. Only the holder or
// an admin may cancel, and only while the ticket is still active.
func (s *Service) Cancel(ctx context.Context, actor models.Actor, ticketID string) error {
	ticket, err := s.DB.GetTicketByID(ctx, ticketID)
	if err != nil {
		monitoring.RecordCancellation("rejected")
		return err
	}
	if ticket.UserID != actor.ID && !actor.IsAdmin() {
		monitoring.RecordCancellation("forbidden")
		return models.ErrForbidden
	}

	cancelled, err := s.DB.CancelTicket(ctx, ticketID)
	if err != nil {
		monitoring.RecordCancellation("rejected")
		return err
	}

	monitoring.RecordCancellation("success")
	s.logBooking("CANCEL", ticketID, fmt.Sprintf("seat %s released on event %s", cancelled.SeatNumber, cancelled.EventID))

	if err := s.Kafka.PublishTicketCancelled(ctx, *cancelled); err != nil {
		s.logKafkaError("ticket.cancelled", err)
	}
	return nil
}

// CheckIn marks a ticket as used at the gate. Admin only. The seat stays
// occupied afterwards.
func (s *Service) CheckIn(ctx context.Context, actor models.Actor, ticketID string) (*models.Ticket, error) {
	if !actor.IsAdmin() {
		monitoring.RecordCheckin("forbidden")
		return nil, models.ErrForbidden
	}

	ticket, err := s.DB.CheckInTicket(ctx, ticketID, time.Now())
	if err != nil {
		monitoring.RecordCheckin("rejected")
		return nil, err
	}

	monitoring.RecordCheckin("success")
	s.logBooking("CHECKIN", ticketID, fmt.Sprintf("seat %s on event %s", ticket.SeatNumber, ticket.EventID))

	if err := s.Kafka.PublishTicketCheckedIn(ctx, *ticket); err != nil {
		s.logKafkaError("ticket.checked_in", err)
	}
	return ticket, nil
}

// GetTicket returns a single ticket to its holder or an admin.
func (s *Service) GetTicket(ctx context.Context, actor models.Actor, ticketID string) (*models.Ticket, error) {
	ticket, err := s.DB.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != actor.ID && !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}
	return ticket, nil
}

// ListUserTickets returns the acting user's tickets, newest first.
func (s *Service) ListUserTickets(ctx context.Context, actor models.Actor) ([]models.Ticket, error) {
	return s.DB.GetTicketsByUser(ctx, actor.ID)
}

// TicketQR re-validates the stored QR token and renders it as a PNG.
func (s *Service) TicketQR(ctx context.Context, actor models.Actor, ticketID string) ([]byte, error) {
	ticket, err := s.GetTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if _, err := s.QR.Verify(ticket.QRCode); err != nil {
		return nil, err
	}
	return qr.EncodePNG(ticket.QRCode)
}

func (s *Service) logBooking(action, ticketID, message string) {
	if s.Logger != nil {
		s.Logger.LogBooking(action, ticketID, message)
	}
}

func (s *Service) logKafkaError(topic string, err error) {
	if s.Logger != nil {
		s.Logger.LogKafka("PUBLISH", topic, "failed: "+err.Error())
	}
}
