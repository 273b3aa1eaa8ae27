package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"ticketly/internal/models"
)

// DB owns every seat-inventory-affecting mutation. Each operation runs
// in a single transaction so the ticket row and the event's seat counter
// commit or fail together.
type DB struct {
	Bun *bun.DB
}

func New(bunDB *bun.DB) *DB {
	return &DB{Bun: bunDB}
}

// BookSeat atomically claims a seat for the given ticket. The ticket's
// Price is snapshotted from the event row inside the transaction. The
// seat decrement is a conditional update, and the unique
// (event_id, seat_number) index backstops the duplicate-seat check, so
// two concurrent bookings can never both succeed.
func (d *DB) BookSeat(ctx context.Context, ticket *models.Ticket) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var event models.Event
		err := tx.NewSelect().
			Model(&event).
			Where("id = ?", ticket.EventID).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrEventNotFound
		}
		if err != nil {
			return err
		}

		// The seat-taken check applies to every ticket status: a
		// cancelled seat record keeps its claim on the number.
		taken, err := tx.NewSelect().
			Model((*models.Ticket)(nil)).
			Where("event_id = ? AND seat_number = ?", ticket.EventID, ticket.SeatNumber).
			Exists(ctx)
		if err != nil {
			return err
		}
		if taken {
			return models.ErrSeatTaken
		}

		res, err := tx.NewUpdate().
			Model((*models.Event)(nil)).
			Set("available_seats = available_seats - 1").
			Where("id = ? AND available_seats > 0", ticket.EventID).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return models.ErrNoSeatsAvailable
		}

		ticket.Price = event.Price
		if _, err := tx.NewInsert().Model(ticket).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return models.ErrSeatTaken
			}
			return err
		}
		return nil
	})
}

// CancelTicket moves an active ticket to cancelled and releases its seat
// back to the event's inventory. The status transition is a conditional
// update, so a concurrent check-in and cancel cannot both win.
func (d *DB) CancelTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	var cancelled models.Ticket
	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Ticket)(nil)).
			Set("status = ?", models.TicketCancelled).
			Where("id = ? AND status = ?", ticketID, models.TicketActive).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return d.classifyCancelFailure(ctx, tx, ticketID)
		}

		if err := tx.NewSelect().Model(&cancelled).Where("id = ?", ticketID).Scan(ctx); err != nil {
			return err
		}

		_, err = tx.NewUpdate().
			Model((*models.Event)(nil)).
			Set("available_seats = available_seats + 1").
			Where("id = ?", cancelled.EventID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &cancelled, nil
}

func (d *DB) classifyCancelFailure(ctx context.Context, tx bun.Tx, ticketID string) error {
	var ticket models.Ticket
	err := tx.NewSelect().Model(&ticket).Where("id = ?", ticketID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrTicketNotFound
	}
	if err != nil {
		return err
	}
	if ticket.Status == models.TicketUsed {
		return models.ErrTicketUsed
	}
	return models.ErrTicketNotActive
}

// CheckInTicket marks an active ticket as used. The seat stays occupied,
// so the event's counter is untouched.
func (d *DB) CheckInTicket(ctx context.Context, ticketID string, now time.Time) (*models.Ticket, error) {
	var checkedIn models.Ticket
	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Ticket)(nil)).
			Set("status = ?", models.TicketUsed).
			Set("check_in_time = ?", now).
			Where("id = ? AND status = ?", ticketID, models.TicketActive).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return d.classifyCheckInFailure(ctx, tx, ticketID)
		}
		return tx.NewSelect().Model(&checkedIn).Where("id = ?", ticketID).Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &checkedIn, nil
}

func (d *DB) classifyCheckInFailure(ctx context.Context, tx bun.Tx, ticketID string) error {
	var ticket models.Ticket
	err := tx.NewSelect().Model(&ticket).Where("id = ?", ticketID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrTicketNotFound
	}
	if err != nil {
		return err
	}
	switch ticket.Status {
	case models.TicketUsed:
		return models.ErrAlreadyCheckedIn
	case models.TicketCancelled:
		return models.ErrTicketCancelled
	default:
		return models.ErrTicketNotActive
	}
}

func (d *DB) GetTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (d *DB) GetTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("user_id = ?", userID).
		Order("booking_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// CountOccupiedSeats reports how many seats of an event are claimed by
// active or used tickets.
func (d *DB) CountOccupiedSeats(ctx context.Context, eventID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("event_id = ?", eventID).
		Where("status IN (?)", bun.In([]models.TicketStatus{models.TicketActive, models.TicketUsed})).
		Count(ctx)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	// sqlite (tests) has no typed error for this
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
