package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ticketly/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func New(bunDB *bun.DB) *DB {
	return &DB{Bun: bunDB}
}

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListPublicEvents applies the browse filters and returns one page plus
// the unpaginated total.
func (d *DB) ListPublicEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	events := []models.Event{}

	q := d.Bun.NewSelect().
		Model(&events).
		Where("is_public = ?", true)

	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("LOWER(title) LIKE LOWER(?)", pattern).
				WhereOr("LOWER(description) LIKE LOWER(?)", pattern).
				WhereOr("LOWER(venue_name) LIKE LOWER(?)", pattern)
		})
	}

	total, err := q.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	err = q.Order("date ASC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Scan(ctx)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// UpdateEvent writes the event's fields. A non-zero seatDelta shifts
// available_seats by the same amount as total_seats, preserving the
// sold count; the update is refused when the shift would push
// available_seats below zero or above the new total.
func (d *DB) UpdateEvent(ctx context.Context, event *models.Event, seatDelta int) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().
			Model((*models.Event)(nil)).
			Set("title = ?", event.Title).
			Set("description = ?", event.Description).
			Set("date = ?", event.Date).
			Set("time = ?", event.Time).
			Set("venue_name = ?", event.Venue.Name).
			Set("venue_address = ?", event.Venue.Address).
			Set("venue_city = ?", event.Venue.City).
			Set("price = ?", event.Price).
			Set("category = ?", event.Category).
			Set("status = ?", event.Status).
			Set("is_public = ?", event.IsPublic).
			Set("total_seats = ?", event.TotalSeats).
			Set("updated_at = ?", event.UpdatedAt).
			Where("id = ?", event.ID)

		if seatDelta != 0 {
			q = q.Set("available_seats = available_seats + ?", seatDelta).
				Where("available_seats + ? >= 0", seatDelta).
				Where("available_seats + ? <= ?", seatDelta, event.TotalSeats)
		}

		res, err := q.Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			exists, err := tx.NewSelect().
				Model((*models.Event)(nil)).
				Where("id = ?", event.ID).
				Exists(ctx)
			if err != nil {
				return err
			}
			if !exists {
				return models.ErrEventNotFound
			}
			return models.ErrSeatAdjustment
		}
		return nil
	})
}

// DeleteEvent removes an event unless any ticket, whatever its status,
// still references it.
func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		count, err := tx.NewSelect().
			Model((*models.Ticket)(nil)).
			Where("event_id = ?", id).
			Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return models.ErrEventHasTickets
		}

		res, err := tx.NewDelete().
			Model((*models.Event)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return models.ErrEventNotFound
		}
		return nil
	})
}
