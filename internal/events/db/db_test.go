package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ticketly/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	err = bunDB.ResetModel(context.Background(),
		(*models.User)(nil),
		(*models.Event)(nil),
		(*models.Ticket)(nil),
	)
	require.NoError(t, err)

	return New(bunDB)
}

func seedEvent(t *testing.T, d *DB, mutate func(*models.Event)) *models.Event {
	t.Helper()

	event := &models.Event{
		ID:             fmt.Sprintf("ev-%d", time.Now().UnixNano()),
		Title:          "Go Conference",
		Description:    "Talks and workshops",
		Date:           time.Now().AddDate(0, 1, 0),
		Time:           "09:00",
		Venue:          models.Venue{Name: "Main Hall", Address: "1 Main St", City: "Springfield"},
		Price:          decimal.NewFromInt(50),
		TotalSeats:     100,
		AvailableSeats: 100,
		Category:       models.CategoryConference,
		Status:         models.EventUpcoming,
		OrganizerID:    "admin1",
		IsPublic:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if mutate != nil {
		mutate(event)
	}
	require.NoError(t, d.CreateEvent(context.Background(), event))
	return event
}

func TestGetEventByID(t *testing.T) {
	d := setupTestDB(t)
	event := seedEvent(t, d, nil)

	got, err := d.GetEventByID(context.Background(), event.ID)
	require.NoError(t, err)
	require.Equal(t, event.Title, got.Title)
	require.Equal(t, event.Venue, got.Venue)
	require.True(t, got.Price.Equal(event.Price))

	_, err = d.GetEventByID(context.Background(), "missing")
	require.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestListPublicEventsFilters(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	seedEvent(t, d, func(e *models.Event) {
		e.ID = "ev-conf"
		e.Title = "GopherCon"
		e.Category = models.CategoryConference
	})
	seedEvent(t, d, func(e *models.Event) {
		e.ID = "ev-concert"
		e.Title = "Jazz Night"
		e.Category = models.CategoryConcert
	})
	seedEvent(t, d, func(e *models.Event) {
		e.ID = "ev-private"
		e.Title = "Board Meeting"
		e.IsPublic = false
	})

	events, total, err := d.ListPublicEvents(ctx, models.EventFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, events, 2)

	events, total, err = d.ListPublicEvents(ctx, models.EventFilter{
		Page: 1, Limit: 10, Category: string(models.CategoryConcert),
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "ev-concert", events[0].ID)

	// search is case insensitive and covers title, description and venue
	events, total, err = d.ListPublicEvents(ctx, models.EventFilter{
		Page: 1, Limit: 10, Search: "gopher",
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "ev-conf", events[0].ID)
}

func TestListPublicEventsPagination(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		n := i
		seedEvent(t, d, func(e *models.Event) {
			e.ID = fmt.Sprintf("ev-%d", n)
			e.Date = time.Now().AddDate(0, 0, n+1)
		})
	}

	events, total, err := d.ListPublicEvents(ctx, models.EventFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, events, 2)
	require.Equal(t, "ev-0", events[0].ID)

	events, _, err = d.ListPublicEvents(ctx, models.EventFilter{Page: 3, Limit: 2})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "ev-4", events[0].ID)
}

func TestUpdateEventSeatDeltaPreservesSold(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	// 20 of 100 seats sold
	event := seedEvent(t, d, func(e *models.Event) {
		e.AvailableSeats = 80
	})

	event.TotalSeats = 120
	require.NoError(t, d.UpdateEvent(ctx, event, 20))

	got, err := d.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, 120, got.TotalSeats)
	require.Equal(t, 100, got.AvailableSeats)
}

func TestUpdateEventSeatDeltaRejectsOutOfRange(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	// 90 of 100 seats sold; shrinking by 20 would leave -10 available
	event := seedEvent(t, d, func(e *models.Event) {
		e.AvailableSeats = 10
	})

	event.TotalSeats = 80
	err := d.UpdateEvent(ctx, event, -20)
	require.ErrorIs(t, err, models.ErrSeatAdjustment)

	got, err := d.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, 100, got.TotalSeats)
	require.Equal(t, 10, got.AvailableSeats)
}

func TestUpdateEventNotFound(t *testing.T) {
	d := setupTestDB(t)
	event := seedEvent(t, d, nil)
	event.ID = "missing"
	err := d.UpdateEvent(context.Background(), event, 0)
	require.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestDeleteEventGuard(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	event := seedEvent(t, d, nil)

	// a cancelled ticket still blocks deletion
	ticket := &models.Ticket{
		ID:            "tk1",
		EventID:       event.ID,
		UserID:        "user1",
		SeatNumber:    "A1",
		Status:        models.TicketCancelled,
		BookingDate:   time.Now(),
		PaymentID:     "pay_test",
		PaymentStatus: models.PaymentCompleted,
	}
	_, err := d.Bun.NewInsert().Model(ticket).Exec(ctx)
	require.NoError(t, err)

	err = d.DeleteEvent(ctx, event.ID)
	require.ErrorIs(t, err, models.ErrEventHasTickets)

	_, err = d.Bun.NewDelete().Model((*models.Ticket)(nil)).Where("id = ?", ticket.ID).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, d.DeleteEvent(ctx, event.ID))
	_, err = d.GetEventByID(ctx, event.ID)
	require.ErrorIs(t, err, models.ErrEventNotFound)

	err = d.DeleteEvent(ctx, "missing")
	require.ErrorIs(t, err, models.ErrEventNotFound)
}
