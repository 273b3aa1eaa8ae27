package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ticketly/internal/models"
	"ticketly/internal/tickets/qr"
)

// mockDB mirrors the storage guarantees in memory: a single mutex makes
// each operation atomic, the way the SQL transactions do.
type mockDB struct {
	mu             sync.Mutex
	availableSeats map[string]int
	tickets        map[string]*models.Ticket
	seats          map[string]string // eventID+seat -> ticketID
}

func newMockDB() *mockDB {
	return &mockDB{
		availableSeats: make(map[string]int),
		tickets:        make(map[string]*models.Ticket),
		seats:          make(map[string]string),
	}
}

func (m *mockDB) addEvent(eventID string, seats int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.availableSeats[eventID] = seats
}

func (m *mockDB) BookSeat(_ context.Context, ticket *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seats, ok := m.availableSeats[ticket.EventID]
	if !ok {
		return models.ErrEventNotFound
	}
	seatKey := ticket.EventID + "/" + ticket.SeatNumber
	if _, taken := m.seats[seatKey]; taken {
		return models.ErrSeatTaken
	}
	if seats <= 0 {
		return models.ErrNoSeatsAvailable
	}

	m.availableSeats[ticket.EventID] = seats - 1
	m.seats[seatKey] = ticket.ID
	stored := *ticket
	m.tickets[ticket.ID] = &stored
	return nil
}

func (m *mockDB) CancelTicket(_ context.Context, ticketID string) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.tickets[ticketID]
	if !ok {
		return nil, models.ErrTicketNotFound
	}
	switch ticket.Status {
	case models.TicketUsed:
		return nil, models.ErrTicketUsed
	case models.TicketCancelled:
		return nil, models.ErrTicketNotActive
	}
	ticket.Status = models.TicketCancelled
	m.availableSeats[ticket.EventID]++
	copied := *ticket
	return &copied, nil
}

func (m *mockDB) CheckInTicket(_ context.Context, ticketID string, now time.Time) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.tickets[ticketID]
	if !ok {
		return nil, models.ErrTicketNotFound
	}
	switch ticket.Status {
	case models.TicketUsed:
		return nil, models.ErrAlreadyCheckedIn
	case models.TicketCancelled:
		return nil, models.ErrTicketCancelled
	}
	ticket.Status = models.TicketUsed
	ticket.CheckInTime = &now
	copied := *ticket
	return &copied, nil
}

func (m *mockDB) GetTicketByID(_ context.Context, ticketID string) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.tickets[ticketID]
	if !ok {
		return nil, models.ErrTicketNotFound
	}
	copied := *ticket
	return &copied, nil
}

func (m *mockDB) GetTicketsByUser(_ context.Context, userID string) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tickets := []models.Ticket{}
	for _, ticket := range m.tickets {
		if ticket.UserID == userID {
			tickets = append(tickets, *ticket)
		}
	}
	return tickets, nil
}

func newTestService(db *mockDB) *Service {
	return NewService(db, nil, nil, qr.NewGenerator("test-secret"), nil)
}

var (
	user  = models.Actor{ID: "user1", Role: models.RoleUser}
	other = models.Actor{ID: "user2", Role: models.RoleUser}
	admin = models.Actor{ID: "admin1", Role: models.RoleAdmin}
)

func TestBookValidation(t *testing.T) {
	svc := newTestService(newMockDB())
	ctx := context.Background()

	_, err := svc.Book(ctx, user, "", "")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)

	_, err = svc.Book(ctx, user, "ev1", "")
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	require.Equal(t, "seatNumber", verr.Fields[0].Field)
}

func TestBookCreatesSignedTicket(t *testing.T) {
	db := newMockDB()
	db.addEvent("ev1", 10)
	svc := newTestService(db)

	ticket, err := svc.Book(context.Background(), user, "ev1", "A1")
	require.NoError(t, err)
	require.NotEmpty(t, ticket.ID)
	require.Equal(t, models.TicketActive, ticket.Status)
	require.Equal(t, models.PaymentCompleted, ticket.PaymentStatus)
	require.NotEmpty(t, ticket.PaymentID)

	payload, err := svc.QR.Verify(ticket.QRCode)
	require.NoError(t, err)
	require.Equal(t, ticket.ID, payload.TicketID)
	require.Equal(t, "ev1", payload.EventID)
	require.Equal(t, user.ID, payload.UserID)
	require.Equal(t, "A1", payload.SeatNumber)
}

func TestBookUnknownEvent(t *testing.T) {
	svc := newTestService(newMockDB())
	_, err := svc.Book(context.Background(), user, "missing", "A1")
	require.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestConcurrentBookingNeverOversells(t *testing.T) {
	const seats = 10
	const attempts = 50

	db := newMockDB()
	db.addEvent("ev1", seats)
	svc := newTestService(db)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			actor := models.Actor{ID: fmt.Sprintf("user%d", n), Role: models.RoleUser}
			_, err := svc.Book(context.Background(), actor, "ev1", fmt.Sprintf("S%d", n))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, models.ErrNoSeatsAvailable)
		}
	}
	require.Equal(t, seats, succeeded)
	require.Equal(t, 0, db.availableSeats["ev1"])
	require.Len(t, db.tickets, seats)
}

func TestConcurrentSameSeatSingleWinner(t *testing.T) {
	const attempts = 20

	db := newMockDB()
	db.addEvent("ev1", 100)
	svc := newTestService(db)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			actor := models.Actor{ID: fmt.Sprintf("user%d", n), Role: models.RoleUser}
			_, err := svc.Book(context.Background(), actor, "ev1", "A1")
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, models.ErrSeatTaken)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 99, db.availableSeats["ev1"])
}

func TestCancelAuthorization(t *testing.T) {
	db := newMockDB()
	db.addEvent("ev1", 10)
	svc := newTestService(db)
	ctx := context.Background()

	ticket, err := svc.Book(ctx, user, "ev1", "A1")
	require.NoError(t, err)

	err = svc.Cancel(ctx, other, ticket.ID)
	require.ErrorIs(t, err, models.ErrForbidden)

	require.NoError(t, svc.Cancel(ctx, user, ticket.ID))
	require.Equal(t, 10, db.availableSeats["ev1"])

	// admins may cancel on behalf of any holder
	adminTicket, err := svc.Book(ctx, other, "ev1", "A2")
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, admin, adminTicket.ID))

	err = svc.Cancel(ctx, user, "missing")
	require.ErrorIs(t, err, models.ErrTicketNotFound)
}

func TestCheckInAdminOnly(t *testing.T) {
	db := newMockDB()
	db.addEvent("ev1", 10)
	svc := newTestService(db)
	ctx := context.Background()

	ticket, err := svc.Book(ctx, user, "ev1", "A1")
	require.NoError(t, err)

	// even the holder cannot check in their own ticket
	_, err = svc.CheckIn(ctx, user, ticket.ID)
	require.ErrorIs(t, err, models.ErrForbidden)

	checkedIn, err := svc.CheckIn(ctx, admin, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, models.TicketUsed, checkedIn.Status)
	require.NotNil(t, checkedIn.CheckInTime)

	_, err = svc.CheckIn(ctx, admin, ticket.ID)
	require.ErrorIs(t, err, models.ErrAlreadyCheckedIn)
}

func TestGetTicketAuthorization(t *testing.T) {
	db := newMockDB()
	db.addEvent("ev1", 10)
	svc := newTestService(db)
	ctx := context.Background()

	ticket, err := svc.Book(ctx, user, "ev1", "A1")
	require.NoError(t, err)

	got, err := svc.GetTicket(ctx, user, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, ticket.ID, got.ID)

	_, err = svc.GetTicket(ctx, other, ticket.ID)
	require.ErrorIs(t, err, models.ErrForbidden)

	got, err = svc.GetTicket(ctx, admin, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, ticket.ID, got.ID)
}

func TestListUserTickets(t *testing.T) {
	db := newMockDB()
	db.addEvent("ev1", 10)
	svc := newTestService(db)
	ctx := context.Background()

	_, err := svc.Book(ctx, user, "ev1", "A1")
	require.NoError(t, err)
	_, err = svc.Book(ctx, user, "ev1", "A2")
	require.NoError(t, err)
	_, err = svc.Book(ctx, other, "ev1", "A3")
	require.NoError(t, err)

	tickets, err := svc.ListUserTickets(ctx, user)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
}

func TestTicketQR(t *testing.T) {
	db := newMockDB()
	db.addEvent("ev1", 10)
	svc := newTestService(db)
	ctx := context.Background()

	ticket, err := svc.Book(ctx, user, "ev1", "A1")
	require.NoError(t, err)

	png, err := svc.TicketQR(ctx, user, ticket.ID)
	require.NoError(t, err)
	require.NotEmpty(t, png)

	_, err = svc.TicketQR(ctx, other, ticket.ID)
	require.ErrorIs(t, err, models.ErrForbidden)

	// a tampered stored token is rejected before rendering
	db.mu.Lock()
	db.tickets[ticket.ID].QRCode = "tampered.token"
	db.mu.Unlock()
	_, err = svc.TicketQR(ctx, user, ticket.ID)
	require.ErrorIs(t, err, qr.ErrInvalidToken)
}

func TestLocalLockSerializesPerEvent(t *testing.T) {
	lock := NewLocalLock()
	ctx := context.Background()

	require.NoError(t, lock.Acquire(ctx, "ev1", "t1"))

	// a different event is independent
	require.NoError(t, lock.Acquire(ctx, "ev2", "t2"))
	require.NoError(t, lock.Release(ctx, "ev2", "t2"))

	blocked := make(chan struct{})
	go func() {
		_ = lock.Acquire(ctx, "ev1", "t3")
		close(blocked)
	}()

	select {
	case <-blocked:
		t.Fatal("second acquire should block until release")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, lock.Release(ctx, "ev1", "t1"))
	select {
	case <-blocked:
	case <-time.After(time.Second):
		t.Fatal("acquire did not proceed after release")
	}
	require.NoError(t, lock.Release(ctx, "ev1", "t3"))
}
