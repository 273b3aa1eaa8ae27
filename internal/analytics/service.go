package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"ticketly/internal/models"
)

// Service aggregates sales and inventory data for the admin dashboard.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// Dashboard is the admin overview payload.
type Dashboard struct {
	TotalEvents      int              `json:"totalEvents"`
	TotalTicketsSold int              `json:"totalTicketsSold"`
	TotalRevenue     decimal.Decimal  `json:"totalRevenue"`
	TotalAttendees   int              `json:"totalAttendees"`
	RecentEvents     []models.Event   `json:"recentEvents"`
	UpcomingEvents   []models.Event   `json:"upcomingEvents"`
	EventsByStatus   []StatusCount    `json:"eventsByStatus"`
	RevenueByMonth   []MonthlyRevenue `json:"revenueByMonth"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type MonthlyRevenue struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// GetDashboard assembles the dashboard. Cancelled tickets are excluded
// from sold counts and revenue.
func (s *Service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	dashboard := &Dashboard{
		TotalRevenue: decimal.Zero,
	}

	totalEvents, err := s.db.NewSelect().Model((*models.Event)(nil)).Count(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.TotalEvents = totalEvents

	sold, err := s.db.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("status != ?", models.TicketCancelled).
		Count(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.TotalTicketsSold = sold

	attendees, err := s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("role = ?", models.RoleUser).
		Count(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.TotalAttendees = attendees

	recent := []models.Event{}
	err = s.db.NewSelect().
		Model(&recent).
		Order("created_at DESC").
		Limit(5).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.RecentEvents = recent

	upcoming := []models.Event{}
	err = s.db.NewSelect().
		Model(&upcoming).
		Where("date >= ?", time.Now()).
		Where("status = ?", models.EventUpcoming).
		Order("date ASC").
		Limit(5).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.UpcomingEvents = upcoming

	byStatus, err := s.eventsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.EventsByStatus = byStatus

	revenue, byMonth, err := s.revenue(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.TotalRevenue = revenue
	dashboard.RevenueByMonth = byMonth

	return dashboard, nil
}

func (s *Service) eventsByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := s.db.NewSelect().
		Model((*models.Event)(nil)).
		ColumnExpr("status AS status").
		ColumnExpr("COUNT(*) AS count").
		Group("status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Status < rows[j].Status })
	return rows, nil
}

// revenue sums ticket prices for non-cancelled tickets and buckets the
// trailing six months by booking date. The monthly grouping is done in
// Go so the query stays dialect-neutral.
func (s *Service) revenue(ctx context.Context) (decimal.Decimal, []MonthlyRevenue, error) {
	var tickets []models.Ticket
	err := s.db.NewSelect().
		Model(&tickets).
		Column("price", "booking_date").
		Where("status != ?", models.TicketCancelled).
		Scan(ctx)
	if err != nil {
		return decimal.Zero, nil, err
	}

	total := decimal.Zero
	cutoff := time.Now().AddDate(0, -6, 0)
	buckets := make(map[[2]int]decimal.Decimal)

	for _, t := range tickets {
		total = total.Add(t.Price)
		if t.BookingDate.Before(cutoff) {
			continue
		}
		key := [2]int{t.BookingDate.Year(), int(t.BookingDate.Month())}
		buckets[key] = buckets[key].Add(t.Price)
	}

	byMonth := make([]MonthlyRevenue, 0, len(buckets))
	for key, rev := range buckets {
		byMonth = append(byMonth, MonthlyRevenue{Year: key[0], Month: key[1], Revenue: rev})
	}
	sort.Slice(byMonth, func(i, j int) bool {
		if byMonth[i].Year != byMonth[j].Year {
			return byMonth[i].Year < byMonth[j].Year
		}
		return byMonth[i].Month < byMonth[j].Month
	})

	return total, byMonth, nil
}
