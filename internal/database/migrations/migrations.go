package migrations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/uptrace/bun"

	"ticketly/internal/models"
	"ticketly/internal/utils"
)

// Options configures the migration runner.
type Options struct {
	// MigrationsDir holds versioned SQL migrations. When it exists the
	// runner goes through golang-migrate; otherwise the schema is
	// bootstrapped straight from the bun models.
	MigrationsDir string
	// SeedAdmin creates the default admin account when the users table
	// is empty.
	SeedAdmin  bool
	AdminEmail string
}

func DefaultOptions() Options {
	return Options{
		MigrationsDir: "./migrations",
		SeedAdmin:     true,
		AdminEmail:    "admin@ticketly.local",
	}
}

// Runner applies the database schema on startup.
type Runner struct {
	bunDB   *bun.DB
	options Options
}

func NewRunner(bunDB *bun.DB, opts Options) *Runner {
	return &Runner{bunDB: bunDB, options: opts}
}

func (r *Runner) Run(ctx context.Context) error {
	if info, err := os.Stat(r.options.MigrationsDir); err == nil && info.IsDir() {
		if err := r.runVersioned(); err != nil {
			return err
		}
	} else {
		if err := r.Bootstrap(ctx); err != nil {
			return err
		}
	}

	if r.options.SeedAdmin {
		return r.seedAdmin(ctx)
	}
	return nil
}

func (r *Runner) runVersioned() error {
	driver, err := postgres.WithInstance(r.bunDB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+r.options.MigrationsDir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migration setup: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}

// Bootstrap creates the schema from the bun models. The unique
// (event_id, seat_number) index is the storage-level seat claim: a
// cancelled ticket keeps its row, so its seat number stays unavailable.
func (r *Runner) Bootstrap(ctx context.Context) error {
	for _, model := range []interface{}{
		(*models.User)(nil),
		(*models.Event)(nil),
		(*models.Ticket)(nil),
	} {
		if _, err := r.bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	_, err := r.bunDB.NewCreateIndex().
		Model((*models.Ticket)(nil)).
		IfNotExists().
		Index("tickets_event_seat_key").
		Unique().
		Column("event_id", "seat_number").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create seat index: %w", err)
	}
	return nil
}

func (r *Runner) seedAdmin(ctx context.Context) error {
	exists, err := r.bunDB.NewSelect().
		Model((*models.User)(nil)).
		Where("role = ?", models.RoleAdmin).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	admin := &models.User{
		ID:        utils.NewID(),
		Email:     r.options.AdminEmail,
		FullName:  "Administrator",
		Role:      models.RoleAdmin,
		CreatedAt: time.Now(),
	}
	_, err = r.bunDB.NewInsert().Model(admin).Exec(ctx)
	return err
}
