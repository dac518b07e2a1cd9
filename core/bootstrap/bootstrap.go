// Package bootstrap brings up the infrastructure a bot needs before it can
// accept updates: logging, the database pool, the schema and seed data.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/bookingbot/core/config"
	coredatabase "github.com/m3rciful/bookingbot/core/database"
	"github.com/m3rciful/bookingbot/core/logger"
)

// Options control the bootstrap pipeline. Nil hooks fall back to the core
// implementations.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	Seeders  []Seeder

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *sqlx.DB
	// Seeded maps seeder names to the number of rows they inserted.
	Seeded map[string]int
}

func (o *Options) defaults() {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
}

// Run executes logger init, connect, migrate and every seeder in order. The
// pool is closed again when any later stage fails.
func Run(ctx context.Context, opts Options) (res *Result, err error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	opts.defaults()

	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init: %w", err)
	}

	res = &Result{Seeded: make(map[string]int, len(opts.Seeders))}
	if res.DB, err = opts.Connect(opts.Database); err != nil {
		return nil, fmt.Errorf("bootstrap: database: %w", err)
	}
	defer func() {
		if err != nil {
			_ = res.DB.Close()
			res = nil
		}
	}()

	if err := opts.Migrate(opts.Database); err != nil {
		return nil, fmt.Errorf("bootstrap: migrations: %w", err)
	}
	for _, s := range opts.Seeders {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("bootstrap: before seeder %s: %w", s.Name(), err)
		}
		n, err := runSeeder(ctx, s, res.DB)
		if err != nil {
			return nil, err
		}
		res.Seeded[s.Name()] = n
	}
	return res, nil
}

func runSeeder(ctx context.Context, s Seeder, db *sqlx.DB) (int, error) {
	began := time.Now()
	n, err := s.Seed(ctx, db)
	attrs := []slog.Attr{
		slog.String("seeder", s.Name()),
		slog.Duration("duration", logger.Took(began)),
	}
	if err != nil {
		logger.LogEvent(ctx, logger.SEED, slog.LevelError, "db.seed",
			append(attrs, slog.String("status", logger.Status(err)), slog.String("err", err.Error()))...)
		return 0, fmt.Errorf("bootstrap: seeder %s: %w", s.Name(), err)
	}
	logger.LogEvent(ctx, logger.SEED, slog.LevelInfo, "db.seed",
		append(attrs, slog.String("status", logger.Status(nil)), slog.Int("count", n))...)
	return n, nil
}
