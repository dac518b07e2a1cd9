package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/bookingbot/core/logger"
)

const (
	connectTimeout  = 5 * time.Second
	readyPollEvery  = 2 * time.Second
	connMaxIdleTime = 5 * time.Minute
	connMaxLifetime = 30 * time.Minute
)

// Connect opens a pooled connection and pings it once before returning.
func Connect(cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	began := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	attrs := []slog.Attr{
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
		slog.Duration("duration", logger.RoundMS(time.Since(began))),
	}
	if err != nil {
		logger.LogEvent(ctx, logger.DB, slog.LevelError, "db.connect",
			append(attrs, slog.String("err", err.Error()))...)
		return nil, fmt.Errorf("db connect %s:%s/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	tunePool(db.DB, cfg.MaxConnections)

	logger.LogEvent(ctx, logger.DB, slog.LevelInfo, "db.connect",
		append(attrs, slog.Int("pool_open", cfg.MaxConnections))...)
	return db, nil
}

// tunePool keeps roughly half of the open connections warm and recycles
// them periodically so failovers behind a proxy are picked up.
func tunePool(db *sql.DB, maxOpen int) {
	idle := maxOpen/2 + 1
	if idle > maxOpen {
		idle = maxOpen
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(idle)
	db.SetConnMaxIdleTime(connMaxIdleTime)
	db.SetConnMaxLifetime(connMaxLifetime)
}

// WaitForPostgres pings dsn until the server answers, ctx is done or
// timeout elapses, whichever comes first.
func WaitForPostgres(ctx context.Context, dsn string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	tick := time.NewTicker(readyPollEvery)
	defer tick.Stop()
	for attempt := 1; ; attempt++ {
		err := db.PingContext(ctx)
		if err == nil {
			if attempt > 1 {
				logger.DB.Info("db ready", slog.String("event", "db.wait"), slog.Int("attempts", attempt))
			}
			return nil
		}
		logger.DB.Debug("db not ready",
			slog.String("event", "db.wait"),
			slog.Int("attempt", attempt),
			slog.String("err", err.Error()),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("database not ready after %d attempts: %w", attempt, err)
		case <-tick.C:
		}
	}
}
