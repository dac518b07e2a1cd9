package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/bookingbot/core/config"
	coredatabase "github.com/m3rciful/bookingbot/core/database"
)

func mockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return sqlx.NewDb(raw, "postgres"), mock
}

func TestRunPipelineOrder(t *testing.T) {
	db, mock := mockDB(t)
	var steps []string
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { steps = append(steps, "logger"); return nil },
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			steps = append(steps, "connect")
			return db, nil
		},
		Migrate: func(coredatabase.Config) error { steps = append(steps, "migrate"); return nil },
		Seeders: []Seeder{SeederFunc{Label: "slots", Fn: func(context.Context, *sqlx.DB) (int, error) {
			steps = append(steps, "seed")
			return 3, nil
		}}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Seeded["slots"] != 3 {
		t.Fatalf("seeded = %v", res.Seeded)
	}
	want := []string{"logger", "connect", "migrate", "seed"}
	if len(steps) != len(want) {
		t.Fatalf("steps = %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("steps = %v, want %v", steps, want)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunClosesDBWhenSeederFails(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectClose()
	boom := errors.New("boom")
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return nil },
		Connect:    func(coredatabase.Config) (*sqlx.DB, error) { return db, nil },
		Migrate:    func(coredatabase.Config) error { return nil },
		Seeders: []Seeder{SeederFunc{Label: "slots", Fn: func(context.Context, *sqlx.DB) (int, error) {
			return 0, boom
		}}},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunClosesDBWhenMigrationFails(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectClose()
	seeded := false
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return nil },
		Connect:    func(coredatabase.Config) (*sqlx.DB, error) { return db, nil },
		Migrate:    func(coredatabase.Config) error { return errors.New("dirty") },
		Seeders: []Seeder{SeederFunc{Label: "slots", Fn: func(context.Context, *sqlx.DB) (int, error) {
			seeded = true
			return 0, nil
		}}},
	})
	if err == nil || seeded {
		t.Fatalf("err = %v seeded = %v", err, seeded)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunStopsSeedingWhenCancelled(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectClose()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return nil },
		Connect:    func(coredatabase.Config) (*sqlx.DB, error) { return db, nil },
		Migrate:    func(coredatabase.Config) error { return nil },
		Seeders: []Seeder{SeederFunc{Label: "slots", Fn: func(context.Context, *sqlx.DB) (int, error) {
			t.Fatal("seeder ran after cancel")
			return 0, nil
		}}},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}
