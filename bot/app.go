// Package bot is the Telegram front end of the booking services.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/bookingbot/booking"
	"github.com/m3rciful/bookingbot/booking/dialog"
	"github.com/m3rciful/bookingbot/booking/pgstore"
	"github.com/m3rciful/bookingbot/booking/rediscache"
	"github.com/m3rciful/bookingbot/core/bootstrap"
	corecmd "github.com/m3rciful/bookingbot/core/cmd"
	"github.com/m3rciful/bookingbot/core/httpserver"
	"github.com/m3rciful/bookingbot/core/logger"
	tg "github.com/m3rciful/bookingbot/core/telegram"
	"github.com/m3rciful/bookingbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/bookingbot/core/telegram/helpers"
	"github.com/m3rciful/bookingbot/core/telegram/router"
	"github.com/m3rciful/bookingbot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// App owns the booking services and their Telegram wiring.
type App struct {
	cfg      *Config
	machine  *dialog.Machine
	handlers *handlers
	registry *tg.Registry
	fallback ui.FallbackProvider
	checks   map[string]httpserver.Check

	db    *sqlx.DB
	cache *rediscache.Cache

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Bootstrap prepares the database and builds the App; it is the
// cmd.Options.Bootstrap of the booking bot.
func Bootstrap(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("bot: unexpected config type %T", carrier)
	}
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
		Seeders:  []bootstrap.Seeder{pgstore.SlotSeeder(cfg.Schedule)},
	})
	if err != nil {
		return nil, err
	}

	store := pgstore.New(res.DB)
	checks := map[string]httpserver.Check{"postgres": store.Ping}

	var (
		cache *rediscache.Cache
		avail booking.AvailabilityCache
	)
	if cfg.Redis.Enabled() {
		cache, err = rediscache.Open(ctx, cfg.Redis)
		if err != nil {
			logger.Warn(ctx, logger.CompBot, "cache.disabled", slog.String("err", err.Error()))
			cache = nil
		} else {
			avail = cache
			checks["redis"] = cache.Ping
		}
	}

	app, err := New(cfg, store, avail)
	if err != nil {
		_ = res.DB.Close()
		if cache != nil {
			_ = cache.Close()
		}
		return nil, err
	}
	app.db = res.DB
	app.cache = cache
	app.checks = checks
	return app, nil
}

// New assembles the services over store and registers the bot commands
// and callbacks. cache may be nil.
func New(cfg *Config, store booking.Store, cache booking.AvailabilityCache) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bot: nil config")
	}
	slots := booking.NewSlots(store, cfg.Schedule, cache)
	machine, err := dialog.New(dialog.Services{
		Registry: booking.NewRegistry(store),
		Slots:    slots,
		Engine:   booking.NewEngine(store, cache),
		Ledger:   booking.NewLedger(store),
	}, cfg.Session)
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:      cfg,
		machine:  machine,
		handlers: &handlers{machine: machine, slots: slots},
		registry: tg.NewRegistry(),
		fallback: ui.Static{Text: txtUnknown, Callback: txtUnknownBtn},
	}
	if err := app.register(); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) register() error {
	h := a.handlers
	cmds := []struct {
		name string
		cmd  commands.Command
	}{
		{"/start", commands.Command{Handler: h.start, Description: "Start the bot"}},
		{"/help", commands.Command{Handler: h.help, Description: "What the bot can do", Aliases: []string{btnInfo}}},
		{"/book", commands.Command{Handler: h.book, Description: "Book an appointment", Aliases: []string{btnBook}}},
		{"/my", commands.Command{Handler: h.mine, Description: "Your appointments", Aliases: []string{btnMine}}},
		{"/cancel_booking", commands.Command{Handler: h.release, Description: "Cancel an appointment", Aliases: []string{btnRelease}}},
		{"/cancel", commands.Command{Handler: h.abort, Description: "Leave the current dialog"}},
		{"/slots", commands.Command{Handler: h.board, Description: "All slots", AdminOnly: true}},
	}
	for _, c := range cmds {
		a.registry.RegisterCommand(c.name, c.cmd)
	}

	cbs := map[string]tele.HandlerFunc{
		cbDay:     h.onDay,
		cbTime:    h.onTime,
		cbConfirm: h.onConfirm,
		cbRelease: h.onRelease,
		cbAbort:   h.onAbort,
	}
	for key, fn := range cbs {
		if err := a.registry.RegisterCallback(key, fn); err != nil {
			return fmt.Errorf("bot: %w", err)
		}
	}
	a.registry.SetCallbackNotFound(a.fallback.UnknownCallback())
	a.registry.SetTextFallback(a.fallback.UnknownText())
	return nil
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID:       core.Telegram.AdminID,
		OnAdminReject: denied,
	})
	routes = append(routes, router.TextRoutes(a.registry, router.TextOptions{
		Commands: router.CommandRouteOptions{
			AdminID:       core.Telegram.AdminID,
			OnAdminReject: denied,
		},
		Conversation: conversation{h: a.handlers},
	})...)
	routes = append(routes, router.CallbackRoute(a.registry))

	return tg.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(core, rateLimited),
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

// onStart launches the session sweeper and the health endpoint.
func (a *App) onStart(ctx context.Context, _ tg.Runtime) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.machine.RunSweeper(runCtx)
	}()

	if listen := a.cfg.HTTP.Listen; listen != "" {
		srv := httpserver.New(listen, a.checks)
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := srv.Run(runCtx); err != nil {
				logger.Error(runCtx, logger.CompBot, "http.fail", slog.String("err", err.Error()))
			}
		}()
	}
	logger.Info(ctx, logger.CompBot, "bot.wired",
		slog.Int("days", len(a.cfg.Schedule.Days)),
		slog.Int("slots_per_day", len(a.cfg.Schedule.Starts())),
		slog.Bool("cache", a.cache != nil),
	)
	return nil
}

func (a *App) onStop(context.Context, tg.Runtime) error {
	a.stopBackground()
	return nil
}

func (a *App) stopBackground() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	a.wg.Wait()
}

// Close stops background work and releases the database and cache.
func (a *App) Close() error {
	a.stopBackground()
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func denied(c tele.Context) error {
	return tghelpers.SendText(c, txtDenied)
}

func rateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return tghelpers.Ack(c, txtRateLimited)
	}
	return tghelpers.SendText(c, txtRateLimited)
}
