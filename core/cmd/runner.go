// Package cmd drives a bot process from configuration to shutdown.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	coreconfig "github.com/m3rciful/bookingbot/core/config"
	"github.com/m3rciful/bookingbot/core/logger"
	coretelegram "github.com/m3rciful/bookingbot/core/telegram"
)

const (
	defaultConfigEnv        = "CONFIG_PATH"
	defaultBootstrapTimeout = time.Minute
)

// ConfigCarrier exposes the embedded core configuration of an app config.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp produces the run options of a bot. Apps that also implement
// io.Closer are closed after the bot stops.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Options describe how to load configuration, bootstrap the app and run it.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(ctx context.Context, cfg ConfigCarrier) (TelegramApp, error)
	// BootstrapTimeout bounds Bootstrap; zero means one minute.
	BootstrapTimeout time.Duration

	// Signals cancel the run context; defaults to SIGINT and SIGTERM.
	Signals []os.Signal

	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
}

// Run loads configuration, bootstraps the app and serves Telegram updates
// until one of opts.Signals arrives.
func Run(opts Options) error {
	if opts.LoadConfig == nil || opts.Bootstrap == nil {
		return errors.New("cmd: LoadConfig and Bootstrap are required")
	}
	path, err := opts.configPath()
	if err != nil {
		return err
	}

	log.Printf("loading config: %s", path)
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("cmd: load config: %w", err)
	}
	if cfg == nil || cfg.CoreConfig() == nil {
		return errors.New("cmd: loaded config is missing core configuration")
	}

	signals := opts.Signals
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()

	startedAt := time.Now()
	app, err := opts.bootstrap(ctx, cfg)
	defer opts.flushLogs()
	if err != nil {
		return fmt.Errorf("cmd: bootstrap: %w", err)
	}
	if closer, ok := app.(io.Closer); ok {
		defer closeApp(closer)
	}

	runOpts, err := app.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options: %w", err)
	}
	wrapLifecycle(&runOpts, startedAt)

	run := opts.RunTelegram
	if run == nil {
		run = coretelegram.RunTelegram
	}
	return run(ctx, runOpts)
}

func (o Options) configPath() (string, error) {
	env := o.ConfigEnvVar
	if env == "" {
		env = defaultConfigEnv
	}
	if p := strings.TrimSpace(os.Getenv(env)); p != "" {
		return p, nil
	}
	if o.DefaultConfigPath != "" {
		return o.DefaultConfigPath, nil
	}
	return "", fmt.Errorf("cmd: config path not provided via %s or DefaultConfigPath", env)
}

// bootstrap runs Bootstrap under its own deadline. Cancelling the parent
// still aborts it, but the returned app is not bound to the deadline.
func (o Options) bootstrap(ctx context.Context, cfg ConfigCarrier) (TelegramApp, error) {
	timeout := o.BootstrapTimeout
	if timeout <= 0 {
		timeout = defaultBootstrapTimeout
	}
	bctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	app, err := o.Bootstrap(bctx, cfg)
	if err == nil && app == nil {
		err = errors.New("bootstrap returned no app")
	}
	return app, err
}

func (o Options) flushLogs() {
	shutdown := o.ShutdownLogger
	if shutdown == nil {
		shutdown = logger.Shutdown
	}
	if err := shutdown(); err != nil {
		log.Printf("logger shutdown: %v", err)
	}
}

func closeApp(c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error(context.Background(), "app", "close.fail", slog.String("err", err.Error()))
	}
}

// wrapLifecycle adds the ready and shutdown log lines around the app hooks.
func wrapLifecycle(opts *coretelegram.RunOptions, startedAt time.Time) {
	onStart, onStop := opts.OnStart, opts.OnStop
	opts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if onStart != nil {
			if err := onStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.Info(ctx, "app", "ready",
			slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
		)
		return nil
	}
	opts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Info(ctx, "app", "shutdown",
			slog.Duration("uptime", logger.RoundMS(time.Since(startedAt))),
		)
		if onStop != nil {
			return onStop(ctx, rt)
		}
		return nil
	}
}
