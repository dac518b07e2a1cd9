package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/bookingbot/core/config"
	coretelegram "github.com/m3rciful/bookingbot/core/telegram"
)

type carrier struct{ core *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.core }

type fakeApp struct {
	closed bool
}

func (a *fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (a *fakeApp) Close() error {
	a.closed = true
	return nil
}

func baseOptions(app *fakeApp) Options {
	return Options{
		ConfigEnvVar:      "BOOKINGBOT_TEST_CONFIG",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return carrier{core: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return app, nil
		},
		ShutdownLogger: func() error { return nil },
	}
}

func TestRunLifecycle(t *testing.T) {
	app := &fakeApp{}
	opts := baseOptions(app)
	t.Setenv("BOOKINGBOT_TEST_CONFIG", "/etc/bot.yaml")

	var loaded string
	load := opts.LoadConfig
	opts.LoadConfig = func(path string) (ConfigCarrier, error) {
		loaded = path
		return load(path)
	}
	var hooks []string
	opts.RunTelegram = func(ctx context.Context, ro coretelegram.RunOptions) error {
		if err := ro.OnStart(ctx, coretelegram.Runtime{}); err != nil {
			return err
		}
		hooks = append(hooks, "start")
		if err := ro.OnStop(ctx, coretelegram.Runtime{}); err != nil {
			return err
		}
		hooks = append(hooks, "stop")
		return nil
	}

	if err := Run(opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	if loaded != "/etc/bot.yaml" {
		t.Fatalf("config path = %q", loaded)
	}
	if len(hooks) != 2 {
		t.Fatalf("hooks = %v", hooks)
	}
	if !app.closed {
		t.Fatalf("app was not closed")
	}
}

func TestRunDefaultConfigPath(t *testing.T) {
	opts := baseOptions(&fakeApp{})
	opts.ConfigEnvVar = "BOOKINGBOT_TEST_UNSET"
	var loaded string
	opts.LoadConfig = func(path string) (ConfigCarrier, error) {
		loaded = path
		return carrier{core: &coreconfig.Config{}}, nil
	}
	opts.RunTelegram = func(context.Context, coretelegram.RunOptions) error { return nil }
	if err := Run(opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	if loaded != "config.yaml" {
		t.Fatalf("config path = %q", loaded)
	}
}

func TestRunBootstrapDeadline(t *testing.T) {
	opts := baseOptions(nil)
	opts.BootstrapTimeout = 20 * time.Millisecond
	opts.Bootstrap = func(ctx context.Context, _ ConfigCarrier) (TelegramApp, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	err := Run(opts)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}

func TestRunRequiresCoreConfig(t *testing.T) {
	opts := baseOptions(&fakeApp{})
	opts.LoadConfig = func(string) (ConfigCarrier, error) { return carrier{}, nil }
	if err := Run(opts); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRunMissingHooks(t *testing.T) {
	if err := Run(Options{}); err == nil {
		t.Fatalf("expected error")
	}
}
