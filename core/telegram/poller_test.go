package telegram

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPollerWebhook(t *testing.T) {
	p := BuildPoller(PollerOptions{
		RunMode: "WEBHOOK",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://example.org/hook"},
	})
	wh, ok := p.(*tele.Webhook)
	if !ok {
		t.Fatalf("expected webhook poller, got %T", p)
	}
	if wh.Listen != "0.0.0.0:8443" {
		t.Fatalf("listen = %q", wh.Listen)
	}
	if wh.Endpoint.PublicURL != "https://example.org/hook" {
		t.Fatalf("public url = %q", wh.Endpoint.PublicURL)
	}
	if len(wh.AllowedUpdates) != 2 {
		t.Fatalf("allowed updates = %v", wh.AllowedUpdates)
	}
}

func TestBuildPollerLongpollDefaults(t *testing.T) {
	p := BuildPoller(PollerOptions{RunMode: "longpoll"})
	lp, ok := p.(*tele.LongPoller)
	if !ok {
		t.Fatalf("expected long poller, got %T", p)
	}
	if lp.Timeout != 10*time.Second {
		t.Fatalf("timeout = %v", lp.Timeout)
	}
	if len(lp.AllowedUpdates) != 2 || lp.AllowedUpdates[0] != "message" || lp.AllowedUpdates[1] != "callback_query" {
		t.Fatalf("allowed updates = %v", lp.AllowedUpdates)
	}
}

func TestBuildPollerAllowedOverride(t *testing.T) {
	p := BuildPoller(PollerOptions{LongPollTimeout: 3 * time.Second, AllowedUpdates: []string{"message"}})
	lp := p.(*tele.LongPoller)
	if lp.Timeout != 3*time.Second || len(lp.AllowedUpdates) != 1 {
		t.Fatalf("poller = %+v", lp)
	}
}
