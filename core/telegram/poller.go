package telegram

import (
	"net"
	"strconv"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/bookingbot/core/config"

	tele "gopkg.in/telebot.v4"
)

// AllowedUpdates lists the update kinds the bot subscribes to. Everything the
// booking flow consumes arrives as a message or a callback query.
var AllowedUpdates = []string{"message", "callback_query"}

// WebhookOptions declares webhook listener settings.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode         string
	LongPollTimeout time.Duration
	Webhook         WebhookOptions
	// AllowedUpdates overrides the package level AllowedUpdates when set.
	AllowedUpdates []string
}

func (o PollerOptions) allowed() []string {
	if len(o.AllowedUpdates) > 0 {
		return o.AllowedUpdates
	}
	return append([]string(nil), AllowedUpdates...)
}

// BuildPoller returns a webhook poller in webhook mode and a long poller otherwise.
func BuildPoller(opts PollerOptions) tele.Poller {
	if strings.EqualFold(strings.TrimSpace(opts.RunMode), coreconfig.RunModeWebhook) {
		return &tele.Webhook{
			Listen:         net.JoinHostPort(opts.Webhook.Listen, strconv.Itoa(opts.Webhook.Port)),
			AllowedUpdates: opts.allowed(),
			Endpoint:       &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
		}
	}
	timeout := opts.LongPollTimeout
	if timeout <= 0 {
		timeout = coreconfig.DefaultLongPollTimeout
	}
	return &tele.LongPoller{Timeout: timeout, AllowedUpdates: opts.allowed()}
}
