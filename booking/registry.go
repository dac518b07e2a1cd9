package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/m3rciful/bookingbot/core/logger"
)

const maxNameLen = 128

// Registry maps external identities to client ids.
type Registry struct {
	store Store
}

// NewRegistry returns a Registry backed by store.
func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Register creates the client on first sight and refreshes its names on
// every later call. It is safe to call on every interaction.
func (r *Registry) Register(ctx context.Context, in ClientInput) (int64, error) {
	if in.ExternalID == 0 {
		return 0, fmt.Errorf("%w: empty external id", ErrValidation)
	}
	in.DisplayName = clean(in.DisplayName)
	in.Handle = clean(strings.TrimPrefix(in.Handle, "@"))

	id, err := r.store.UpsertClient(ctx, in)
	if err != nil {
		err = Wrap("register client", err)
		logger.Error(ctx, logger.CompClients, "client.register",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return 0, err
	}
	if logger.ShouldSampleDebug() {
		logger.Debug(ctx, logger.CompClients, "client.register",
			slog.String("status", "ok"),
			slog.Int64("client_id", id),
		)
	}
	return id, nil
}

func clean(s string) string {
	s = strings.TrimSpace(logger.Sanitize(s))
	if utf8.RuneCountInString(s) > maxNameLen {
		s = string([]rune(s)[:maxNameLen])
	}
	return s
}
