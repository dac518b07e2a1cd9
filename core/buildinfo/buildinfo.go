// Package buildinfo carries version stamps injected by the linker:
//
//	go build -ldflags "-X github.com/m3rciful/bookingbot/core/buildinfo.Version=v0.3.0 \
//	    -X github.com/m3rciful/bookingbot/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/m3rciful/bookingbot/core/buildinfo.Date=$(date -u +%FT%TZ)" ./cmd/bookingbot
package buildinfo

var (
	Version = "dev"
	Commit  = "local"
	Date    = ""
)

// Fields returns the stamps keyed as they appear in logs and /healthz.
func Fields() map[string]string {
	out := map[string]string{
		"version": Version,
		"commit":  Commit,
	}
	if Date != "" {
		out["built_at"] = Date
	}
	return out
}
