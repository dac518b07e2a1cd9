package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

var statusNames = map[string]string{
	"ok":           "ok",
	"fail":         "fail",
	"error":        "fail",
	"skip":         "skip",
	"retry":        "retry",
	"rate_limited": "rate_limited",
	"cancelled":    "cancelled",
}

// Outcomes double as the booking result vocabulary in handler summaries.
var outcomeNames = map[string]string{
	"ok":           "ok",
	"fail":         "fail",
	"skip":         "skip",
	"cancelled":    "cancelled",
	"rate_limited": "rate_limited",
	"booked":       "booked",
	"slot_taken":   "slot_taken",
	"slot_unknown": "slot_unknown",
	"no_slots":     "no_slots",
	"released":     "released",
	"not_found":    "not_found",
	"forbidden":    "forbidden",
	"reprompt":     "reprompt",
	"listed":       "listed",
	"prompted":     "prompted",
	"storage":      "storage",
}

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if mapped, ok := levelNames[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

func normalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if mapped, ok := statusNames[status]; ok {
		return mapped
	}
	return status
}

func normalizeOutcome(outcome string) (string, bool) {
	val, ok := outcomeNames[strings.ToLower(strings.TrimSpace(outcome))]
	return val, ok
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"handler",
	"cb_key",
	"state",
	"outcome",
	"client_id",
	"appointment_id",
	"day",
	"start",
	"count",
	"duration_ms",
	"messages",
	"kb",
	"cache",
	"payload",
	"username",
	"mode",
	"listen",
	"public_url",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"cause",
	"attempts",
}
