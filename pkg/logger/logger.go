package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Log is the process-wide structured logger. It writes JSON lines to stdout
// so the platform's log collector can index fields such as request_id,
// job_id and application_id without parsing free text.
//
// Packages log through it directly (logger.Log.Info(...)); there is no
// per-request logger, the request id is added as an attribute instead.
var Log = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Init replaces Log with a JSON handler at the given level (debug, info, warn, error).
func Init(level string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	Log = slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
