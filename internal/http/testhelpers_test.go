package httpx

import (
	"io"
	"log/slog"
)

// testLogger returns a logger that discards output; tests assert on
// responses, not log lines.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
