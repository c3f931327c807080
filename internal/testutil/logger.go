package testutil

import (
	"bytes"
	"log/slog"
)

// CaptureLogger returns a debug-level logger writing to the returned
// buffer, for asserting on log output in tests.
func CaptureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	return logger, &buf
}
