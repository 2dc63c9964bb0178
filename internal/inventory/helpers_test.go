package inventory

import (
	"io"
	"log/slog"

	"bookworm/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.FromSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
