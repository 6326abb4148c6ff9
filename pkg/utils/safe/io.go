package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/hotelops/intervention/pkg/utils/logging"
)

// Close closes closer and logs the error instead of returning it. A nil
// closer is ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// Write writes data to w and logs any error. It reports whether the write
// succeeded so that streaming loops can stop on a gone client.
func Write(ctx context.Context, w io.Writer, data []byte) bool {
	if w == nil {
		return false
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Debug("Failed to write", slog.Any("error", err))
		return false
	}
	return true
}
