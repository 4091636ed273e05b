package safe

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/secmon-lab/mentorag/pkg/utils/logging"
)

// Close closes closer and logs a failure instead of returning it. Deferred
// closes of read-only files and object readers use it; a nil closer is ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("failed to close",
			slog.String("type", fmt.Sprintf("%T", closer)),
			slog.Any("error", err))
	}
}
