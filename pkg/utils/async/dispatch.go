package async

import (
	"context"
	"fmt"

	"github.com/hotelops/intervention/pkg/utils/errutil"
	"github.com/hotelops/intervention/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine detached from ctx cancellation.
// The logger of ctx is carried over; errors and panics are logged and
// reported, never propagated.
func Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.WithoutCancel(ctx), logging.From(ctx).With("task", name))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(bgCtx, fmt.Errorf("panic: %v", r), "panic in async handler")
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()
}
