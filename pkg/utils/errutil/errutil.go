package errutil

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs the error with a message and reports it to Sentry when a
// client is configured. The error is returned unchanged.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	capture(ctx, err, msg)
	return err
}

// HandleHTTP logs the error and writes a plain text HTTP error response.
// Only 5xx errors are sent to Sentry.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	if statusCode >= http.StatusInternalServerError {
		capture(ctx, err, "HTTP error")
	}

	http.Error(w, err.Error(), statusCode)
}

func capture(ctx context.Context, err error, msg string) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		var ge *goerr.Error
		if errors.As(err, &ge) {
			values := sentry.Context{}
			for k, v := range ge.Values() {
				values[k] = v
			}
			scope.SetContext("goerr", values)
		}
		hub.CaptureException(err)
	})
}
