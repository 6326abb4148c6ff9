package config

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Sentry holds CLI flags for error reporting
type Sentry struct {
	dsn         string
	environment string
}

func (x *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN. Errors are reported only when set",
			Category:    "Sentry",
			Sources:     cli.EnvVars("INTERVENTION_SENTRY_DSN"),
			Destination: &x.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Category:    "Sentry",
			Value:       "development",
			Sources:     cli.EnvVars("INTERVENTION_SENTRY_ENV"),
			Destination: &x.environment,
		},
	}
}

func (x *Sentry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", x.dsn != ""),
		slog.String("environment", x.environment),
	)
}

// Configure initializes the global Sentry client. The returned function
// flushes buffered events and must be called before exit.
func (x *Sentry) Configure(release string) (func(), error) {
	if x.dsn == "" {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         x.dsn,
		Environment: x.environment,
		Release:     release,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize sentry", goerr.V("environment", x.environment))
	}

	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}
