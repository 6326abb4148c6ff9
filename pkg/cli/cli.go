package cli

import (
	"context"

	"github.com/hotelops/intervention/pkg/cli/config"
	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	flags := append(loggerCfg.Flags(), sentryCfg.Flags()...)

	app := &cli.Command{
		Name:    "intervention",
		Usage:   "Hotel maintenance intervention and room blocking service",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			closeLog, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, closeLog)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			logging.Default().Info("Starting intervention",
				"version", version,
				"logger", &loggerCfg,
				"sentry", &sentryCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdMigrate(),
			cmdValidate(),
			cmdWatch(),
			cmdRooms(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
