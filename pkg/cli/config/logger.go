package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"
)

// Logger holds CLI flags for the process logger
type Logger struct {
	level  string
	format string
	output string
}

func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Aliases:     []string{"l"},
			Usage:       "Log level [debug|info|warn|error]",
			Category:    "Logging",
			Value:       "info",
			Sources:     cli.EnvVars("INTERVENTION_LOG_LEVEL"),
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format [console|json]",
			Category:    "Logging",
			Value:       "console",
			Sources:     cli.EnvVars("INTERVENTION_LOG_FORMAT"),
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output [stdout|stderr|<file path>]",
			Category:    "Logging",
			Value:       "stdout",
			Sources:     cli.EnvVars("INTERVENTION_LOG_OUTPUT"),
			Destination: &x.output,
		},
	}
}

func (x *Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", x.level),
		slog.String("format", x.format),
		slog.String("output", x.output),
	)
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Configure builds the logger and installs it as the process default. The
// returned function closes the log file, if any.
func (x *Logger) Configure() (func(), error) {
	level, ok := logLevels[x.level]
	if !ok {
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid log level", goerr.V("level", x.level))
	}

	closer := func() {}
	var w io.Writer
	switch x.output {
	case "stdout", "-", "":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(filepath.Clean(x.output), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", x.output))
		}
		w = f
		closer = func() {
			if err := f.Close(); err != nil {
				logging.Default().Warn("failed to close log file", "error", err)
			}
		}
	}

	filter := masq.New(
		masq.WithTag("secret"),
		masq.WithFieldName("Authorization"),
		masq.WithFieldName("If-Match"),
	)

	var handler slog.Handler
	switch x.format {
	case "console":
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithReplaceAttr(filter),
			clog.WithColor(w == os.Stdout || w == os.Stderr),
		)
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   true,
			Level:       level,
			ReplaceAttr: filter,
		})
	default:
		closer()
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid log format", goerr.V("format", x.format))
	}

	logging.SetDefault(slog.New(handler))
	return closer, nil
}
