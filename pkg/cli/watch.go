package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/hotelops/intervention/pkg/cli/config"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

var (
	kindColors = map[types.ChangeKind]*color.Color{
		types.ChangeKindAdded:    color.New(color.FgGreen),
		types.ChangeKindModified: color.New(color.FgYellow),
		types.ChangeKindRemoved:  color.New(color.FgRed),
	}
	dimColor = color.New(color.Faint)
)

func cmdWatch() *cli.Command {
	var establishmentID string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "establishment-id",
			Aliases:     []string{"i"},
			Usage:       "Establishment to watch",
			Required:    true,
			Sources:     cli.EnvVars("INTERVENTION_ESTABLISHMENT_ID"),
			Destination: &establishmentID,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "Print the intervention and room block change feed of an establishment",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := newRuntime(ctx, &repoCfg, &config.Establishment{}, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			feed, err := rt.uc.Coordinator.Subscribe(ctx, establishmentID)
			if err != nil {
				return err
			}

			logging.Default().Info("Watching change feed", "establishment_id", establishmentID)
			for ev := range feed {
				printChangeEvent(color.Output, ev)
			}
			return nil
		},
	}
}

func printChangeEvent(w io.Writer, ev *model.ChangeEvent) {
	kind := string(ev.Kind)
	if c, ok := kindColors[ev.Kind]; ok {
		kind = c.Sprint(kind)
	}

	var detail string
	switch {
	case ev.Intervention != nil:
		x := ev.Intervention
		detail = fmt.Sprintf("status=%s rooms=%v priority=%s v%d", x.Status, x.Rooms, x.Priority, x.Version)
	case ev.RoomBlock != nil:
		b := ev.RoomBlock
		detail = fmt.Sprintf("room=%s blocked=%t reason=%q v%d", b.Room, b.Blocked, b.Reason, b.Version)
	}

	_, _ = fmt.Fprintf(w, "%s %-13s %-8s %s %s\n",
		dimColor.Sprint(ev.OccurredAt.Format("15:04:05")),
		ev.Collection, kind, ev.DocumentID, detail)
}
