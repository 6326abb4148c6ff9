package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/hotelops/intervention/pkg/cli/config"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

var (
	blockedColor   = color.New(color.FgRed, color.Bold)
	unblockedColor = color.New(color.FgGreen)
)

func cmdRooms() *cli.Command {
	var establishmentID string
	var all bool
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "establishment-id",
			Aliases:     []string{"i"},
			Usage:       "Establishment whose room blocks are listed",
			Required:    true,
			Sources:     cli.EnvVars("INTERVENTION_ESTABLISHMENT_ID"),
			Destination: &establishmentID,
		},
		&cli.BoolFlag{
			Name:        "all",
			Aliases:     []string{"a"},
			Usage:       "Include rooms that were unblocked",
			Destination: &all,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "rooms",
		Aliases: []string{"r"},
		Usage:   "List blocked rooms of an establishment",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := newRuntime(ctx, &repoCfg, &config.Establishment{}, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			blocks, err := rt.uc.RoomBlock.ListRoomBlocks(ctx, establishmentID, !all)
			if err != nil {
				return err
			}

			printRoomBlocks(color.Output, blocks)
			return nil
		},
	}
}

func printRoomBlocks(w io.Writer, blocks []*model.RoomBlock) {
	if len(blocks) == 0 {
		_, _ = fmt.Fprintln(w, "no blocked room")
		return
	}

	for _, b := range blocks {
		state := unblockedColor.Sprint("free   ")
		if b.Blocked {
			state = blockedColor.Sprint("blocked")
		}

		var since string
		if b.Blocked && b.BlockedAt != nil {
			since = b.BlockedAt.Format("2006-01-02 15:04")
		}
		_, _ = fmt.Fprintf(w, "%-8s %s %-16s %-20s %s\n", b.Room, state, since, b.BlockedByName, b.Reason)
	}
}
