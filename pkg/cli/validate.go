package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/hotelops/intervention/pkg/cli/config"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/repository/firestore"
	"github.com/hotelops/intervention/pkg/usecase"
	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/hotelops/intervention/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var estCfg config.Establishment
	var firestoreProjectID string
	var firestoreDatabaseID string
	var firestorePrefix string

	var flags []cli.Flag
	flags = append(flags, estCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (if specified, stored room blocks are checked against the catalog)",
			Sources:     cli.EnvVars("INTERVENTION_FIRESTORE_PROJECT_ID"),
			Destination: &firestoreProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("INTERVENTION_FIRESTORE_DATABASE_ID"),
			Destination: &firestoreDatabaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix prepended to every Firestore collection name",
			Sources:     cli.EnvVars("INTERVENTION_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &firestorePrefix,
		},
	)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the establishment catalog and optionally check stored room blocks against it",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			registry, err := estCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "establishment catalog validation failed")
			}

			for _, e := range registry.List() {
				logger.Info("Establishment validated",
					"id", e.ID,
					"name", e.Name,
					"room_count", len(e.Rooms),
				)
			}

			if firestoreProjectID == "" {
				logger.Info("No Firestore project ID specified, skipping store check")
				return nil
			}

			repo, err := firestore.New(ctx, firestoreProjectID, firestoreDatabaseID, firestore.WithCollectionPrefix(firestorePrefix))
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Firestore repository")
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo, usecase.WithEstablishments(registry))
			issues, err := auditRoomBlocks(ctx, uc, registry)
			if err != nil {
				return err
			}
			if issues > 0 {
				return fmt.Errorf("store check found %d room block(s) outside the catalog", issues)
			}

			logger.Info("Store check passed")
			return nil
		},
	}
}

// auditRoomBlocks reports stored room blocks whose room is no longer in the
// establishment catalog
func auditRoomBlocks(ctx context.Context, uc *usecase.UseCases, registry *model.EstablishmentRegistry) (int, error) {
	var issues int
	for _, e := range registry.List() {
		blocks, err := uc.RoomBlock.ListRoomBlocks(ctx, e.ID, false)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to list room blocks", goerr.V("establishment_id", e.ID))
		}

		for _, b := range blocks {
			err := registry.CheckRooms(e.ID, b.Room)
			if err == nil {
				continue
			}
			if !errors.Is(err, model.ErrUnknownRoom) {
				return 0, err
			}
			issues++
			logging.From(ctx).Warn("Room block outside the catalog",
				"establishment_id", e.ID,
				"room", b.Room,
				"blocked", b.Blocked,
			)
		}
	}
	return issues, nil
}
