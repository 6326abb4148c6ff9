package cli

import (
	"context"

	"github.com/hotelops/intervention/pkg/domain/types"
	"github.com/hotelops/intervention/pkg/repository/firestore"
	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var prefix string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("INTERVENTION_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("INTERVENTION_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "firestore-collection-prefix",
				Usage:       "Prefix prepended to every Firestore collection name",
				Sources:     cli.EnvVars("INTERVENTION_FIRESTORE_COLLECTION_PREFIX"),
				Destination: &prefix,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"prefix", prefix,
				"dryRun", dryRun)

			if databaseID == "" {
				databaseID = defaultDatabaseID
			}

			client, err := fireconf.New(ctx, projectID, databaseID, getIndexConfig(prefix),
				fireconf.WithLogger(logger),
				fireconf.WithDryRun(dryRun))
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
			} else {
				logger.Info("Applying migrations")
			}
			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply migrations", goerr.V("dry_run", dryRun))
			}
			if dryRun {
				return nil
			}
			logger.Info("Migrations applied successfully")
			return nil
		},
	}
}

// fireconf needs an explicit database; Firestore names the default one so
const defaultDatabaseID = "(default)"

func asc(path string) fireconf.IndexField {
	return fireconf.IndexField{Path: path, Order: fireconf.OrderAscending}
}

func desc(path string) fireconf.IndexField {
	return fireconf.IndexField{Path: path, Order: fireconf.OrderDescending}
}

// getIndexConfig returns the composite indexes backing the repository queries
func getIndexConfig(prefix string) *fireconf.Config {
	name := func(c types.Collection) string {
		return firestore.CollectionName(prefix, string(c))
	}

	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: name(types.CollectionInterventions),
				Indexes: []fireconf.Index{
					// List: establishment, newest first, optional status and assignee filters
					{Fields: []fireconf.IndexField{asc("EstablishmentID"), desc("CreatedAt")}},
					{Fields: []fireconf.IndexField{asc("EstablishmentID"), asc("Status"), desc("CreatedAt")}},
					{Fields: []fireconf.IndexField{asc("EstablishmentID"), asc("AssignedTo"), desc("CreatedAt")}},
					{Fields: []fireconf.IndexField{asc("EstablishmentID"), asc("Status"), asc("AssignedTo"), desc("CreatedAt")}},
				},
			},
			{
				Name: name(types.CollectionBlockedRooms),
				Indexes: []fireconf.Index{
					{Fields: []fireconf.IndexField{asc("EstablishmentID"), asc("Room")}},
					{Fields: []fireconf.IndexField{asc("EstablishmentID"), asc("Blocked")}},
				},
			},
			{
				Name: name(types.CollectionNotifications),
				Indexes: []fireconf.Index{
					{Fields: []fireconf.IndexField{asc("EstablishmentID"), asc("UserID"), desc("CreatedAt")}},
					{Fields: []fireconf.IndexField{asc("EstablishmentID"), asc("UserID"), asc("Read"), desc("CreatedAt")}},
				},
			},
		},
	}
}
