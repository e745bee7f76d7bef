package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/dmleblanc/gitrelay/pkg/cli/config"
)

// cmdConfigure provisions the Firestore settings the commit store
// relies on: the TTL policy reclaiming expired records and the
// composite index behind the per-user activity query.
func cmdConfigure() *cli.Command {
	var firestoreCfg config.Firestore

	return &cli.Command{
		Name:  "configure",
		Usage: "Apply Firestore TTL policy and indexes for the commit store",
		Flags: firestoreCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			collections := []fireconf.Collection{
				{
					Name: firestoreCfg.Collection,
					TTL:  &fireconf.TTL{Field: "expires_at"},
					Indexes: []fireconf.Index{
						{
							Fields: []fireconf.IndexField{
								{Path: "author.username", Order: fireconf.OrderAscending},
								{Path: "timestamp", Order: fireconf.OrderDescending},
							},
						},
					},
				},
			}

			client, err := fireconf.New(ctx, firestoreCfg.ProjectID, firestoreCfg.DatabaseID, &fireconf.Config{Collections: collections})
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client",
					goerr.V("project", firestoreCfg.ProjectID),
				)
			}
			defer client.Close()

			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply Firestore configuration",
					goerr.V("project", firestoreCfg.ProjectID),
					goerr.V("collection", firestoreCfg.Collection),
				)
			}

			logger.Info("Firestore configuration applied",
				"project", firestoreCfg.ProjectID,
				"collection", firestoreCfg.Collection,
			)
			return nil
		},
	}
}
