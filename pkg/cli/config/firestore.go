package config

import "github.com/urfave/cli/v3"

// Firestore holds commit store configuration
type Firestore struct {
	ProjectID  string
	DatabaseID string
	Collection string
}

// Flags returns CLI flags for Firestore configuration
func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project",
			Usage:       "Google Cloud project of the commit store",
			Required:    true,
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("GITRELAY_FIRESTORE_PROJECT"),
		},
		&cli.StringFlag{
			Name:        "firestore-database",
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Destination: &c.DatabaseID,
			Sources:     cli.EnvVars("GITRELAY_FIRESTORE_DATABASE"),
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Collection holding commit records",
			Value:       "commits",
			Destination: &c.Collection,
			Sources:     cli.EnvVars("GITRELAY_FIRESTORE_COLLECTION"),
		},
	}
}
