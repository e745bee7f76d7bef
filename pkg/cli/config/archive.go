package config

import "github.com/urfave/cli/v3"

// Archive holds webhook payload archive configuration
type Archive struct {
	Bucket string
}

// Flags returns CLI flags for archive configuration
func (c *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket for raw webhook payloads (archiving disabled when empty)",
			Destination: &c.Bucket,
			Sources:     cli.EnvVars("GITRELAY_ARCHIVE_BUCKET"),
		},
	}
}
