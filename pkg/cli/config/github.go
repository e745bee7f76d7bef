package config

import "github.com/urfave/cli/v3"

// GitHub holds GitHub App configuration
type GitHub struct {
	CredentialsSecret string
	APIBase           string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-credentials-secret",
			Usage:       "Secret Manager resource holding the GitHub App credential bundle (projects/P/secrets/S)",
			Required:    true,
			Destination: &c.CredentialsSecret,
			Sources:     cli.EnvVars("GITRELAY_GITHUB_CREDENTIALS_SECRET"),
		},
		&cli.StringFlag{
			Name:        "github-api-base",
			Usage:       "GitHub API base URL",
			Value:       "https://api.github.com",
			Destination: &c.APIBase,
			Sources:     cli.EnvVars("GITRELAY_GITHUB_API_BASE"),
		},
	}
}
