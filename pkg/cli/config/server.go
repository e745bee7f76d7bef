package config

import "github.com/urfave/cli/v3"

// Server holds server configuration
type Server struct {
	Addr       string
	CORSOrigin string
	PolicyPath string
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("GITRELAY_ADDR"),
		},
		&cli.StringFlag{
			Name:        "cors-origin",
			Usage:       "Origin allowed to call the relay endpoint",
			Value:       "https://blancpagesolutions.com",
			Destination: &c.CORSOrigin,
			Sources:     cli.EnvVars("GITRELAY_CORS_ORIGIN"),
		},
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path to a TOML relay policy file",
			Destination: &c.PolicyPath,
			Sources:     cli.EnvVars("GITRELAY_POLICY"),
		},
	}
}
