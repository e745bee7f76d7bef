package interfaces

import (
	"context"
	"encoding/json"

	"github.com/dmleblanc/gitrelay/pkg/domain/model"
)

// TokenIssuer exchanges GitHub App credentials for an installation
// access token
type TokenIssuer interface {
	IssueInstallationToken(ctx context.Context) (*model.InstallationToken, error)
}

// GitHubClient defines the read operations forwarded to the GitHub API
type GitHubClient interface {
	// QueryContributions fetches the contribution calendar for a user
	// and returns the raw GraphQL response body.
	QueryContributions(ctx context.Context, token, username string) (json.RawMessage, error)
}
