package interfaces

import (
	"context"
	"encoding/json"

	"github.com/dmleblanc/gitrelay/pkg/domain/model"
)

// IngestUseCase defines webhook push-event ingestion
type IngestUseCase interface {
	// IngestPush persists the commits of a verified push event.
	// Individual commit write failures are logged and swallowed; the
	// event as a whole still succeeds.
	IngestPush(ctx context.Context, event *model.PushEvent) error
}

// RelayUseCase defines the read operations served to the site
type RelayUseCase interface {
	// Contributions returns the raw contribution-calendar response for
	// a user, fetched from the GitHub GraphQL API with an installation
	// token.
	Contributions(ctx context.Context, username string) (json.RawMessage, error)

	// RecentActivity returns the most recent stored commits for a user
	// as push-event envelopes, optionally restricted to an allow-list
	// of repository names.
	RecentActivity(ctx context.Context, username string, includeRepos []string) ([]*model.Activity, error)
}
