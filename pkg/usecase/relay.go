package usecase

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/dmleblanc/gitrelay/pkg/domain/interfaces"
	"github.com/dmleblanc/gitrelay/pkg/domain/model"
	"github.com/dmleblanc/gitrelay/pkg/domain/types"
)

const (
	// commitScanLimit bounds how many stored records one activity
	// request examines before filtering.
	commitScanLimit = 100

	// activityLimit is how many envelopes a response carries
	activityLimit = 10
)

type relayUseCase struct {
	store  interfaces.CommitStore
	issuer interfaces.TokenIssuer
	github interfaces.GitHubClient
}

// NewRelay creates a new instance of RelayUseCase
func NewRelay(store interfaces.CommitStore, issuer interfaces.TokenIssuer, github interfaces.GitHubClient) interfaces.RelayUseCase {
	return &relayUseCase{
		store:  store,
		issuer: issuer,
		github: github,
	}
}

// Contributions fetches the contribution calendar for a user with an
// installation token and returns the upstream response untouched.
func (uc *relayUseCase) Contributions(ctx context.Context, username string) (json.RawMessage, error) {
	token, err := uc.issuer.IssueInstallationToken(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to obtain installation token", goerr.T(types.ErrTagAuthFailed))
	}

	body, err := uc.github.QueryContributions(ctx, token.Token, username)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query contributions", goerr.V("username", username))
	}

	return body, nil
}

// RecentActivity returns the 10 most recent stored commits for a user
// mapped to push-event envelopes. includeRepos restricts results by
// repository short or full name when non-empty.
func (uc *relayUseCase) RecentActivity(ctx context.Context, username string, includeRepos []string) ([]*model.Activity, error) {
	commits, err := uc.store.Recent(ctx, username, commitScanLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load recent commits", goerr.V("username", username))
	}

	filtered := commits[:0:0]
	for _, commit := range commits {
		if commit.Author.Username != username {
			continue
		}
		if !commit.MatchesRepos(includeRepos) {
			continue
		}
		filtered = append(filtered, commit)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Timestamp > filtered[j].Timestamp
	})
	if len(filtered) > activityLimit {
		filtered = filtered[:activityLimit]
	}

	activities := make([]*model.Activity, 0, len(filtered))
	for _, commit := range filtered {
		activities = append(activities, model.NewActivity(commit))
	}

	ctxlog.From(ctx).Debug("Resolved recent activity",
		"username", username,
		"scanned", len(commits),
		"returned", len(activities),
	)

	return activities, nil
}
