package model

import (
	"strings"
	"time"
)

const noReplyDomain = "@users.noreply.github.com"

// PushEvent represents a push webhook delivery after extraction from the
// GitHub payload
type PushEvent struct {
	DeliveryID string       // X-GitHub-Delivery header, or synthesized
	Repository string       // Full "owner/name" path
	ReceivedAt time.Time    // Time when the delivery was received
	Commits    []PushCommit // Commits in original payload order
	RawPayload []byte       // Raw JSON body of the delivery
}

// PushCommit is one commit entry of a push event payload
type PushCommit struct {
	SHA               string
	Message           string
	URL               string
	AuthorName        string
	AuthorEmail       string
	AuthorUsername    string
	CommitterEmail    string
	CommitterUsername string
	Added             []string
	Removed           []string
	Modified          []string
}

// ResolveUsername resolves the commit author's username through a
// fallback chain: explicit author username, committer username, the
// local part of a GitHub no-reply email, the local part of any email,
// and finally "unknown".
func (c *PushCommit) ResolveUsername() string {
	if c.AuthorUsername != "" {
		return c.AuthorUsername
	}
	if c.CommitterUsername != "" {
		return c.CommitterUsername
	}

	emails := []string{c.AuthorEmail, c.CommitterEmail}
	for _, email := range emails {
		if strings.HasSuffix(email, noReplyDomain) {
			return noReplyLocalPart(email)
		}
	}
	for _, email := range emails {
		if local, ok := localPart(email); ok {
			return local
		}
	}

	return "unknown"
}

// noReplyLocalPart extracts the login from a no-reply address. GitHub
// issues both "login@users.noreply.github.com" and
// "12345+login@users.noreply.github.com" forms.
func noReplyLocalPart(email string) string {
	local := strings.TrimSuffix(email, noReplyDomain)
	if idx := strings.LastIndex(local, "+"); idx >= 0 {
		return local[idx+1:]
	}
	return local
}

func localPart(email string) (string, bool) {
	idx := strings.Index(email, "@")
	if idx <= 0 {
		return "", false
	}
	return email[:idx], true
}

// Records builds the commit records to persist for this event. Each
// commit at position i receives the synthetic timestamp receivedAt+i
// milliseconds so that records within one batch never collide on the
// (repo, timestamp) key, and a TTL of receipt time plus CommitTTL.
func (e *PushEvent) Records(receivedAt time.Time) []*Commit {
	records := make([]*Commit, 0, len(e.Commits))
	baseMillis := receivedAt.UnixMilli()
	expiry := receivedAt.Unix() + int64(CommitTTL.Seconds())

	for i, pc := range e.Commits {
		records = append(records, &Commit{
			Repo:      e.Repository,
			Timestamp: baseMillis + int64(i),
			TTL:       expiry,
			SHA:       pc.SHA,
			Message:   pc.Message,
			URL:       pc.URL,
			Author: CommitAuthor{
				Name:     pc.AuthorName,
				Email:    pc.AuthorEmail,
				Username: pc.ResolveUsername(),
			},
			Added:    emptyIfNil(pc.Added),
			Removed:  emptyIfNil(pc.Removed),
			Modified: emptyIfNil(pc.Modified),
		})
	}

	return records
}

func emptyIfNil(paths []string) []string {
	if paths == nil {
		return []string{}
	}
	return paths
}
