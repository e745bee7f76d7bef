package model

import (
	"strings"
	"time"
)

// CommitTTL is how long a stored commit record survives before the
// storage layer is allowed to reclaim it.
const CommitTTL = 30 * 24 * time.Hour

// CommitAuthor identifies who authored a stored commit
type CommitAuthor struct {
	Name     string `json:"name" firestore:"name"`
	Email    string `json:"email" firestore:"email"`
	Username string `json:"username" firestore:"username"`
}

// Commit is a single commit record persisted from a push event.
// Records are immutable after write; there is no update path. The pair
// (Repo, Timestamp) identifies a record uniquely within a push batch.
type Commit struct {
	Repo      string       `json:"repo" firestore:"repo"`
	Timestamp int64        `json:"timestamp" firestore:"timestamp"` // milliseconds since epoch
	TTL       int64        `json:"ttl" firestore:"ttl"`             // epoch seconds
	SHA       string       `json:"sha" firestore:"sha"`
	Message   string       `json:"message" firestore:"message"`
	URL       string       `json:"url" firestore:"url"`
	Author    CommitAuthor `json:"author" firestore:"author"`
	Added     []string     `json:"added" firestore:"added"`
	Removed   []string     `json:"removed" firestore:"removed"`
	Modified  []string     `json:"modified" firestore:"modified"`
}

// ShortRepo returns the repository name without its owner prefix,
// e.g. "dmleblanc/site" -> "site"
func (c *Commit) ShortRepo() string {
	if idx := strings.LastIndex(c.Repo, "/"); idx >= 0 {
		return c.Repo[idx+1:]
	}
	return c.Repo
}

// MatchesRepos reports whether the commit's repository appears in the
// allow-list, matching either the short name or the full "owner/name"
// path. An empty allow-list matches everything.
func (c *Commit) MatchesRepos(allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	short := c.ShortRepo()
	for _, name := range allowed {
		if name == short || name == c.Repo {
			return true
		}
	}
	return false
}
