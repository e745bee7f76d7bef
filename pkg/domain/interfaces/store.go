package interfaces

import (
	"context"
	"time"

	"github.com/dmleblanc/gitrelay/pkg/domain/model"
)

// CommitStore persists commit records keyed by (repo, timestamp).
// Records expire at their TTL; the store never updates them in place.
type CommitStore interface {
	// Put writes a commit record. Writing a key that already exists is
	// a no-op, not an error.
	Put(ctx context.Context, commit *model.Commit) error

	// Recent returns up to limit commit records authored by username,
	// most recent first.
	Recent(ctx context.Context, username string, limit int) ([]*model.Commit, error)

	Close() error
}

// PayloadArchive stores raw webhook delivery payloads for debugging
type PayloadArchive interface {
	Store(ctx context.Context, deliveryID string, receivedAt time.Time, payload []byte) error
}
