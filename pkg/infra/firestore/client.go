package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmleblanc/gitrelay/pkg/domain/model"
)

// DefaultCollection is the Firestore collection holding commit records
const DefaultCollection = "commits"

// Client is a CommitStore backed by Cloud Firestore. Expiry relies on a
// TTL policy over the expires_at field (applied by the configure
// command); the ttl field keeps the raw epoch seconds of the record
// contract.
type Client struct {
	client     *firestore.Client
	collection string
}

// commitDoc is the stored document layout. It mirrors model.Commit plus
// the timestamp field the Firestore TTL policy operates on.
type commitDoc struct {
	model.Commit
	ExpiresAt time.Time `firestore:"expires_at"`
}

// New creates a Firestore-backed commit store
func New(ctx context.Context, projectID, databaseID, collection string, opts ...option.ClientOption) (*Client, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client",
			goerr.V("project", projectID),
			goerr.V("database", databaseID),
		)
	}

	return &Client{
		client:     client,
		collection: collection,
	}, nil
}

// docID derives the document key from the (repo, timestamp) identity.
// Firestore document IDs cannot contain "/".
func docID(c *model.Commit) string {
	return fmt.Sprintf("%s@%d", strings.ReplaceAll(c.Repo, "/", ":"), c.Timestamp)
}

// Put writes one commit record. A record that already exists under the
// same key is left untouched: webhook deliveries are at-least-once, and
// records are immutable after first write.
func (c *Client) Put(ctx context.Context, commit *model.Commit) error {
	doc := commitDoc{
		Commit:    *commit,
		ExpiresAt: time.Unix(commit.TTL, 0).UTC(),
	}

	_, err := c.client.Collection(c.collection).Doc(docID(commit)).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			ctxlog.From(ctx).Debug("commit record already stored",
				"repo", commit.Repo,
				"timestamp", commit.Timestamp,
			)
			return nil
		}
		return goerr.Wrap(err, "failed to write commit record",
			goerr.V("repo", commit.Repo),
			goerr.V("sha", commit.SHA),
		)
	}

	return nil
}

// Recent returns up to limit commits authored by username, newest
// first. The query needs the composite index over author.username and
// timestamp that the configure command provisions.
func (c *Client) Recent(ctx context.Context, username string, limit int) ([]*model.Commit, error) {
	query := c.client.Collection(c.collection).
		Where("author.username", "==", username).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var commits []*model.Commit
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate commit records", goerr.V("username", username))
		}

		var doc commitDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode commit record", goerr.V("doc", snap.Ref.ID))
		}
		commit := doc.Commit
		commits = append(commits, &commit)
	}

	return commits, nil
}

// Close releases the underlying Firestore client
func (c *Client) Close() error {
	return c.client.Close()
}
