package archive

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
)

// GCS archives raw webhook delivery payloads to a Cloud Storage bucket
// for delivery debugging. Objects are keyed by receipt date and
// delivery ID.
type GCS struct {
	bucket *storage.BucketHandle
}

// NewGCS creates a payload archive writing to the named bucket
func NewGCS(ctx context.Context, bucketName string, opts ...option.ClientOption) (*GCS, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}

	return &GCS{
		bucket: client.Bucket(bucketName),
	}, nil
}

// Store writes one delivery payload
func (g *GCS) Store(ctx context.Context, deliveryID string, receivedAt time.Time, payload []byte) error {
	name := fmt.Sprintf("deliveries/%s/%s.json", receivedAt.UTC().Format("2006-01-02"), deliveryID)

	w := g.bucket.Object(name).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(payload); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write delivery payload", goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize delivery payload", goerr.V("object", name))
	}

	return nil
}
