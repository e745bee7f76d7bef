package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/dmleblanc/gitrelay/pkg/domain/interfaces"
	"github.com/dmleblanc/gitrelay/pkg/domain/model"
	"github.com/dmleblanc/gitrelay/pkg/utils/async"
)

type ingestUseCase struct {
	store   interfaces.CommitStore
	archive interfaces.PayloadArchive
	now     func() time.Time
}

// IngestOption is a functional option for the ingest use case
type IngestOption func(*ingestUseCase)

// WithArchive enables raw payload archiving for ingested deliveries
func WithArchive(archive interfaces.PayloadArchive) IngestOption {
	return func(uc *ingestUseCase) {
		uc.archive = archive
	}
}

// WithClock overrides the receipt time source
func WithClock(now func() time.Time) IngestOption {
	return func(uc *ingestUseCase) {
		uc.now = now
	}
}

// NewIngest creates a new instance of IngestUseCase
func NewIngest(store interfaces.CommitStore, opts ...IngestOption) interfaces.IngestUseCase {
	uc := &ingestUseCase{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// IngestPush persists the commits of a push event. Commits keep their
// payload order; commit i gets the synthetic timestamp receipt+i so
// keys within the batch never collide. A failing write is logged and
// skipped, it must not abort the rest of the batch.
func (uc *ingestUseCase) IngestPush(ctx context.Context, event *model.PushEvent) error {
	logger := ctxlog.From(ctx)

	if event.Repository == "" {
		return goerr.New("push event missing repository name", goerr.V("delivery_id", event.DeliveryID))
	}

	receipt := uc.now()
	records := event.Records(receipt)

	logger.Info("Processing push event",
		"delivery_id", event.DeliveryID,
		"repository", event.Repository,
		"commits", len(records),
	)

	var failed int
	for i, record := range records {
		if err := uc.store.Put(ctx, record); err != nil {
			failed++
			logger.Error("Failed to store commit",
				"error", err,
				"position", i,
				"sha", record.SHA,
				"repository", record.Repo,
			)
			continue
		}

		logger.Debug("Stored commit",
			"sha", record.SHA,
			"timestamp", record.Timestamp,
		)
	}

	if uc.archive != nil && len(event.RawPayload) > 0 {
		payload := event.RawPayload
		deliveryID := event.DeliveryID
		async.Dispatch(ctx, "archive-delivery", func(taskCtx context.Context) error {
			return uc.archive.Store(taskCtx, deliveryID, receipt, payload)
		})
	}

	logger.Info("Push event processed",
		"delivery_id", event.DeliveryID,
		"stored", len(records)-failed,
		"failed", failed,
	)

	return nil
}
