package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/dmleblanc/gitrelay/pkg/domain/interfaces"
	"github.com/dmleblanc/gitrelay/pkg/domain/model"
)

// WebhookHandler handles GitHub webhook deliveries
type WebhookHandler struct {
	secrets  interfaces.SecretStore
	ingestUC interfaces.IngestUseCase
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secrets interfaces.SecretStore, ingestUC interfaces.IngestUseCase) *WebhookHandler {
	return &WebhookHandler{
		secrets:  secrets,
		ingestUC: ingestUC,
	}
}

// Handle processes webhook requests. Only push events are persisted;
// every other event type is acknowledged without side effects.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// http.Header lookup is case-insensitive
	if signature := r.Header.Get("X-Hub-Signature-256"); signature != "" {
		if !h.verifySignature(ctx, body, signature) {
			logger.Warn("Invalid webhook signature")
			writeError(w, goerr.New("invalid signature"), http.StatusUnauthorized)
			return
		}
	}

	eventType := github.WebHookType(r)
	if eventType != "push" {
		logger.Info("Ignoring unsupported event type", "event_type", eventType)
		writeSuccess(w, logger)
		return
	}

	var payload github.PushEvent
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Error("Failed to parse push payload", "error", err)
		writeError(w, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
		return
	}

	deliveryID := github.DeliveryID(r)
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}

	event := toPushEvent(&payload, deliveryID, body)
	if err := h.ingestUC.IngestPush(ctx, event); err != nil {
		logger.Error("Failed to process push event", "error", err, "delivery_id", deliveryID)
		writeError(w, goerr.New("internal server error"), http.StatusInternalServerError)
		return
	}

	writeSuccess(w, logger)
}

// verifySignature checks the HMAC-SHA256 signature over the raw body.
// Verification passes when the webhook secret is missing or cannot be
// loaded; unsigned operation is an accepted deployment mode.
func (h *WebhookHandler) verifySignature(ctx context.Context, payload []byte, signature string) bool {
	creds, err := h.secrets.GetCredentials(ctx)
	if err != nil {
		ctxlog.From(ctx).Warn("Webhook secret unavailable, skipping signature verification", "error", err)
		return true
	}
	if creds.WebhookSecret == "" {
		ctxlog.From(ctx).Warn("No webhook secret configured, skipping signature verification")
		return true
	}

	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(creds.WebhookSecret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expectedMAC))
}

// toPushEvent extracts the fields the ingest path needs, nil-safe via
// the SDK's Get helpers
func toPushEvent(payload *github.PushEvent, deliveryID string, rawBody []byte) *model.PushEvent {
	event := &model.PushEvent{
		DeliveryID: deliveryID,
		Repository: payload.GetRepo().GetFullName(),
		ReceivedAt: time.Now(),
		RawPayload: rawBody,
	}

	for _, c := range payload.Commits {
		event.Commits = append(event.Commits, model.PushCommit{
			SHA:               c.GetID(),
			Message:           c.GetMessage(),
			URL:               c.GetURL(),
			AuthorName:        c.GetAuthor().GetName(),
			AuthorEmail:       c.GetAuthor().GetEmail(),
			AuthorUsername:    c.GetAuthor().GetLogin(),
			CommitterEmail:    c.GetCommitter().GetEmail(),
			CommitterUsername: c.GetCommitter().GetLogin(),
			Added:             c.Added,
			Removed:           c.Removed,
			Modified:          c.Modified,
		})
	}

	return event
}
