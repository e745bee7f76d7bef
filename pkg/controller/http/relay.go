package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/dmleblanc/gitrelay/pkg/domain/interfaces"
	"github.com/dmleblanc/gitrelay/pkg/domain/types"
)

// RelayHandler serves the read path: contribution calendar and recent
// commit activity, with per-endpoint cache lifetimes.
type RelayHandler struct {
	relayUC             interfaces.RelayUseCase
	defaultRepos        []string
	contributionsMaxAge int
	activityMaxAge      int
}

// NewRelayHandler creates a new RelayHandler
func NewRelayHandler(relayUC interfaces.RelayUseCase, defaultRepos []string, contributionsMaxAge, activityMaxAge int) *RelayHandler {
	return &RelayHandler{
		relayUC:             relayUC,
		defaultRepos:        defaultRepos,
		contributionsMaxAge: contributionsMaxAge,
		activityMaxAge:      activityMaxAge,
	}
}

// Handle dispatches a relay request by its endpoint parameter
func (h *RelayHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	query := r.URL.Query()
	username := query.Get("username")
	if username == "" {
		writeError(w, goerr.New("username is required", goerr.T(types.ErrTagBadRequest)), http.StatusBadRequest)
		return
	}

	switch endpoint := query.Get("endpoint"); endpoint {
	case "contributions":
		body, err := h.relayUC.Contributions(ctx, username)
		if err != nil {
			logger.Error("Failed to relay contributions", "error", err, "username", username)
			sentry.CaptureException(err)
			writeError(w, err, http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, logger, body, h.contributionsMaxAge)

	case "events", "commits":
		includeRepos := h.defaultRepos
		if raw := query.Get("includeRepos"); raw != "" {
			includeRepos = splitRepos(raw)
		}

		activities, err := h.relayUC.RecentActivity(ctx, username, includeRepos)
		if err != nil {
			logger.Error("Failed to relay recent activity", "error", err, "username", username)
			sentry.CaptureException(err)
			writeError(w, err, http.StatusInternalServerError)
			return
		}

		body, err := json.Marshal(activities)
		if err != nil {
			logger.Error("Failed to encode activity response", "error", err)
			writeError(w, err, http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, logger, body, h.activityMaxAge)

	default:
		writeError(w, goerr.New(
			fmt.Sprintf("invalid endpoint %q: use \"contributions\", \"events\", or \"commits\"", endpoint),
			goerr.T(types.ErrTagBadRequest),
		), http.StatusBadRequest)
	}
}

func (h *RelayHandler) writeJSON(w http.ResponseWriter, logger *slog.Logger, body []byte, maxAge int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Error("Failed to write relay response", "error", err)
	}
}

func splitRepos(raw string) []string {
	parts := strings.Split(raw, ",")
	repos := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			repos = append(repos, name)
		}
	}
	return repos
}
