package github_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/dmleblanc/gitrelay/pkg/domain/model"
	githubinfra "github.com/dmleblanc/gitrelay/pkg/infra/github"
	"github.com/dmleblanc/gitrelay/pkg/infra/secrets"
)

func testPrivateKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	gt.NoError(t, err)

	block := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}
	return string(pem.EncodeToMemory(block))
}

func testCredentials(t *testing.T) *model.Credentials {
	t.Helper()
	return &model.Credentials{
		AppID:          "12345",
		PrivateKey:     testPrivateKeyPEM(t),
		InstallationID: "67890",
		WebhookSecret:  "hook-secret",
	}
}

func TestClient_IssueInstallationToken(t *testing.T) {
	var exchanges atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/app/installations/67890/access_tokens" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Error("missing bearer app JWT")
		}
		exchanges.Add(1)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":      "ghs_testtoken",
			"expires_at": time.Now().Add(time.Hour).Format(time.RFC3339),
		})
	}))
	defer server.Close()

	client := githubinfra.New(
		secrets.NewMemory(testCredentials(t)),
		githubinfra.WithAPIBase(server.URL),
	)

	ctx := context.Background()
	token, err := client.IssueInstallationToken(ctx)
	gt.NoError(t, err)
	gt.Value(t, token.Token).Equal("ghs_testtoken")

	// Second call hits the cache, not the API
	again, err := client.IssueInstallationToken(ctx)
	gt.NoError(t, err)
	gt.Value(t, again.Token).Equal("ghs_testtoken")
	gt.Number(t, exchanges.Load()).Equal(1)
}

func TestClient_IssueInstallationToken_ExpiredCacheRefreshes(t *testing.T) {
	var exchanges atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":      "ghs_testtoken",
			"expires_at": time.Now().Add(time.Hour).Format(time.RFC3339),
		})
	}))
	defer server.Close()

	now := time.Now()
	client := githubinfra.New(
		secrets.NewMemory(testCredentials(t)),
		githubinfra.WithAPIBase(server.URL),
		githubinfra.WithClock(func() time.Time { return now }),
	)

	ctx := context.Background()
	_, err := client.IssueInstallationToken(ctx)
	gt.NoError(t, err)

	// Advance past the upstream expiry; the cached token is discarded
	now = now.Add(2 * time.Hour)
	_, err = client.IssueInstallationToken(ctx)
	gt.NoError(t, err)
	gt.Number(t, exchanges.Load()).Equal(2)
}

func TestClient_IssueInstallationToken_ExchangeFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad credentials"}`))
	}))
	defer server.Close()

	client := githubinfra.New(
		secrets.NewMemory(testCredentials(t)),
		githubinfra.WithAPIBase(server.URL),
	)

	token, err := client.IssueInstallationToken(context.Background())
	gt.Error(t, err)
	gt.Value(t, token).Nil()
	gt.String(t, err.Error()).Contains("non-2xx")
}

func TestClient_IssueInstallationToken_SecretUnavailable(t *testing.T) {
	client := githubinfra.New(
		secrets.NewMemoryWithError(context.DeadlineExceeded),
	)

	token, err := client.IssueInstallationToken(context.Background())
	gt.Error(t, err)
	gt.Value(t, token).Nil()
	gt.String(t, err.Error()).Contains("credentials")
}

func TestClient_QueryContributions(t *testing.T) {
	respBody := `{"data":{"user":{"contributionsCollection":{"contributionCalendar":{"totalContributions":42,"weeks":[]}}}}}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graphql" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer ghs_testtoken" {
			t.Errorf("unexpected authorization: %s", r.Header.Get("Authorization"))
		}

		var req struct {
			Query     string            `json:"query"`
			Variables map[string]string `json:"variables"`
		}
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gt.Value(t, req.Variables["username"]).Equal("dmleblanc")
		gt.String(t, req.Query).Contains("contributionCalendar")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(respBody))
	}))
	defer server.Close()

	client := githubinfra.New(
		secrets.NewMemory(testCredentials(t)),
		githubinfra.WithAPIBase(server.URL),
	)

	body, err := client.QueryContributions(context.Background(), "ghs_testtoken", "dmleblanc")
	gt.NoError(t, err)
	gt.Value(t, string(body)).Equal(respBody)
}
