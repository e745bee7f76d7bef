package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"github.com/dmleblanc/gitrelay/pkg/domain/model"
	"github.com/dmleblanc/gitrelay/pkg/domain/types"
)

// SecretManager loads the GitHub App credential bundle from Google
// Secret Manager. The bundle is stored as a single JSON document.
type SecretManager struct {
	client *secretmanager.Client
	name   string
}

// NewSecretManager creates a SecretStore backed by Secret Manager.
// name accepts either a full version resource
// (projects/P/secrets/S/versions/V) or a projects/P/secrets/S path, in
// which case the latest version is used.
func NewSecretManager(ctx context.Context, name string, opts ...option.ClientOption) (*SecretManager, error) {
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Secret Manager client")
	}

	if !strings.Contains(name, "/versions/") {
		name = fmt.Sprintf("%s/versions/latest", name)
	}

	return &SecretManager{
		client: client,
		name:   name,
	}, nil
}

// GetCredentials fetches and decodes the credential bundle
func (s *SecretManager) GetCredentials(ctx context.Context) (*model.Credentials, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: s.name,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to access secret version",
			goerr.T(types.ErrTagAuthFailed),
			goerr.V("secret", s.name),
		)
	}

	var creds model.Credentials
	if err := json.Unmarshal(resp.GetPayload().GetData(), &creds); err != nil {
		return nil, goerr.Wrap(err, "failed to decode credential bundle", goerr.T(types.ErrTagAuthFailed))
	}

	return &creds, nil
}

// Close releases the underlying client
func (s *SecretManager) Close() error {
	return s.client.Close()
}
