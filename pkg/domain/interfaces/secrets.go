package interfaces

import (
	"context"

	"github.com/dmleblanc/gitrelay/pkg/domain/model"
)

// SecretStore loads the GitHub App credential bundle
type SecretStore interface {
	GetCredentials(ctx context.Context) (*model.Credentials, error)
}
