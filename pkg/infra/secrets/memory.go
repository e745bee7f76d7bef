package secrets

import (
	"context"

	"github.com/dmleblanc/gitrelay/pkg/domain/model"
)

// Memory is an in-process SecretStore for tests and local development
type Memory struct {
	creds *model.Credentials
	err   error
}

// NewMemory returns a SecretStore serving a fixed credential bundle
func NewMemory(creds *model.Credentials) *Memory {
	return &Memory{creds: creds}
}

// NewMemoryWithError returns a SecretStore that always fails, for
// exercising the fail-open verification path
func NewMemoryWithError(err error) *Memory {
	return &Memory{err: err}
}

func (m *Memory) GetCredentials(ctx context.Context) (*model.Credentials, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.creds, nil
}
