package model

import "time"

// Credentials is the GitHub App credential bundle loaded from the
// secret store. PrivateKey is a PEM-encoded RSA private key.
type Credentials struct {
	AppID          string `json:"appId"`
	PrivateKey     string `json:"privateKey" masq:"secret"`
	InstallationID string `json:"installationId"`
	WebhookSecret  string `json:"webhookSecret" masq:"secret"`
}

// InstallationToken is a short-lived bearer credential for one GitHub
// App installation. It is never persisted.
type InstallationToken struct {
	Token     string    `json:"token" masq:"secret"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token should no longer be used at the
// given time. The margin keeps a token from expiring mid-request.
func (t *InstallationToken) Expired(now time.Time, margin time.Duration) bool {
	return !now.Add(margin).Before(t.ExpiresAt)
}
