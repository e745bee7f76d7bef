package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures so the HTTP layer can map them to a
// response status without inspecting error messages.
var (
	// ErrTagBadRequest marks malformed or missing caller input (400)
	ErrTagBadRequest = goerr.NewTag("bad_request")

	// ErrTagUnauthorized marks a failed webhook signature check (401)
	ErrTagUnauthorized = goerr.NewTag("unauthorized")

	// ErrTagAuthFailed marks credential or token-exchange failures
	// upstream. The caller cannot remediate these, so they surface as 500.
	ErrTagAuthFailed = goerr.NewTag("auth_failed")
)
