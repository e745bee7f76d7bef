package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// Policy is the optional server-side relay policy, loaded from a TOML
// file. Zero values fall back to the built-in defaults.
type Policy struct {
	// CORSOrigin overrides the --cors-origin flag when set
	CORSOrigin string `toml:"cors_origin"`

	// Cache lifetimes in seconds for the two relay paths
	ContributionsMaxAge int `toml:"cache_max_age_contributions"`
	ActivityMaxAge      int `toml:"cache_max_age_activity"`

	// DefaultRepos restricts activity responses when the caller sends
	// no includeRepos parameter
	DefaultRepos []string `toml:"default_repos"`
}

// DefaultPolicy returns the policy used when no file is configured.
// The activity path caches briefly since it reflects near-real-time
// webhook writes; the contributions path can cache longer.
func DefaultPolicy() *Policy {
	return &Policy{
		ContributionsMaxAge: 300,
		ActivityMaxAge:      60,
	}
}

// LoadPolicy reads a policy file, filling unset fields with defaults
func LoadPolicy(path string) (*Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", path))
	}

	var loaded Policy
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy file", goerr.V("path", path))
	}

	if loaded.CORSOrigin != "" {
		policy.CORSOrigin = loaded.CORSOrigin
	}
	if loaded.ContributionsMaxAge > 0 {
		policy.ContributionsMaxAge = loaded.ContributionsMaxAge
	}
	if loaded.ActivityMaxAge > 0 {
		policy.ActivityMaxAge = loaded.ActivityMaxAge
	}
	if len(loaded.DefaultRepos) > 0 {
		policy.DefaultRepos = loaded.DefaultRepos
	}

	return policy, nil
}
