package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/dmleblanc/gitrelay/pkg/cli/config"
)

func TestLoadPolicy_Defaults(t *testing.T) {
	policy, err := config.LoadPolicy("")
	gt.NoError(t, err)
	gt.Number(t, policy.ContributionsMaxAge).Equal(300)
	gt.Number(t, policy.ActivityMaxAge).Equal(60)
	gt.Number(t, len(policy.DefaultRepos)).Equal(0)
}

func TestLoadPolicy_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.toml")
	content := `
cors_origin = "https://blancpagesolutions.com"
cache_max_age_activity = 30
default_repos = ["site", "tools"]
`
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600))

	policy, err := config.LoadPolicy(path)
	gt.NoError(t, err)
	gt.Value(t, policy.CORSOrigin).Equal("https://blancpagesolutions.com")
	gt.Number(t, policy.ActivityMaxAge).Equal(30)
	// Unset fields keep their defaults
	gt.Number(t, policy.ContributionsMaxAge).Equal(300)
	gt.Value(t, policy.DefaultRepos).Equal([]string{"site", "tools"})
}

func TestLoadPolicy_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.toml")
	gt.NoError(t, os.WriteFile(path, []byte("cors_origin = ["), 0600))

	_, err := config.LoadPolicy(path)
	gt.Error(t, err)
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	_, err := config.LoadPolicy(filepath.Join(t.TempDir(), "nope.toml"))
	gt.Error(t, err)
}
