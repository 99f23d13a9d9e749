package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/scopekit/pkg/lifecycle"
	"github.com/specvital/scopekit/pkg/runner"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644)
	require.NoError(t, err)
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeConfig(t, `naming: hierarchical
patterns:
  - "group 2/**"
workers: 4
failFast: true
color: false
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.NamingHierarchical, cfg.Naming)
	assert.Equal(t, lifecycle.DefaultSeparator, cfg.Separator)
	assert.Equal(t, []string{"group 2/**"}, cfg.Patterns)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.FailFast)
	assert.False(t, cfg.ColorEnabled())
}

func TestLoad_Defaults(t *testing.T) {
	dir := writeConfig(t, "separator: \" / \"\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.NamingFlat, cfg.Naming)
	assert.Equal(t, " / ", cfg.Separator)
	assert.Equal(t, runner.DefaultWorkers, cfg.Workers)
	assert.True(t, cfg.ColorEnabled())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := writeConfig(t, "patterns: [yaml")

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "should reject unknown naming",
			content: "naming: tree\n",
			wantErr: "unknown naming",
		},
		{
			name:    "should reject malformed pattern",
			content: "patterns: [\"group[\"]\n",
			wantErr: "pattern",
		},
		{
			name:    "should reject negative workers",
			content: "workers: -1\n",
			wantErr: "workers must not be negative",
		},
		{
			name:    "should reject too many workers",
			content: "workers: 5000\n",
			wantErr: "workers must not exceed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSessionOptions(t *testing.T) {
	cfg := Default()
	cfg.Naming = lifecycle.NamingHierarchical
	cfg.Patterns = []string{"a/**"}

	opts := cfg.SessionOptions()
	assert.Len(t, opts, 2)

	var got lifecycle.Options
	for _, opt := range opts {
		opt(&got)
	}
	assert.Equal(t, lifecycle.HierarchicalNamer{}, got.Namer)
	assert.Equal(t, []string{"a/**"}, got.Patterns)
}

func TestRunnerOptions(t *testing.T) {
	off := false
	cfg := &Config{Workers: 3, FailFast: true, Color: &off}

	var got runner.Options
	for _, opt := range cfg.RunnerOptions() {
		opt(&got)
	}
	assert.Equal(t, 3, got.Workers)
	assert.True(t, got.FailFast)
	assert.True(t, got.NoColor)
}

func TestValidate_AfterOverride(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Naming = "nested"
	assert.ErrorIs(t, cfg.Validate(), lifecycle.ErrUnknownNaming)
}
