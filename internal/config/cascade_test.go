package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCascadeConfigDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	holder, err := NewCascadeConfigHolder(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultCascadeConfig(), holder.Get())
}

func TestCascadeConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	body := "cascade:\n  parallelProgrammes: true\n  maxConcurrency: 8\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cascade.yml"), []byte(body), 0o600))

	holder, err := NewCascadeConfigHolder(zap.NewNop())
	require.NoError(t, err)

	cfg := holder.Get()
	assert.True(t, cfg.ParallelProgrammes)
	assert.Equal(t, 8, cfg.MaxConcurrency)
}

func TestCascadeConfigRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	body := "cascade:\n  maxConcurrency: 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cascade.yml"), []byte(body), 0o600))

	_, err := NewCascadeConfigHolder(zap.NewNop())
	assert.Error(t, err)
}

func TestLoadNormalizesStore(t *testing.T) {
	t.Setenv("DOCUMENT_STORE", "Dynamo")
	t.Setenv("REDIS_ADDR", "")
	cfg := Load()
	assert.Equal(t, StoreDynamo, cfg.DocumentStore)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, DefaultCallerHeader, cfg.CallerHeader)
}
