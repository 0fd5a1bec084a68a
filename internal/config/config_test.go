package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNoFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultModel, cfg.Generation.Model)
	assert.Equal(t, DefaultAudioBucket, cfg.Audio.Bucket)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultPregenWorkers, cfg.Pipeline.PregenWorkers)
}

func TestLoadMergesOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
generation:
  model: some-other-model
  target_band: 8.5
audio:
  bucket: my-audio
server:
  port: 9999
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".fluentband.yaml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "some-other-model", cfg.Generation.Model)
	assert.Equal(t, 8.5, cfg.Generation.TargetBand)
	assert.Equal(t, "my-audio", cfg.Audio.Bucket)
	assert.Equal(t, 9999, cfg.Server.Port)

	// Unset fields keep their defaults.
	assert.Equal(t, DefaultDifficulty, cfg.Generation.Difficulty)
	assert.Equal(t, DefaultAudioRegion, cfg.Audio.Region)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
}

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".fluentband.yaml"), []byte("server:\n  port: 7777\n"), 0644))

	cfg, err := Load(nested)
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.Port)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".fluentband.yaml"), []byte("server: [not a map"), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}
