package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 32, cfg.Projection.Zone)
	assert.False(t, cfg.Projection.South)
	assert.Equal(t, 20, cfg.Similarity.ResamplePoints)
	assert.Equal(t, 50.0, cfg.Matching.BucketSize)
	assert.Equal(t, 1, cfg.Matching.FirstID)
	assert.Equal(t, 10, cfg.Matching.LastID)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 10, cfg.Plot.MaxID)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
projection:
  zone: 33
similarity:
  resample_points: 50
logging:
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 33, cfg.Projection.Zone)
	assert.Equal(t, 50, cfg.Similarity.ResamplePoints)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 50.0, cfg.Matching.BucketSize, "Unset keys keep their default")
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("EVAL__PROJECTION__ZONE", "31")
	t.Setenv("EVAL__MATCHING__BUCKET_SIZE", "25")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 31, cfg.Projection.Zone)
	assert.Equal(t, 25.0, cfg.Matching.BucketSize)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("projection:\n  zone: 33\n"), 0o644))
	t.Setenv("EVAL__PROJECTION__ZONE", "34")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 34, cfg.Projection.Zone)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	t.Chdir(t.TempDir())
	cfg, err := Load(DefaultFile)
	require.NoError(t, err, "The default file is optional")
	assert.Equal(t, 32, cfg.Projection.Zone)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Projection.Zone = 61
	cfg.Similarity.ResamplePoints = 1
	cfg.Matching.BucketSize = 0
	cfg.Matching.FirstID = 11
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"
	cfg.Plot.WidthInches = 0
	cfg.Plot.MaxID = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 8, "Every problem is reported")
	assert.Contains(t, err.Error(), "projection.zone")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("EVAL__SIMILARITY__RESAMPLE_POINTS", "1")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resample_points")
}
