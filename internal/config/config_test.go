package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliffadillah/durian-leaf-classification/internal/segment"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, segment.DefaultThresholds(), c.Segmentation.Thresholds.Segment())
	assert.Equal(t, 5, c.Ranking.TopK)
	assert.Equal(t, int64(16<<20), c.Server.MaxUploadBytes)
	assert.Equal(t, int64(40_000_000), c.Server.MaxPixels)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
artifacts:
  scaler: /srv/leaf/scaler.json
segmentation:
  thresholds:
    hue_min: 30
staging:
  enabled: true
  retry_delay: 250ms
ranking:
  top_k: 3
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", c.Server.Port)
	assert.Equal(t, "/srv/leaf/scaler.json", c.Artifacts.Scaler)
	assert.Equal(t, 30, c.Segmentation.Thresholds.HueMin)
	assert.Equal(t, 95, c.Segmentation.Thresholds.HueMax)
	assert.True(t, c.Staging.Enabled)
	assert.Equal(t, 250*time.Millisecond, c.Staging.RetryDelay)
	assert.Equal(t, 3, c.Ranking.TopK)
	// untouched keys keep defaults
	assert.Equal(t, "models/model.onnx", c.Artifacts.Model)
	assert.Equal(t, []string{"png", "jpg", "jpeg", "gif", "bmp"}, c.Server.AllowedExtensions)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9000\"\n")
	t.Setenv("LEAF_RANKING_TOP_K", "7")
	t.Setenv("LEAF_LOG_DEBUG", "true")
	t.Setenv("PORT", "7070")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Ranking.TopK)
	assert.True(t, c.Log.Debug)
	assert.Equal(t, "7070", c.Server.Port)

	t.Setenv("LEAF_SERVER_PORT", "6060")
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "6060", c.Server.Port)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"thresholds": "segmentation:\n  thresholds:\n    hue_min: 120\n    hue_max: 20\n",
		"backend":    "segmentation:\n  backend: cuda\n",
		"driver":     "dataset:\n  driver: sqlite\n  dsn: x\n",
		"dsn":        "dataset:\n  driver: mysql\n",
		"top_k":      "ranking:\n  top_k: 0\n",
		"max_pixels": "server:\n  max_pixels: 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestAllowsExtension(t *testing.T) {
	s := Default().Server
	assert.True(t, s.AllowsExtension(".JPG"))
	assert.True(t, s.AllowsExtension("bmp"))
	assert.False(t, s.AllowsExtension(".tiff"))
	assert.False(t, s.AllowsExtension(""))
}
