package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.ListenAddress)
	assert.Equal(t, 10*time.Second, time.Duration(cfg.RequestTimeout))
	assert.Equal(t, 640, cfg.Model.InputSize)
	assert.Equal(t, 80, cfg.Model.ClassCount)
	assert.Equal(t, 8400, cfg.Model.AnchorCount)
	assert.Equal(t, float32(0.5), cfg.Decode.ConfidenceThreshold)
	assert.Equal(t, float32(0.7), cfg.IoUThreshold)
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_address: ":9090"
request_timeout: 2s
model:
  model_path: /models/yolov8n.onnx
  class_count: 3
decode:
  confidence_threshold: 0.25
iou_threshold: 0.45
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddress)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.RequestTimeout))
	assert.Equal(t, "/models/yolov8n.onnx", cfg.Model.ModelPath)
	assert.Equal(t, 3, cfg.Model.ClassCount)
	assert.Equal(t, float32(0.25), cfg.Decode.ConfidenceThreshold)
	assert.Equal(t, float32(0.45), cfg.IoUThreshold)
	// Untouched fields keep their defaults.
	assert.Equal(t, 8400, cfg.Model.AnchorCount)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDRESS", ":7070")
	t.Setenv("MODEL_PATH", "/opt/models/det.onnx")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ListenAddress)
	assert.Equal(t, "/opt/models/det.onnx", cfg.Model.ModelPath)
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("request_timeout: soon\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}
