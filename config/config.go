// Package config - Service configuration loading.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-detect/models/yolo"
	"github.com/nvr-ai/go-detect/onnx"
)

// Duration wraps time.Duration so YAML values like "5s" parse directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the full service configuration.
type Config struct {
	// ListenAddress is the HTTP bind address, e.g. ":8080".
	ListenAddress string `yaml:"listen_address"`
	// RequestTimeout bounds the inference step of a request.
	RequestTimeout Duration `yaml:"request_timeout"`
	// MaxUploadBytes caps the multipart form size.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	// Model describes the ONNX session to load.
	Model onnx.Config `yaml:"model"`
	// Decode carries the detection decode thresholds.
	Decode yolo.Config `yaml:"decode"`
	// IoUThreshold is the NMS overlap threshold.
	IoUThreshold float32 `yaml:"iou_threshold"`
}

// Default returns production defaults for the pretrained COCO models.
func Default() Config {
	return Config{
		ListenAddress:  ":8080",
		RequestTimeout: Duration(10 * time.Second),
		MaxUploadBytes: 50 << 20,
		Model:          onnx.DefaultConfig(),
		Decode:         yolo.DefaultConfig(),
		IoUThreshold:   0.7,
	}
}

// Load reads a YAML config file over the defaults, then applies
// environment overrides for the common deployment knobs. An empty path
// skips the file and returns defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LISTEN_ADDRESS"); v != "" {
		cfg.ListenAddress = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		cfg.Model.ModelPath = v
	}
	if v := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); v != "" {
		cfg.Model.SharedLibraryPath = v
	}
}
