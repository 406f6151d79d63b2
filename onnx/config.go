// Package onnx - ONNX Runtime session management for detection models.
package onnx

import "runtime"

// Config describes the model to load and its tensor geometry.
type Config struct {
	// ModelPath is the path to the .onnx model file.
	ModelPath string `json:"model_path" yaml:"model_path"`
	// SharedLibraryPath overrides the ONNX Runtime shared library
	// location. Empty selects a platform default.
	SharedLibraryPath string `json:"shared_library_path" yaml:"shared_library_path"`
	// InputSize is the square input resolution (model input is
	// [1, 3, InputSize, InputSize]).
	InputSize int `json:"input_size" yaml:"input_size"`
	// ClassCount is K, the number of class score columns.
	ClassCount int `json:"class_count" yaml:"class_count"`
	// AnchorCount is N, the number of candidate rows the model emits
	// (model output is [1, 4+ClassCount, AnchorCount]).
	AnchorCount int `json:"anchor_count" yaml:"anchor_count"`
	// InputName and OutputName are the graph tensor names.
	InputName  string `json:"input_name" yaml:"input_name"`
	OutputName string `json:"output_name" yaml:"output_name"`
}

// DefaultConfig returns the geometry of the pretrained 80-class YOLO
// exports this service ships with.
func DefaultConfig() Config {
	return Config{
		InputSize:   640,
		ClassCount:  80,
		AnchorCount: 8400,
		InputName:   "images",
		OutputName:  "output0",
	}
}

// sharedLibPath returns the configured ONNX Runtime library path, or
// the conventional third_party location for this OS/arch.
func (c Config) sharedLibPath() string {
	if c.SharedLibraryPath != "" {
		return c.SharedLibraryPath
	}
	if runtime.GOOS == "windows" && runtime.GOARCH == "amd64" {
		return "third_party/onnxruntime.dll"
	}
	if runtime.GOOS == "darwin" {
		if runtime.GOARCH == "arm64" {
			return "third_party/onnxruntime_arm64.dylib"
		}
		return "third_party/onnxruntime_amd64.dylib"
	}
	if runtime.GOOS == "linux" && runtime.GOARCH == "arm64" {
		return "third_party/onnxruntime_arm64.so"
	}
	return "third_party/onnxruntime.so"
}
