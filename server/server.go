package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-detect/models/postprocess"
)

//go:embed static/index.html
var indexHTML []byte

// uploadField is the multipart form field carrying the image bytes.
const uploadField = "image_file"

// Options carries the request handling limits.
type Options struct {
	// MaxUploadBytes caps the multipart form size.
	MaxUploadBytes int64
	// RequestTimeout bounds the inference step.
	RequestTimeout time.Duration
}

// Server is the HTTP front of the detection pipeline.
type Server struct {
	detector Detector
	logger   *zap.Logger
	opts     Options
	router   *mux.Router
}

// New builds the HTTP server around a detector.
func New(detector Detector, logger *zap.Logger, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 50 << 20
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	s := &Server{
		detector: detector,
		logger:   logger,
		opts:     opts,
		router:   mux.NewRouter(),
	}

	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/detect", s.handleDetect).Methods(http.MethodPost)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// handleDetect accepts a multipart upload and responds with a JSON
// array of [x1, y1, x2, y2, class_label, confidence] tuples.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		s.respondError(w, "failed to parse multipart form", http.StatusBadRequest, err)
		return
	}

	file, _, err := r.FormFile(uploadField)
	if err != nil {
		s.respondError(w, "missing "+uploadField+" form field", http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, "failed to read upload", http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	detections, err := s.detector.Detect(ctx, data)
	switch {
	case err == nil:
	case isBadImage(err):
		s.respondError(w, "uploaded bytes are not a valid image", http.StatusBadRequest, err)
		return
	case ctx.Err() != nil:
		s.respondError(w, "detection timed out", http.StatusGatewayTimeout, err)
		return
	default:
		s.respondError(w, "detection failed", http.StatusInternalServerError, err)
		return
	}

	s.logger.Info("detect request",
		zap.Int("upload_bytes", len(data)),
		zap.Int("detections", len(detections)),
		zap.Duration("elapsed", time.Since(start)),
	)
	respondJSON(w, toTuples(detections), http.StatusOK)
}

func (s *Server) respondError(w http.ResponseWriter, message string, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error(message, zap.Error(err))
	} else {
		s.logger.Warn(message, zap.Error(err))
	}
	respondJSON(w, map[string]string{"error": message}, status)
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// toTuples converts detections into the mixed-type response arrays.
// The result is never nil so an empty detection list encodes as [].
func toTuples(detections []postprocess.Detection) [][]interface{} {
	tuples := make([][]interface{}, 0, len(detections))
	for _, d := range detections {
		tuples = append(tuples, []interface{}{
			d.Box.X1, d.Box.Y1, d.Box.X2, d.Box.Y2, d.Label, d.Confidence,
		})
	}
	return tuples
}
