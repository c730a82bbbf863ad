// Package main provides the HTTP API server for the EMI eligibility engine.
// It serves single and batch predictions, the feature schema, health and metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"emi-eligibility-engine/internal/config"
	"emi-eligibility-engine/internal/handlers"
	"emi-eligibility-engine/internal/utils"
)

const (
	maxUploadBytes  = 10 << 20 // 10MB
	maxJSONBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Server holds all dependencies
type Server struct {
	svc    *handlers.Service
	logger *zap.Logger
}

type requestIDKey struct{}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := handlers.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to start prediction service", zap.Error(err))
	}

	server := &Server{svc: svc, logger: logger}

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", addr),
			zap.String("stage", cfg.Stage),
			zap.String("model_source", cfg.ModelSource),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// routes builds the API handler with CORS and request logging applied.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/api/health", s.healthHandler)

	mux.HandleFunc("/api/schema", s.schemaHandler)
	mux.HandleFunc("/api/predict", s.predictHandler)
	mux.HandleFunc("/api/predict/batch", s.batchHandler)

	mux.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	return c.Handler(s.withRequestID(mux))
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID)))

		s.logger.Debug("Handled request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return id
	}
	return uuid.New().String()
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, resp := s.svc.Health()
	writeJSON(w, status, resp)
}

func (s *Server) schemaHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	status, resp := s.svc.Schema()
	writeJSON(w, status, resp)
}

func (s *Server) predictHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	if err != nil {
		if isTooLarge(err) {
			payloadTooLarge(w, maxJSONBytes)
			return
		}
		writeJSON(w, http.StatusBadRequest, handlers.Response{
			Success: false,
			Error:   "Failed to read body",
			Code:    handlers.CodeInvalidRequest,
		})
		return
	}

	status, resp := s.svc.Predict(requestID(r), body)
	writeJSON(w, status, resp)
}

func (s *Server) batchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	content, err := readCSV(r)
	if isTooLarge(err) {
		payloadTooLarge(w, maxUploadBytes)
		return
	}
	if err != nil {
		s.logger.Warn("Failed to read CSV upload", zap.String("request_id", requestID(r)), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, handlers.Response{
			Success: false,
			Error:   err.Error(),
			Code:    handlers.CodeInvalidCSV,
		})
		return
	}

	status, resp := s.svc.PredictBatch(requestID(r), content)
	writeJSON(w, status, resp)
}

// readCSV accepts a multipart upload in the "file" field or a raw CSV body.
func readCSV(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return "", fmt.Errorf("failed to parse form: %w", err)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			return "", errors.New("no file provided")
		}
		defer file.Close()

		if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
			return "", errors.New("only CSV files are allowed")
		}

		content, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	}

	content, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(content), nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func payloadTooLarge(w http.ResponseWriter, limit int64) {
	writeJSON(w, http.StatusRequestEntityTooLarge, handlers.Response{
		Success: false,
		Error:   fmt.Sprintf("Request body exceeds %d bytes", limit),
		Code:    handlers.CodePayloadTooLarge,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, handlers.Response{
		Success: false,
		Error:   "Method not allowed",
		Code:    handlers.CodeInvalidRequest,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		utils.GetLogger().Error("Failed to encode response", zap.Error(err))
	}
}
