package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/job-intel/internal/fetch"
	"github.com/jonathan/job-intel/internal/pipeline"
	"github.com/jonathan/job-intel/internal/types"
)

type healthResponse struct {
	Status string           `json:"status"`
	Cache  fetch.CacheStats `json:"cache"`
}

// handleHealth returns server health status and fetch cache counters.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.cache != nil {
		resp.Cache = s.cache.Stats()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleAnalyze runs one analysis.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	requestID := RequestID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var req types.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.jsonResponse(w, http.StatusRequestEntityTooLarge, errorBody{
				Error:     "request too large",
				Message:   fmt.Sprintf("body exceeds %d bytes", MaxBodyBytes),
				RequestID: requestID,
			})
			return
		}
		s.jsonResponse(w, http.StatusBadRequest, errorBody{
			Error:     "malformed request",
			Message:   "body must be a JSON analyze request",
			RequestID: requestID,
		})
		return
	}

	ctx := r.Context()
	if requestID != "" {
		ctx = pipeline.ContextWithRequestID(ctx, requestID)
	}
	resp, err := s.analyzer.Analyze(ctx, &req)
	if err != nil {
		status := HTTPStatus(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("analysis failed", zap.String("request_id", requestID), zap.Error(err))
		} else {
			s.logger.Info("analysis rejected",
				zap.String("request_id", requestID),
				zap.String("kind", string(pipeline.Kind(err))),
				zap.Error(err),
			)
		}
		s.jsonResponse(w, status, errorResponseFor(err, requestID))
		return
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}
