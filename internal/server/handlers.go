package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ppiankov/truthcheck/internal/llm"
	"github.com/ppiankov/truthcheck/internal/model"
	"github.com/ppiankov/truthcheck/internal/pipeline"
)

// AnalyzeRequest is the body of POST /api/analyze
type AnalyzeRequest struct {
	URL            string `json:"url"`
	Content        string `json:"content"`
	ForceReanalyze bool   `json:"forceReanalyze"`
}

// ImageRequest is the body of POST /api/analyze/image. Data is base64.
type ImageRequest struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Response wraps every successful analysis
type Response struct {
	Status pipeline.CheckStatus `json:"status"`
	Data   interface{}          `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze checks one article
// POST /api/analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" && strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "url ou content é obrigatório")
		return
	}

	if !s.service.TryLock() {
		writeError(w, http.StatusConflict, "Uma análise já está em andamento.")
		return
	}
	defer s.service.Unlock()

	ctx, cancel := s.analysisContext(r.Context())
	defer cancel()

	outcome, err := s.service.Check(ctx, pipeline.CheckRequest{
		URL:     req.URL,
		Content: req.Content,
		Force:   req.ForceReanalyze,
	}, s.progress(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if outcome.Status == pipeline.StatusCachedRecent {
		writeJSON(w, http.StatusOK, Response{Status: outcome.Status, Data: outcome.Cached})
		return
	}
	writeJSON(w, http.StatusOK, Response{Status: outcome.Status, Data: outcome.Result.Verdict})
}

// handleAnalyzeImage checks an uploaded image
// POST /api/analyze/image
func (s *Server) handleAnalyzeImage(w http.ResponseWriter, r *http.Request) {
	var req ImageRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !strings.HasPrefix(req.MIMEType, "image/") {
		writeError(w, http.StatusBadRequest, "mimeType deve ser uma imagem")
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "data deve ser base64 válido")
		return
	}

	if !s.service.TryLock() {
		writeError(w, http.StatusConflict, "Uma análise já está em andamento.")
		return
	}
	defer s.service.Unlock()

	ctx, cancel := s.analysisContext(r.Context())
	defer cancel()

	result, err := s.service.CheckImage(ctx, llm.Image{MIMEType: req.MIMEType, Data: data}, s.progress(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Status: pipeline.StatusAnalyzed, Data: result.Verdict})
}

// handleHistory lists stored analyses
// GET /api/history?limit=N
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []interface{}{})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit inválido")
			return
		}
		limit = n
	}

	entries, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return false
	}
	return true
}

func (s *Server) analysisContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout > 0 {
		return context.WithTimeout(parent, s.cfg.RequestTimeout)
	}
	return context.WithCancel(parent)
}

func (s *Server) progress(r *http.Request) pipeline.ProgressFunc {
	reqID := middleware.GetReqID(r.Context())
	return func(stage pipeline.Stage, message string) {
		s.logger.Debug("analysis stage",
			zap.String("request_id", reqID),
			zap.String("stage", string(stage)),
			zap.String("message", message))
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	s.logger.Warn("analysis failed",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("status", status),
		zap.Error(err))
	writeError(w, status, model.UserMessage(err))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
