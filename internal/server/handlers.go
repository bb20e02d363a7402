package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

const maxUploadBytes = 64 << 20

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		s.respondError(w, http.StatusBadRequest, "question is required")
		return
	}
	s.logger.Debug("ask request", zap.String("question", req.Question), zap.Int("k", req.K))

	answer, sources := s.engine.Answer(r.Context(), req.Question, req.K)

	// History is best effort: a write failure must not lose the answer.
	if err := s.history.Record(r.Context(), req.Question, answer, sources); err != nil {
		s.logger.Warn("failed to record history", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, models.AskResponse{Answer: answer, Sources: sources})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	ext := filepath.Ext(filename)
	// Reject before touching the corpus so unsupported files leave no trace.
	if !s.extractor.Supports(ext) {
		s.respondError(w, http.StatusBadRequest,
			"unsupported file type "+ext+", supported: "+strings.Join(s.extractor.Extensions(), ", "))
		return
	}

	if err := os.MkdirAll(s.corpusDir, 0o755); err != nil {
		s.logger.Error("failed to create corpus dir", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to store document")
		return
	}
	dst, err := os.Create(filepath.Join(s.corpusDir, filename))
	if err != nil {
		s.logger.Error("failed to create document file", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to store document")
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		s.logger.Error("failed to write document file", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to store document")
		return
	}

	s.logger.Info("document uploaded", zap.String("file", filename))
	s.queue.Enqueue()
	s.respondJSON(w, http.StatusCreated, models.UploadResponse{Status: "uploaded", Filename: filename})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.indexer.IndexDocuments(r.Context()); err != nil {
		s.logger.Error("indexing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "corpus re-indexed"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.List(r.Context())
	if err != nil {
		s.logger.Error("history list failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docs, err := s.indexer.DocumentCount()
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"documents":  docs,
		"corpus_dir": s.corpusDir,
	}
	// Chunk and history counts are informational; the index may be down
	// while the corpus is still fine.
	if chunks, err := s.store.Count(ctx); err != nil {
		s.logger.Warn("status: count chunks failed", zap.Error(err))
	} else {
		resp["chunks_indexed"] = chunks
	}
	if n, err := s.history.Count(ctx); err != nil {
		s.logger.Warn("status: count history failed", zap.Error(err))
	} else {
		resp["history_entries"] = n
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
