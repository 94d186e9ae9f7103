package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nirlamp/app"
	"nirlamp/domain/spectra"
	"nirlamp/internal/errors"
)

// analyzeRequest is the body of POST /api/sessions/{id}/analyze. Empty
// products means all loaded products; empty selection keys means every
// observed (ID, Note) pair.
type analyzeRequest struct {
	Products      []string               `json:"products"`
	SelectionKeys []spectra.SelectionKey `json:"selection_keys"`
}

type sessionResponse struct {
	SessionID        string   `json:"session_id"`
	Products         []string `json:"products"`
	InstrumentSerial string   `json:"instrument_serial,omitempty"`
}

// handleCreateSession accepts a multipart upload of one spreadsheet-XML
// export, parses it, and opens a new analysis session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.Upload.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.respondError(w, errors.InvalidInput("invalid multipart upload"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, errors.InvalidInput("missing file field"))
		return
	}
	defer file.Close()

	svc := app.NewAnalyzerService(s.log)
	if err := svc.Load(r.Context(), file); err != nil {
		s.respondError(w, err)
		return
	}

	id := uuid.NewString()
	s.storeSession(id, svc)

	s.respondJSON(w, http.StatusCreated, sessionResponse{
		SessionID:        id,
		Products:         svc.Products(),
		InstrumentSerial: svc.InstrumentSerial(),
	})
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, errors.NotFound("session"))
		return
	}
	s.respondJSON(w, http.StatusOK, sessionResponse{
		SessionID:        chi.URLParam(r, "id"),
		Products:         svc.Products(),
		InstrumentSerial: svc.InstrumentSerial(),
	})
}

func (s *Server) handleSelectionKeys(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, errors.NotFound("session"))
		return
	}

	products := r.URL.Query()["product"]
	keys, err := svc.SelectionKeys(products)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"selection_keys": keys,
		"count":          len(keys),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, errors.NotFound("session"))
		return
	}

	var req analyzeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, errors.InvalidInput("invalid analyze request body"))
			return
		}
	}

	result, err := svc.Analyze(r.Context(), req.Products, req.SelectionKeys)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleTextReport(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, errors.NotFound("session"))
		return
	}

	text, err := svc.TextReport()
	if err != nil {
		s.respondError(w, err)
		return
	}

	if r.URL.Query().Get("download") == "true" {
		filename := svc.ExportFilename("txt")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, errors.NotFound("session"))
		return
	}

	filename := svc.ExportFilename("xlsx")
	path := filepath.Join(os.TempDir(), filename)
	if err := svc.ExportWorkbook(path); err != nil {
		s.respondError(w, err)
		return
	}
	defer os.Remove(path)

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, path)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeParseError:
		status = http.StatusUnprocessableEntity
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeNoAnalysis:
		status = http.StatusConflict
	}

	s.log.Warn("request failed (%s): %v", code, err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
		"code":  code,
	})
}
