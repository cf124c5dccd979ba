package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/askql/askql/internal/llm"
	"github.com/askql/askql/internal/render"
	"github.com/askql/askql/internal/service"
)

// queryRequest is the body of /api/query and the export endpoints. When
// SQLOverride is set the question and tables are ignored and the statement
// runs as-is, subject to the SELECT-only guard.
type queryRequest struct {
	Question    string   `json:"question"`
	Tables      []string `json:"tables,omitempty"`
	SQLOverride string   `json:"sql_override,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	res, err := s.runQuery(r, req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"result": res,
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"dialect": s.svc.Dialect(),
		"schema":  s.svc.Schema(),
	})
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.History(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"history": entries,
	})
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearHistory(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	res, err := s.runQuery(r, req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="results.csv"`)
	if err := render.CSV(w, res); err != nil {
		s.logger.Warn("csv export failed mid-stream", "error", err)
	}
}

func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	res, err := s.runQuery(r, req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="results.xlsx"`)
	if err := render.Excel(w, res, "Results"); err != nil {
		s.logger.Warn("xlsx export failed mid-stream", "error", err)
	}
}

func (s *Server) decodeQuery(w http.ResponseWriter, r *http.Request) (queryRequest, bool) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok":    false,
			"error": fmt.Sprintf("invalid request body: %v", err),
		})
		return req, false
	}
	if req.Question == "" && req.SQLOverride == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok":    false,
			"error": "question or sql_override is required",
		})
		return req, false
	}
	return req, true
}

func (s *Server) runQuery(r *http.Request, req queryRequest) (*service.Result, error) {
	if req.SQLOverride != "" {
		return s.svc.Run(r.Context(), req.Question, req.SQLOverride)
	}
	return s.svc.Ask(r.Context(), req.Question, req.Tables)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var genErr *llm.GenerateError
	switch {
	case errors.As(err, &genErr):
		status = http.StatusBadGateway
	case errors.Is(err, service.ErrNotSelect):
		status = http.StatusBadRequest
	}

	s.logger.Error("request failed", "status", status, "error", err)
	s.writeJSON(w, status, map[string]any{
		"ok":    false,
		"error": err.Error(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}
