package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flowlane/pkg/buildinfo"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/layout"
	"github.com/matzehuels/flowlane/pkg/pipeline"
	"github.com/matzehuels/flowlane/pkg/process"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.readSnapshot(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.export(w, r, snap)
}

func (s *Server) handleTableExport(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	if err := errors.ValidateTableID(tableID); err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.src.Snapshot(r.Context(), tableID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.export(w, r, snap)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, snap process.Snapshot) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.svc.Export(r.Context(), snap, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snap.ID()+".bpmn"))
	writeArtifact(w, out)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	snap, err := s.readSnapshot(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.svc.Layout(r.Context(), snap, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeArtifact(w, out)
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	infos, err := s.src.Tables(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if infos == nil {
		infos = []process.TableInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": infos})
}

func writeArtifact(w http.ResponseWriter, out *pipeline.Output) {
	if out.CacheHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

// readSnapshot decodes the body as YAML when the content type says so,
// JSON otherwise.
func (s *Server) readSnapshot(w http.ResponseWriter, r *http.Request) (process.Snapshot, error) {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	defer body.Close()
	format := process.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = process.FormatYAML
	}
	return process.ReadSnapshot(body, format)
}

// options applies the query overrides to the server defaults.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.opts.Pipeline
	q := r.URL.Query()
	if v := q.Get("engine"); v != "" {
		if _, err := pipeline.NewEngine(v); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "engine")
		}
		opts.Layout.Engine = v
	}
	if v := q.Get("direction"); v != "" {
		d, err := layout.ParseDirection(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "direction")
		}
		opts.Layout.Direction = d
	}
	if v := q.Get("strict"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "strict must be a boolean, got %q", v)
		}
		opts.Strict = strict
	}
	if v := q.Get("refresh"); v != "" {
		opts.Refresh, _ = strconv.ParseBool(v)
	}
	return opts, nil
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func httpStatus(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeIntegrity, errors.ErrCodeLayout:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := httpStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Warn("request rejected", "path", r.URL.Path, "code", code, "err", err)
	}
	writeJSON(w, status, errorBody{
		Code:    string(code),
		Message: errors.UserMessage(err),
		Details: errors.GetDetails(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
