package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hosereport/internal/inspection"
	"hosereport/internal/report"
	"hosereport/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// requestFormat picks the body decoder from Content-Type. JSON is the
// default.
func requestFormat(r *http.Request) inspection.Format {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return inspection.FormatYAML
	default:
		return inspection.FormatJSON
	}
}

// POST /api/reports
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	doc, err := inspection.Decode(r.Body, requestFormat(r))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", s.cfg.MaxBodyBytes))
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.exports.Acquire(ctx, 1); err != nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("waiting for export slot: %w", err))
		return
	}
	defer s.exports.Release(1)

	entry := &store.Export{Source: "http", Engine: s.gen.Engine()}
	if doc.Header != nil {
		entry.Client = doc.Header.Client
		entry.InspectionDate = doc.Header.InspectionDate
	}

	done := s.metrics.Begin("http", s.gen.Engine())
	start := time.Now()
	dl := &responseDownloader{w: w, inline: r.URL.Query().Get("disposition") == "inline"}
	out, name, err := s.gen.Export(ctx, doc.Header, doc.Items, dl)
	entry.DurationMs = time.Since(start).Milliseconds()

	if err != nil {
		done(0, err)
		entry.Status, entry.Error = store.StatusFailed, err.Error()
		s.record(r, entry)
		if dl.written {
			log.Error("export failed after response started: %v", err)
			return
		}
		status := http.StatusInternalServerError
		if report.IsInputError(err) {
			status = http.StatusBadRequest
		}
		log.Warn("export failed: %v", err)
		writeError(w, status, err)
		return
	}

	done(out.Pages, nil)
	entry.Status = store.StatusOK
	entry.FileName, entry.Items, entry.Pages = name, out.Items, out.Pages
	entry.Bytes, entry.Checksum = len(out.PDF), out.Checksum
	s.record(r, entry)
	log.Info("served %s (%d pages)", name, out.Pages)
}

func (s *Server) record(r *http.Request, e *store.Export) {
	if s.history == nil {
		return
	}
	// The outcome is recorded even when the client has gone away.
	if err := s.history.Record(context.WithoutCancel(r.Context()), e); err != nil {
		requestLogger(r).Warn("recording export: %v", err)
	}
}

// GET /api/reports
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, errors.New("export history is disabled"))
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}
	list, err := s.history.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /api/reports/{id}
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, errors.New("export history is disabled"))
		return
	}
	e, err := s.history.Get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, e)
	}
}

// responseDownloader streams the finished PDF as the HTTP response.
type responseDownloader struct {
	w       http.ResponseWriter
	inline  bool
	written bool
}

func (d *responseDownloader) Download(_ context.Context, filename string, pdf []byte) error {
	disposition := "attachment"
	if d.inline {
		disposition = "inline"
	}
	h := d.w.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": filename}))
	h.Set("Content-Length", strconv.Itoa(len(pdf)))
	h.Set("ETag", `"`+report.Checksum(pdf)+`"`)
	h.Set("Cache-Control", "no-store")

	d.written = true
	d.w.WriteHeader(http.StatusOK)
	if _, err := d.w.Write(pdf); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

var _ report.Downloader = (*responseDownloader)(nil)
