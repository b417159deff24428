package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/localitree/pkg/buildinfo"
	apperr "github.com/matzehuels/localitree/pkg/errors"
	"github.com/matzehuels/localitree/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatHTML: "text/html; charset=utf-8",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// handleRender runs the pipeline for one format. The body is written only
// after the whole run succeeded.
func (s *Server) handleRender(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.requestOptions(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Formats = []string{format}

		result, err := s.runner.Execute(r.Context(), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(result.Artifacts[format])
	}
}

// handleSource passes the upstream document through unchanged.
func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	data, err := s.loader.Fetch(r.Context(), s.defaults.Source)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

// requestOptions applies query parameters on top of the server defaults.
//
//	?collapse=root/a&collapse=root/b  collapse nodes by name path
//	?collapse_depth=2                 collapse everything below depth 2
//	?expand=true                      ignore collapse state in the document
//	?engine=graphviz                  layout engine
//	?depth_spacing=80                 pixels per level
//	?scale=0.5                        PNG scale factor
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	opts.Collapse = append([]string(nil), s.defaults.Collapse...)
	q := r.URL.Query()

	opts.Collapse = append(opts.Collapse, q["collapse"]...)
	if v := q.Get("collapse_depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, apperr.New(apperr.ErrCodeInvalidInput, "collapse_depth must be a non-negative integer, got %q", v)
		}
		opts.CollapseDepth = n
	}
	if v := q.Get("expand"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, apperr.New(apperr.ErrCodeInvalidInput, "expand must be a boolean, got %q", v)
		}
		opts.Expand = b
	}
	if v := q.Get("engine"); v != "" {
		if err := pipeline.ValidateEngine(v); err != nil {
			return opts, err
		}
		opts.Engine = v
	}
	if v := q.Get("depth_spacing"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, apperr.New(apperr.ErrCodeInvalidInput, "depth_spacing must be positive, got %q", v)
		}
		opts.DepthSpacing = f
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, apperr.New(apperr.ErrCodeInvalidInput, "scale must be positive, got %q", v)
		}
		opts.Scale = f
	}
	return opts, nil
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}

	code := apperr.GetCode(err)
	switch {
	case code == apperr.ErrCodeHTTPStatus, code == apperr.ErrCodeNetwork:
		return http.StatusBadGateway
	case code == apperr.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case code == apperr.ErrCodeNotFound:
		return http.StatusNotFound
	case code == apperr.ErrCodeEmptyTree, code == apperr.ErrCodeUnsupported,
		strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	RenderID string `json:"render_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	s.logger.Warn("request failed",
		"path", r.URL.Path,
		"status", status,
		"render_id", w.Header().Get(RenderIDHeader),
		"error", err)

	writeJSON(w, status, errorResponse{
		Error:    apperr.UserMessage(err),
		Code:     string(apperr.GetCode(err)),
		RenderID: w.Header().Get(RenderIDHeader),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// renderID tags every response with a fresh UUID.
func renderID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(RenderIDHeader, uuid.NewString())
		next.ServeHTTP(w, r)
	})
}

// instrument logs each request and records it in the HTTP metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.metrics.requestDuration.WithLabelValues(route).Observe(d.Seconds())
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
