// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package httpexport serves canvas exports over HTTP.
//
// Routes:
//
//	GET /canvases                          list published canvases
//	GET /canvases/{name}                   one canvas
//	GET /canvases/{name}/pages/{page}.{format}
//	                                       encoded page (or document for pdf)
//	GET /canvases/{name}/dataurl           data URL in a JSON envelope
//
// Export options come from the query: quality, density, outline and matte.
// Page numbers follow [canvas.ExportOptions.Page]: 1 is the oldest page and
// -1 the newest.
package httpexport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/gogpu/canvas"
)

// CanvasInfo describes a published canvas.
type CanvasInfo struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Pages  int    `json:"pages"`
}

// DataURL is the body of the dataurl route.
type DataURL struct {
	URL string `json:"url"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server publishes canvases by name.
type Server struct {
	mu       sync.RWMutex
	canvases map[string]*canvas.Canvas

	origins []string
	timeout time.Duration
	log     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithOrigins sets the origins allowed by CORS. The default allows any
// origin.
func WithOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithTimeout bounds each export. The default is 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithLogger sets the request logger. The default is [canvas.Logger].
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a server with no canvases.
func New(opts ...Option) *Server {
	s := &Server{
		canvases: make(map[string]*canvas.Canvas),
		origins:  []string{"*"},
		timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = canvas.Logger()
	}
	return s
}

// Publish makes c available under name, replacing any earlier canvas. The
// server does not take ownership: closing c is up to the caller.
func (s *Server) Publish(name string, c *canvas.Canvas) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvases[name] = c
}

// Unpublish removes name.
func (s *Server) Unpublish(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.canvases, name)
}

func (s *Server) lookup(name string) (*canvas.Canvas, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.canvases[name]
	return c, ok
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/canvases", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleInfo)
			r.Get("/pages/{page}.{format}", s.handleExport)
			r.Get("/dataurl", s.handleDataURL)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("httpexport: request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start))
	})
}

func info(name string, c *canvas.Canvas) CanvasInfo {
	return CanvasInfo{Name: name, Width: c.Width(), Height: c.Height(), Pages: c.PageCount()}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]CanvasInfo, 0, len(s.canvases))
	for name, c := range s.canvases {
		out = append(out, info(name, c))
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b CanvasInfo) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	render.JSON(w, r, out)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	c, ok := s.lookup(name)
	if !ok {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("no canvas named %q", name))
		return
	}
	render.JSON(w, r, info(name, c))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	c, opts, ok := s.request(w, r)
	if !ok {
		return
	}
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("page %q is not an integer", chi.URLParam(r, "page")))
		return
	}
	opts.Page = canvas.Int(page)
	opts.Format = chi.URLParam(r, "format")

	data, err := s.export(r, c, opts)
	if err != nil {
		s.fail(w, r, status(err), err)
		return
	}
	w.Header().Set("Content-Type", canvas.MimeType(opts.Format))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDataURL(w http.ResponseWriter, r *http.Request) {
	c, opts, ok := s.request(w, r)
	if !ok {
		return
	}
	opts.Format = r.URL.Query().Get("format")
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, fmt.Errorf("page %q is not an integer", p))
			return
		}
		opts.Page = canvas.Int(n)
	}
	fut, err := c.ToDataURL(opts)
	if err != nil {
		s.fail(w, r, status(err), err)
		return
	}
	ctx, cancel := s.context(r)
	defer cancel()
	url, err := fut.Await(ctx)
	if err != nil {
		s.fail(w, r, status(err), err)
		return
	}
	render.JSON(w, r, DataURL{URL: url})
}

// request resolves the canvas and the query options shared by the export
// routes.
func (s *Server) request(w http.ResponseWriter, r *http.Request) (*canvas.Canvas, canvas.ExportOptions, bool) {
	name := chi.URLParam(r, "name")
	c, ok := s.lookup(name)
	if !ok {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("no canvas named %q", name))
		return nil, canvas.ExportOptions{}, false
	}
	opts, err := queryOptions(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return nil, canvas.ExportOptions{}, false
	}
	return c, opts, true
}

func queryOptions(r *http.Request) (canvas.ExportOptions, error) {
	q := r.URL.Query()
	var opts canvas.ExportOptions
	if v := q.Get("quality"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("quality %q is not an integer", v)
		}
		opts.Quality = canvas.Int(n)
	}
	if v := q.Get("density"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("density %q is not a number", v)
		}
		opts.Density = d
	}
	if v := q.Get("outline"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("outline %q is not a boolean", v)
		}
		opts.Outline = b
	}
	opts.Matte = canvas.Color(q.Get("matte"))
	return opts, nil
}

func (s *Server) export(r *http.Request, c *canvas.Canvas, opts canvas.ExportOptions) ([]byte, error) {
	fut, err := c.ToBuffer(opts)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.context(r)
	defer cancel()
	return fut.Await(ctx)
}

func (s *Server) context(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.timeout)
}

// status maps export errors to HTTP status codes.
func status(err error) int {
	switch {
	case errors.Is(err, canvas.ErrFormat),
		errors.Is(err, canvas.ErrPageRange),
		errors.Is(err, canvas.ErrQuality),
		errors.Is(err, canvas.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, canvas.ErrClosed):
		return http.StatusGone
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.log.Warn("httpexport: export failed", "path", r.URL.Path, "err", err)
	}
	render.Status(r, code)
	render.JSON(w, r, ErrorResponse{Error: err.Error()})
}
