package site

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/p-n-ai/pai-courses/internal/catalog"
	"github.com/p-n-ai/pai-courses/internal/content"
	"github.com/p-n-ai/pai-courses/internal/document"
	"github.com/p-n-ai/pai-courses/internal/locale"
	"github.com/p-n-ai/pai-courses/internal/render"
)

// PageCache stores rendered page JSON keyed by PageKey.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, page []byte) error
	Ping(ctx context.Context) error
}

// Server answers content requests from the current snapshot.
type Server struct {
	snap  atomic.Pointer[Snapshot]
	gen   atomic.Uint64
	reg   render.Registry
	cache PageCache
	hub   *Hub

	defaultLocale string
}

// Option configures a Server.
type Option func(*Server)

// WithPageCache caches rendered pages.
func WithPageCache(c PageCache) Option {
	return func(s *Server) { s.cache = c }
}

// WithHub announces every swapped snapshot to live-reload clients.
func WithHub(h *Hub) Option {
	return func(s *Server) { s.hub = h }
}

// WithDefaultLocale sets the locale /api/courses redirects to.
func WithDefaultLocale(code string) Option {
	return func(s *Server) { s.defaultLocale = code }
}

// NewServer creates a Server rendering components with reg. It serves 503s
// until the first Swap.
func NewServer(reg render.Registry, opts ...Option) *Server {
	s := &Server{reg: reg, defaultLocale: "en"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Swap publishes snap as the current snapshot, stamping it with the next
// generation number, which it returns. In-flight requests finish on the
// snapshot they started with.
func (s *Server) Swap(snap *Snapshot) uint64 {
	snap.Generation = s.gen.Add(1)
	s.snap.Store(snap)
	if s.hub != nil {
		s.hub.Broadcast(reloadEvent{Type: "reload", Generation: snap.Generation})
	}
	return snap.Generation
}

// Snapshot returns the current snapshot, or nil before the first Swap.
func (s *Server) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("GET /api/courses", s.handleDefaultCourses)
	mux.HandleFunc("GET /api/{locale}/courses", s.handleCourses)
	mux.HandleFunc("GET /api/{locale}/courses/{course}", s.handleCourse)
	mux.HandleFunc("GET /api/{locale}/courses/{course}/{section}", s.handlePage)
	mux.HandleFunc("GET /api/{locale}/messages/{key}", s.handleMessage)
	if s.hub != nil {
		mux.Handle("GET /ws", s.hub)
	}
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.snap.Load() == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	if s.cache != nil {
		if err := s.cache.Ping(r.Context()); err != nil {
			slog.Warn("cache ping failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "cache unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleDefaultCourses(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api/"+s.defaultLocale+"/courses", http.StatusTemporaryRedirect)
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	idx, err := snap.index(r.PathValue("locale"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idx)
}

type sectionSummary struct {
	Section  string `json:"section"`
	Title    string `json:"title,omitempty"`
	Position int    `json:"position"`
	Digest   string `json:"digest"`
}

type courseResponse struct {
	catalog.Challenge
	Locale   string           `json:"locale"`
	Sections []sectionSummary `json:"sections"`
}

func (s *Server) handleCourse(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	idx, err := snap.index(r.PathValue("locale"))
	if err != nil {
		writeError(w, err)
		return
	}

	course := r.PathValue("course")
	ch, found := idx.Challenge(course)
	docs := snap.Documents.Sections(course, idx.Locale)
	if !found && len(docs) == 0 {
		writeError(w, &content.NotFoundError{Path: content.Path{Course: course, Locale: idx.Locale}})
		return
	}
	if !found {
		ch = catalog.Challenge{Slug: course}
	}

	resp := courseResponse{Challenge: ch, Locale: idx.Locale, Sections: make([]sectionSummary, 0, len(docs))}
	for _, d := range docs {
		resp.Sections = append(resp.Sections, sectionSummary{
			Section:  d.Path.Section,
			Title:    d.Title,
			Position: d.Position,
			Digest:   d.Digest(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type pageResponse struct {
	Course      string             `json:"course"`
	Section     string             `json:"section"`
	Locale      string             `json:"locale"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Headings    []document.Heading `json:"headings"`
	Nodes       []render.Node      `json:"nodes"`
	Digest      string             `json:"digest"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	doc, err := snap.Documents.Document(r.PathValue("course"), r.PathValue("section"), r.PathValue("locale"))
	if err != nil {
		writeError(w, err)
		return
	}

	digest := doc.Digest()
	etag := `"` + digest + `"`
	if match := r.Header.Get("If-None-Match"); match == etag || match == "*" {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	ctx := r.Context()
	key := PageKey(doc.Path.Locale, doc.Path.Course, doc.Path.Section, digest)
	if s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("page cache read failed", "key", key, "error", err)
		}
		if hit {
			w.Header().Set("ETag", etag)
			writeRaw(w, http.StatusOK, cached)
			return
		}
	}

	page, err := render.RenderSource(doc.Body, s.reg)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := pageResponse{
		Course:      doc.Path.Course,
		Section:     doc.Path.Section,
		Locale:      doc.Path.Locale,
		Title:       page.FrontMatter.Title,
		Description: page.FrontMatter.Description,
		Headings:    page.Headings,
		Nodes:       page.Nodes,
		Digest:      digest,
	}
	if resp.Title == "" {
		resp.Title = doc.Title
	}
	if resp.Headings == nil {
		resp.Headings = []document.Heading{}
	}
	if resp.Nodes == nil {
		resp.Nodes = []render.Node{}
	}

	body, err := json.Marshal(resp)
	if err != nil {
		writeError(w, err)
		return
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, body); err != nil {
			slog.Warn("page cache write failed", "key", key, "error", err)
		}
	}
	w.Header().Set("ETag", etag)
	writeRaw(w, http.StatusOK, body)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	loc, key := r.PathValue("locale"), r.PathValue("key")
	value, err := snap.Messages.Lookup(loc, key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"locale": loc, "key": key, "value": value})
}

func (s *Server) current(w http.ResponseWriter) (*Snapshot, bool) {
	snap := s.snap.Load()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "content not loaded"})
		return nil, false
	}
	return snap, true
}

// index resolves a locale code in any casing to its index. An unconfigured
// locale is a missing translation.
func (snap *Snapshot) index(code string) (*catalog.Index, error) {
	loc, err := locale.CanonicalLocale(code)
	if err != nil {
		return nil, &locale.MissingTranslationError{Locale: code}
	}
	idx, ok := snap.Indexes[loc]
	if !ok {
		return nil, &locale.MissingTranslationError{Locale: loc}
	}
	return idx, nil
}

// StatusCode maps a content error to its HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, content.ErrNotFound), errors.Is(err, locale.ErrMissingTranslation):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		// unknown components and malformed documents are authoring defects
		slog.Error("serving content", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
