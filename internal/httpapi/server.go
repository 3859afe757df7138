package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"enginectl/internal/remote"
	"enginectl/pkg/types"
)

// Server exposes a directory tree over the artifact-store contract:
// listings under /v1/list, file contents under /v1/files. It exists so
// development and CI have a store to point enginectl at without object
// storage credentials.
type Server struct {
	store *remote.FSStore
}

// NewMux builds the router for an artifactd instance rooted at dir.
func NewMux(dir string) http.Handler {
	s := &Server{store: remote.NewFSStore(dir)}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET", "PUT"}}))
	r.Use(MetricsMiddleware)
	r.Use(RequestLogger)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/v1/list/*", s.handleList)
	r.Get("/v1/files/*", s.handleDownload)
	r.Put("/v1/files/*", s.handleUpload)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	prefix, ok := cleanWildcard(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid prefix")
		return
	}
	files, err := s.store.List(r.Context(), prefix)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if files == nil {
		files = []types.RemoteFile{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(types.ListResponse{Files: files})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	p, ok := cleanWildcard(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}
	f, err := s.store.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSONError(w, http.StatusNotFound, "no such file: "+p)
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.Copy(w, f)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	p, ok := cleanWildcard(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}
	if err := s.store.Put(p, r.Body); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// cleanWildcard extracts the chi wildcard and rejects traversal attempts.
func cleanWildcard(r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "*")
	p := strings.Trim(raw, "/")
	if p == "" {
		return "", false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", false
		}
	}
	return p, true
}
