// Package catalogtest provides an in-memory stand-in for the catalog REST API,
// served over httptest.
package catalogtest

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dharsanguruparan/cinebook/internal/model"
)

// BasePath is where the collection is mounted.
const BasePath = "/api/v1/cinemas"

// Upload records one file part received by the fake.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Server is a fake catalog backend.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	movies   map[string]model.Movie
	nextID   int
	uploads  map[string][]Upload
	failures map[string]int
}

// NewServer starts a fake backend seeded with movies. Movies without an id
// get sequential numeric ids.
func NewServer(seed ...model.Movie) *Server {
	s := &Server{
		movies:   make(map[string]model.Movie),
		nextID:   1,
		uploads:  make(map[string][]Upload),
		failures: make(map[string]int),
	}
	for _, m := range seed {
		s.insert(m)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+BasePath, s.list)
	mux.HandleFunc("POST "+BasePath, s.create)
	mux.HandleFunc("GET "+BasePath+"/{id}", s.get)
	mux.HandleFunc("PUT "+BasePath+"/{id}", s.update)
	mux.HandleFunc("DELETE "+BasePath+"/{id}", s.delete)
	s.Server = httptest.NewServer(s.failing(mux))
	return s
}

// CollectionURL is the collection endpoint, suitable for catalog.New.
func (s *Server) CollectionURL() string {
	return s.Server.URL + BasePath
}

// FailNext makes the next request with the given method answer status.
func (s *Server) FailNext(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = status
}

// Movie returns a stored movie.
func (s *Server) Movie(id string) (model.Movie, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	return m, ok
}

// Len returns the number of stored movies.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movies)
}

// Uploads returns the files received for a movie id across create and
// update calls.
func (s *Server) Uploads(id string) []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads[id]...)
}

func (s *Server) failing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, ok := s.failures[r.Method]
		delete(s.failures, r.Method)
		s.mu.Unlock()
		if ok {
			_, _ = io.Copy(io.Discard, r.Body)
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) insert(m model.Movie) model.Movie {
	if m.ID == "" {
		m.ID = model.ID(strconv.Itoa(s.nextID))
	}
	if n, err := strconv.Atoi(string(m.ID)); err == nil && n >= s.nextID {
		s.nextID = n + 1
	}
	s.movies[string(m.ID)] = m
	return m
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]model.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, m)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	m, ok := s.Movie(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	m, uploads, err := readUpload(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	s.mu.Lock()
	m.ID = ""
	m = s.insert(m)
	m = s.attach(m, uploads)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.Movie(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
		return
	}
	m, uploads, err := readUpload(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	s.mu.Lock()
	old := s.movies[id]
	m.ID = model.ID(id)
	m.PosterURLs, m.TrailerURL = old.PosterURLs, old.TrailerURL
	m = s.attach(m, uploads)
	s.movies[id] = m
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	_, ok := s.movies[id]
	delete(s.movies, id)
	delete(s.uploads, id)
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// attach records uploads and points the movie at them. New posters replace
// the old set; callers hold s.mu.
func (s *Server) attach(m model.Movie, uploads []Upload) model.Movie {
	id := string(m.ID)
	var posters []string
	for _, u := range uploads {
		mediaURL := fmt.Sprintf("%s/media/%s/%s", s.Server.URL, id, u.Filename)
		switch u.Field {
		case "posters":
			posters = append(posters, mediaURL)
		case "trailer":
			m.TrailerURL = mediaURL
		}
	}
	if len(posters) > 0 {
		m.PosterURLs = posters
	}
	s.uploads[id] = append(s.uploads[id], uploads...)
	s.movies[id] = m
	return m
}

func readUpload(r *http.Request) (model.Movie, []Upload, error) {
	var m model.Movie
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return m, nil, fmt.Errorf("parse multipart: %w", err)
	}
	raw := r.FormValue("cinemaBooking")
	if raw == "" {
		return m, nil, fmt.Errorf("cinemaBooking is required")
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return m, nil, fmt.Errorf("decode cinemaBooking: %w", err)
	}
	if strings.TrimSpace(m.Title) == "" {
		return m, nil, fmt.Errorf("title is required")
	}
	var uploads []Upload
	for _, field := range []string{"posters", "trailer"} {
		for _, fh := range r.MultipartForm.File[field] {
			u, err := readPart(field, fh)
			if err != nil {
				return m, nil, err
			}
			uploads = append(uploads, u)
		}
	}
	return m, uploads, nil
}

func readPart(field string, fh *multipart.FileHeader) (Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return Upload{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return Upload{}, err
	}
	return Upload{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func lessID(a, b model.ID) bool {
	na, errA := strconv.Atoi(string(a))
	nb, errB := strconv.Atoi(string(b))
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
