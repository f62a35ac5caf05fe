// Package testutil provides a fake APOD API for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/glorpus-work/apod/pkg/model"
)

// APIPath is the path the fake serves definitions on.
const APIPath = "/planetary/apod"

// stallChunk is the number of media bytes sent before a stalled response blocks.
const stallChunk = 4096

// APODServer is an httptest server speaking the APOD API shape: definitions
// at APIPath?date=..&api_key=.. and media below /media/.
type APODServer struct {
	*httptest.Server

	mu          sync.Mutex
	definitions map[string]*model.Definition
	media       map[string][]byte // by URL path
	status      map[string]int    // forced status by date
	stall       chan struct{}
	lastAPIKey  string

	apiHits   atomic.Int32
	mediaHits atomic.Int32
}

// NewAPODServer starts a server that is closed when t ends.
func NewAPODServer(t *testing.T) *APODServer {
	t.Helper()
	s := &APODServer{
		definitions: make(map[string]*model.Definition),
		media:       make(map[string][]byte),
		status:      make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(APIPath, s.serveDefinition)
	mux.HandleFunc("/media/", s.serveMedia)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(func() {
		s.ReleaseMedia()
		s.Close()
	})
	return s
}

// BaseURL returns the definition endpoint of the server.
func (s *APODServer) BaseURL() string {
	return s.URL + APIPath
}

// AddImage registers an image definition for date with standard and HD media.
// The HD file carries media, the standard file a short placeholder.
func (s *APODServer) AddImage(date model.DateKey, media []byte) *model.Definition {
	s.mu.Lock()
	defer s.mu.Unlock()

	stdPath := "/media/" + date.String() + ".jpg"
	hdPath := "/media/" + date.String() + "_hd.jpg"
	def := &model.Definition{
		Date:           date,
		Title:          "Picture of " + date.String(),
		Explanation:    "Explanation of " + date.String(),
		MediaType:      model.MediaKindImage,
		URL:            s.URL + stdPath,
		HDURL:          s.URL + hdPath,
		ServiceVersion: "v1",
	}
	s.definitions[date.String()] = def
	s.media[stdPath] = []byte("standard")
	s.media[hdPath] = media
	return def
}

// AddVideo registers a video definition for date.
func (s *APODServer) AddVideo(date model.DateKey) *model.Definition {
	s.mu.Lock()
	defer s.mu.Unlock()

	def := &model.Definition{
		Date:        date,
		Title:       "Video of " + date.String(),
		Explanation: "A video.",
		MediaType:   "video",
		URL:         "https://www.youtube.com/embed/" + date.String(),
	}
	s.definitions[date.String()] = def
	return def
}

// SetStatus forces the definition endpoint to answer status for date.
func (s *APODServer) SetStatus(date model.DateKey, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[date.String()] = status
}

// StallMedia makes media responses send their first chunk and then block
// until ReleaseMedia is called or the client goes away.
func (s *APODServer) StallMedia() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stall == nil {
		s.stall = make(chan struct{})
	}
}

// ReleaseMedia unblocks stalled media responses.
func (s *APODServer) ReleaseMedia() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stall != nil {
		close(s.stall)
		s.stall = nil
	}
}

// APIHits returns the number of definition requests served.
func (s *APODServer) APIHits() int { return int(s.apiHits.Load()) }

// MediaHits returns the number of media requests served.
func (s *APODServer) MediaHits() int { return int(s.mediaHits.Load()) }

// Hits returns the total number of requests served.
func (s *APODServer) Hits() int { return s.APIHits() + s.MediaHits() }

// LastAPIKey returns the api_key of the most recent definition request.
func (s *APODServer) LastAPIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAPIKey
}

func (s *APODServer) serveDefinition(w http.ResponseWriter, r *http.Request) {
	s.apiHits.Add(1)
	date := r.URL.Query().Get("date")
	key := r.URL.Query().Get("api_key")

	s.mu.Lock()
	s.lastAPIKey = key
	def, ok := s.definitions[date]
	status, forced := s.status[date]
	s.mu.Unlock()

	switch {
	case key == "":
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "API_KEY_MISSING"})
	case forced:
		writeJSON(w, status, map[string]string{"msg": http.StatusText(status)})
	case !ok:
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "No data available for date: " + date})
	default:
		writeJSON(w, http.StatusOK, def)
	}
}

func (s *APODServer) serveMedia(w http.ResponseWriter, r *http.Request) {
	s.mediaHits.Add(1)

	s.mu.Lock()
	data, ok := s.media[r.URL.Path]
	stall := s.stall
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))

	if stall == nil || len(data) <= stallChunk {
		_, _ = w.Write(data)
		return
	}

	_, _ = w.Write(data[:stallChunk])
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	select {
	case <-stall:
		_, _ = w.Write(data[stallChunk:])
	case <-r.Context().Done():
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
