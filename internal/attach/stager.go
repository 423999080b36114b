package attach

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MaxAttachments mirrors the backend's per-request reference image limit.
const MaxAttachments = 14

// LimitError reports an add rejected because the set is full. Limit is
// carried for message formatting.
type LimitError struct {
	Limit int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("attachment limit reached (max %d)", e.Limit)
}

// Entry is one staged reference image, already encoded as a self-contained
// data URI.
type Entry struct {
	ID      string
	Name    string
	Size    int64
	MIME    string
	DataURI string
}

// Stager holds the pending reference images for the next generation request.
// Entries keep their selection order; the set never exceeds MaxAttachments.
type Stager struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
}

func NewStager() *Stager {
	return &Stager{limit: MaxAttachments}
}

// Add stages the named files in order. Files that are not images are skipped
// silently. When the set fills up, a LimitError is returned and the remaining
// files in the batch are not processed.
func (s *Stager) Add(paths ...string) (int, error) {
	added := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return added, fmt.Errorf("failed to read %s: %w", path, err)
		}
		n, err := s.AddBytes(filepath.Base(path), data)
		added += n
		if err != nil {
			return added, err
		}
	}
	return added, nil
}

// AddBytes stages one in-memory image; pasted screenshots arrive this way.
// Returns 1 if the payload was staged, 0 if it was skipped as a non-image.
func (s *Stager) AddBytes(name string, data []byte) (int, error) {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.limit {
		return 0, &LimitError{Limit: s.limit}
	}

	s.entries = append(s.entries, Entry{
		ID:      uuid.New().String(),
		Name:    name,
		Size:    int64(len(data)),
		MIME:    mime,
		DataURI: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
	})
	return 1, nil
}

// RemoveAt removes the entry at index i, shifting later entries down. An
// out-of-range index is a no-op and returns false.
func (s *Stager) RemoveAt(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.entries) {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return true
}

// Clear drops every staged payload.
func (s *Stager) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

func (s *Stager) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Snapshot returns the staged payloads in order. The slice is a copy; later
// mutations of the stager do not show through.
func (s *Stager) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.DataURI
	}
	return out
}

// Entries returns a copy of the staged entries for display.
func (s *Stager) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
