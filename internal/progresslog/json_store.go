package progresslog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// jsonDateLayout is the local minute-precision timestamp used in the file.
const jsonDateLayout = "2006-01-02 15:04"

type jsonEntry struct {
	Date   string `json:"date"`
	Day    int    `json:"day"`
	Status string `json:"status"`
}

// JSONStore implements Store as a JSON array rewritten wholesale on each append.
type JSONStore struct {
	mu      sync.RWMutex
	path    string
	loc     *time.Location
	now     func() time.Time
	entries []Entry
}

// NewJSONStore opens (or creates) the JSON progress log at path. Timestamps
// are written in loc with minute precision.
func NewJSONStore(path string, loc *time.Location) (*JSONStore, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &JSONStore{path: path, loc: loc, now: time.Now}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(bytes.TrimSpace(data)) == 0 {
			break
		}
		var raw []jsonEntry
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, ErrOpenFailed.Wrap(err).WithContext("path", path)
		}
		for i, r := range raw {
			ts, err := time.ParseInLocation(jsonDateLayout, r.Date, loc)
			if err != nil {
				return nil, ErrOpenFailed.Wrap(fmt.Errorf("entry %d: %w", i, err)).WithContext("path", path)
			}
			s.entries = append(s.entries, Entry{ID: int64(i + 1), Timestamp: ts, Day: r.Day, Status: r.Status})
		}
	case !os.IsNotExist(err):
		return nil, ErrOpenFailed.Wrap(err).WithContext("path", path)
	}
	return s, nil
}

// Append adds an entry and rewrites the file. On write failure the entry is dropped.
func (s *JSONStore) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	e.Timestamp = e.Timestamp.In(s.loc).Truncate(time.Minute)
	e.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, e)

	if err := s.saveLocked(); err != nil {
		s.entries = s.entries[:len(s.entries)-1]
		return ErrAppendFailed.Wrap(err).WithContext("path", s.path)
	}
	return nil
}

// Range retrieves entries within a time range.
func (s *JSONStore) Range(_ context.Context, start, end time.Time) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, e := range s.entries {
		if !e.Timestamp.Before(start) && !e.Timestamp.After(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Recent retrieves the last limit entries.
func (s *JSONStore) Recent(_ context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from := 0
	if limit > 0 && len(s.entries) > limit {
		from = len(s.entries) - limit
	}
	out := make([]Entry, len(s.entries)-from)
	copy(out, s.entries[from:])
	return out, nil
}

// Close is a no-op; every append is already on disk.
func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) saveLocked() error {
	raw := make([]jsonEntry, 0, len(s.entries))
	for _, e := range s.entries {
		raw = append(raw, jsonEntry{Date: e.Timestamp.In(s.loc).Format(jsonDateLayout), Day: e.Day, Status: e.Status})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("encode progress log: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write temporary progress log: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("replace progress log: %w", err)
	}
	return nil
}
