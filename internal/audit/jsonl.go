package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONLSink appends events as one JSON object per line. Append-only; rotation
// is left to the operator (logrotate handles the file fine because writes are
// line-atomic under the mutex).
type JSONLSink struct {
	path string
	mu   sync.Mutex
	f    *os.File
}

// NewJSONLSink creates or opens the JSONL file at path, creating parent
// directories as needed.
func NewJSONLSink(path string) (*JSONLSink, error) {
	if path == "" {
		return nil, fmt.Errorf("audit log path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &JSONLSink{path: path, f: f}, nil
}

// Log appends one event line.
func (s *JSONLSink) Log(_ context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.Write(data); err != nil {
		return fmt.Errorf("writing audit event: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
