package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// fileLocks serializes writers to the same path within the process.
var fileLocks sync.Map // map[string]*sync.Mutex

func lockFor(path string) *sync.Mutex {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	mu, _ := fileLocks.LoadOrStore(abs, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// FileStore keeps histories in one JSON document, {"<key>": [entry, ...]},
// in the manner of a browser's local storage. Other keys in the document are
// preserved on every write.
type FileStore struct {
	path string
	key  string
	mu   *sync.Mutex
}

// NewFileStore returns a store for key in the document at path.
// The file is created on first append.
func NewFileStore(path, key string) *FileStore {
	if key == "" {
		key = DefaultKey
	}
	return &FileStore{path: path, key: key, mu: lockFor(path)}
}

// Append reads the document, appends entry under the key and replaces the
// file atomically.
func (s *FileStore) Append(ctx context.Context, entry any) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	entries, err := s.entriesFrom(doc)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	entries = append(entries, data)
	encoded, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("append history: encode entries: %w", err)
	}
	doc[s.key] = encoded

	if err := s.writeDocument(doc); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// Load returns the entries stored under the key.
func (s *FileStore) Load(ctx context.Context) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	entries, err := s.entriesFrom(doc)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return entries, nil
}

// Count returns the number of entries stored under the key.
func (s *FileStore) Count(ctx context.Context) (int, error) {
	entries, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Close is a no-op; the file is not held open between calls.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) readDocument() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(raw) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, corruptf("%s: %v", s.path, err)
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}
	return doc, nil
}

func (s *FileStore) entriesFrom(doc map[string]json.RawMessage) ([]json.RawMessage, error) {
	raw, ok := doc[s.key]
	if !ok {
		return []json.RawMessage{}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, corruptf("%s: key %q: %v", s.path, s.key, err)
	}
	if entries == nil {
		entries = []json.RawMessage{}
	}
	return entries, nil
}

// writeDocument writes to a temp file in the same directory and renames it
// over the original so readers never see a partial document.
func (s *FileStore) writeDocument(doc map[string]json.RawMessage) error {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
