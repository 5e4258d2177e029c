package history

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	tests := []struct {
		name string
		opts Options
		want any
	}{
		{"default is sqlite", Options{Path: filepath.Join(dir, "a.db")}, &SQLiteStore{}},
		{"sqlite", Options{Backend: BackendSQLite, Path: filepath.Join(dir, "b.db")}, &SQLiteStore{}},
		{"file", Options{Backend: BackendFile, Path: filepath.Join(dir, "h.json")}, &FileStore{}},
		{"memory", Options{Backend: BackendMemory}, &MemoryStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.opts)
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestOpen_UsesConfiguredKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.json")
	s, err := Open(context.Background(), Options{Backend: BackendFile, Path: path, Key: "labHistory"})
	require.NoError(t, err)
	assert.Equal(t, "labHistory", s.(*FileStore).key)
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		msg  string
	}{
		{"sqlite without path", Options{Backend: BackendSQLite}, "requires a path"},
		{"file without path", Options{Backend: BackendFile}, "requires a path"},
		{"redis without address", Options{Backend: BackendRedis}, "requires an address"},
		{"unknown backend", Options{Backend: "localStorage"}, "unknown backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestRecord_RoundTripsThroughStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := Record{
		ID:         "rec-1",
		Kind:       "nmap",
		Params:     map[string]any{"target": "10.0.0.5"},
		Result:     json.RawMessage(`{"exit_code":0}`),
		RecordedAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Append(ctx, rec))

	entries, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.JSONEq(t,
		`{"id":"rec-1","kind":"nmap","params":{"target":"10.0.0.5"},"result":{"exit_code":0},"recorded_at":"2025-01-01T12:00:00Z"}`,
		string(entries[0]))

	got, ok := DecodeRecord(entries[0])
	require.True(t, ok)
	assert.Equal(t, "rec-1", got.ID)
	assert.Equal(t, "nmap", got.Kind)
	assert.False(t, got.Failed())
	assert.True(t, rec.RecordedAt.Equal(got.RecordedAt))
}

func TestDecodeRecord_ForeignEntries(t *testing.T) {
	for _, raw := range []string{`"text"`, `[1,2]`, `{"kind":"nmap"}`, `{"id":"x"}`} {
		_, ok := DecodeRecord(json.RawMessage(raw))
		assert.False(t, ok, raw)
	}
}

func TestRecord_Failed(t *testing.T) {
	assert.True(t, Record{Error: "Nmap error 500: boom"}.Failed())
	assert.False(t, Record{}.Failed())
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}
	a := gen.Generate()
	b := gen.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequenceGenerator("a", "b")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}
