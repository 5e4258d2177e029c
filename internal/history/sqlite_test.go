package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := OpenSQLite(path, "")
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	assert.Equal(t, DefaultKey, s.Key())
}

func TestOpenSQLite_ReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := OpenSQLite(path, DefaultKey)
	require.NoError(t, err)
	require.NoError(t, s1.Append(ctx, map[string]string{"run": "first"}))
	require.NoError(t, s1.Close())

	s2, err := OpenSQLite(path, DefaultKey)
	require.NoError(t, err)
	defer s2.Close()
	require.NoError(t, s2.Append(ctx, map[string]string{"run": "second"}))

	entries, err := s2.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.JSONEq(t, `{"run":"first"}`, string(entries[0]))
	assert.JSONEq(t, `{"run":"second"}`, string(entries[1]))
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := OpenSQLite(path, DefaultKey)
		if err != nil {
			t.Fatalf("OpenSQLite() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := OpenSQLite(path, DefaultKey)
	require.NoError(t, err)
	defer s.Close()

	var name string
	err = s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		"history_entries",
	).Scan(&name)
	require.NoError(t, err)
}

func TestOpenSQLite_InvalidPath(t *testing.T) {
	_, err := OpenSQLite("/nonexistent/dir/test.db", DefaultKey)
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestSQLiteClose_NilDB(t *testing.T) {
	s := &SQLiteStore{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestSQLitePragma_JournalMode(t *testing.T) {
	s := createTestSQLiteStore(t, DefaultKey)
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestSQLitePragma_Synchronous(t *testing.T) {
	s := createTestSQLiteStore(t, DefaultKey)
	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestSQLitePragma_BusyTimeout(t *testing.T) {
	s := createTestSQLiteStore(t, DefaultKey)
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestSQLitePragma_UserVersion(t *testing.T) {
	s := createTestSQLiteStore(t, DefaultKey)
	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
}

func TestSQLiteSchema_HistoryEntriesTable(t *testing.T) {
	s := createTestSQLiteStore(t, DefaultKey)

	columns := getTableColumns(t, s.db, "history_entries")
	for _, col := range []string{"seq", "history_key", "entry"} {
		if !contains(columns, col) {
			t.Errorf("history_entries table missing column %q", col)
		}
	}

	indexes := getTableIndexes(t, s.db, "history_entries")
	if !contains(indexes, "idx_history_entries_key_seq") {
		t.Error("history_entries table missing index idx_history_entries_key_seq")
	}
}

func TestSQLiteStore_KeysAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	a, err := OpenSQLite(path, "labA")
	require.NoError(t, err)
	defer a.Close()
	b, err := OpenSQLite(path, "labB")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Append(ctx, "a1"))
	require.NoError(t, b.Append(ctx, "b1"))
	require.NoError(t, a.Append(ctx, "a2"))

	entriesA, err := a.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entriesA, 2)
	assert.JSONEq(t, `"a1"`, string(entriesA[0]))
	assert.JSONEq(t, `"a2"`, string(entriesA[1]))

	countB, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, countB)
}

func TestSQLiteStore_CorruptEntryFailsLoudly(t *testing.T) {
	s := createTestSQLiteStore(t, DefaultKey)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "fine"))
	_, err := s.db.Exec(`INSERT INTO history_entries (history_key, entry) VALUES (?, ?)`, DefaultKey, "{not json")
	require.NoError(t, err)

	_, err = s.Load(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorrupt))
	assert.Contains(t, err.Error(), DefaultKey)
}

func TestSQLiteStore_CanceledContext(t *testing.T) {
	s := createTestSQLiteStore(t, DefaultKey)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.Append(ctx, "late"))
}
