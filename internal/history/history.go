package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultKey is the key histories are stored under when none is configured.
const DefaultKey = "trafficHistory"

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ValidBackends lists the backends Open understands.
var ValidBackends = []string{BackendSQLite, BackendFile, BackendRedis, BackendMemory}

// ErrCorrupt is returned when stored history data cannot be parsed.
var ErrCorrupt = errors.New("history data is corrupt")

// Store is an append-only log of JSON entries under one key.
type Store interface {
	// Append serializes entry as JSON and adds it to the end of the log.
	Append(ctx context.Context, entry any) error

	// Load returns every entry in append order.
	// An unset history yields an empty, non-nil slice.
	Load(ctx context.Context) ([]json.RawMessage, error)

	// Count returns the number of entries.
	Count(ctx context.Context) (int, error)

	// Close releases the backend's resources.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend   string // one of ValidBackends; empty means sqlite
	Path      string // sqlite database or JSON file path
	Key       string // history key; empty means DefaultKey
	RedisAddr string // host:port for the redis backend
}

// Open creates the Store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}

	switch opts.Backend {
	case BackendSQLite, "":
		if opts.Path == "" {
			return nil, errors.New("open history: sqlite backend requires a path")
		}
		return OpenSQLite(opts.Path, key)
	case BackendFile:
		if opts.Path == "" {
			return nil, errors.New("open history: file backend requires a path")
		}
		return NewFileStore(opts.Path, key), nil
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, errors.New("open history: redis backend requires an address")
		}
		return OpenRedis(ctx, opts.RedisAddr, key)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("open history: unknown backend %q: must be one of %v", opts.Backend, ValidBackends)
	}
}

// encodeEntry serializes an entry for storage.
func encodeEntry(entry any) (json.RawMessage, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	return data, nil
}

// corruptf wraps ErrCorrupt with context.
func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}
