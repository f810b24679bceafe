package storage

import (
	"context"
	"fmt"
	"time"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string
	MongoURI      string
	Database      string
	MinTLSVersion uint16
	SQLitePath    string
	Timeout       time.Duration
}

// New creates a Store based on the backend name.
//
// Supported backends:
//
//	"mongo"  - MongoDB deployment at MongoURI (default)
//	"sqlite" - SQLite database at SQLitePath
//	"memory" - In-memory (ephemeral, for testing)
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "mongo", "":
		s, err := NewMongoStore(ctx, opts.MongoURI, opts.Database, opts.MinTLSVersion, opts.Timeout)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := NewSQLiteStore(opts.SQLitePath, opts.Timeout)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: mongo, sqlite, memory)", opts.Backend)
	}
}
