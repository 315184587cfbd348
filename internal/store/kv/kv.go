// Package kv holds the small key-value facilities the id counter is persisted in.
//
// A Store is addressed by plain string keys and values. Backends differ only in
// how long a value survives: memory lives as long as the process, file and
// sqlite live on disk, redis lives on a server shared by whoever points at it.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store is the get/set facility. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendNone   Backend = "none"
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
)

var (
	ErrUnknownBackend = errors.New("unknown store backend")
	// ErrMisconfigured marks a backend whose settings are unusable, as
	// opposed to one that is configured but cannot be reached.
	ErrMisconfigured = errors.New("store misconfigured")
)

// ParseBackend maps a config string to a Backend. Empty means file.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendFile, nil
	case BackendNone, BackendMemory, BackendFile, BackendSQLite, BackendRedis:
		return b, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// Config selects and locates a backend.
type Config struct {
	Backend  Backend
	Path     string // file and sqlite
	RedisURL string // redis
}

// Open builds the configured Store. For BackendNone it returns a nil Store,
// which callers treat as "no persistence". The returned close func is never nil.
func Open(ctx context.Context, cfg Config) (Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case BackendNone:
		return nil, noop, nil
	case BackendMemory:
		return NewMemory(), noop, nil
	case BackendFile, "":
		if cfg.Path == "" {
			return nil, noop, fmt.Errorf("%w: file store: empty path", ErrMisconfigured)
		}
		return NewFile(cfg.Path), noop, nil
	case BackendSQLite:
		s, err := OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case BackendRedis:
		s, err := OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	}
	return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}
