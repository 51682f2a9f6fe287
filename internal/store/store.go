// Package store is the terminal's Record Store: named collections of records
// kept as JSON arrays inside a persistent key-value backend.
//
// Every value is written inside a versioned envelope
//
//	{"version": 2, "data": <array or object>}
//
// Bare values (version 1, the layout used by the browser build) are migrated
// on read and rewritten in the current layout by the next write.
//
// The collection operations mirror a browser localStorage helper: they read the
// backend fresh on every call, never cache, and fail soft. Storage and
// serialization errors are logged and the caller gets an empty result or its
// own input back. Callers that must know whether a write landed use the strict
// variants (Append, Replace, PutObject).
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// CurrentVersion is the envelope version written by this build.
const CurrentVersion = 2

var (
	ErrQuotaExceeded      = errors.New("storage quota exceeded")
	ErrCorrupted          = errors.New("stored value is not valid JSON")
	ErrUnsupportedVersion = errors.New("stored value has an unsupported schema version")
)

// Backend is the persistent key-value store underneath the collections.
type Backend interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Migration upgrades the data of one key from version N to N+1.
type Migration func(key string, data json.RawMessage) (json.RawMessage, error)

type Store struct {
	backend    Backend
	logger     *log.Logger
	migrations map[int]Migration
}

type Option func(*Store)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMigration adds a step that upgrades data written at version from. Steps
// for the same version run after the ones already registered.
func WithMigration(from int, m Migration) Option {
	return func(s *Store) {
		if prev, ok := s.migrations[from]; ok {
			m = Chain(prev, m)
		}
		s.migrations[from] = m
	}
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:    backend,
		logger:     log.Default(),
		migrations: map[int]Migration{1: migrateLegacy},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) logf(format string, args ...any) {
	s.logger.Printf("[store] "+format, args...)
}

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// read returns the current-version data stored under key.
func (s *Store) read(key string) (json.RawMessage, bool, error) {
	value, ok, err := s.backend.Get(key)
	if err != nil || !ok {
		return nil, false, err
	}
	raw := bytes.TrimSpace([]byte(value))
	if len(raw) == 0 {
		return nil, false, nil
	}
	if !json.Valid(raw) {
		return nil, false, fmt.Errorf("%s: %w", key, ErrCorrupted)
	}

	version, data := 1, json.RawMessage(raw)
	if raw[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, false, fmt.Errorf("%s: %w", key, ErrCorrupted)
		}
		v, hasVersion := fields["version"]
		d, hasData := fields["data"]
		if hasVersion && hasData && len(fields) == 2 {
			if err := json.Unmarshal(v, &version); err != nil {
				return nil, false, fmt.Errorf("%s: %w", key, ErrCorrupted)
			}
			data = d
		}
	}

	if version > CurrentVersion || version < 1 {
		return nil, false, fmt.Errorf("%s: version %d: %w", key, version, ErrUnsupportedVersion)
	}
	for v := version; v < CurrentVersion; v++ {
		m, ok := s.migrations[v]
		if !ok {
			return nil, false, fmt.Errorf("%s: no migration from version %d: %w", key, v, ErrUnsupportedVersion)
		}
		if data, err = m(key, data); err != nil {
			return nil, false, fmt.Errorf("%s: migrate from version %d: %w", key, v, err)
		}
	}
	return data, true, nil
}

func (s *Store) write(key string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", key, err)
	}
	env, err := json.Marshal(envelope{Version: CurrentVersion, Data: payload})
	if err != nil {
		return fmt.Errorf("%s: encode envelope: %w", key, err)
	}
	return s.backend.Set(key, string(env))
}

// GetObject decodes the singleton stored under key into out. It reports false
// when the key is missing, unreadable or fails validation.
func (s *Store) GetObject(key string, out any) bool {
	data, ok, err := s.read(key)
	if err != nil {
		s.logf("Error loading %s: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logf("Error decoding %s: %v", key, err)
		return false
	}
	if err := Validate(out); err != nil {
		s.logf("Invalid %s: %v", key, err)
		return false
	}
	return true
}

// PutObject stores a singleton value under key, replacing whatever was there.
func (s *Store) PutObject(key string, v any) error {
	if err := Validate(v); err != nil {
		return err
	}
	if err := s.write(key, v); err != nil {
		s.logf("Error saving %s: %v", key, err)
		return err
	}
	return nil
}

func (s *Store) RemoveKey(key string) error {
	if err := s.backend.Remove(key); err != nil {
		s.logf("Error removing %s: %v", key, err)
		return err
	}
	return nil
}
