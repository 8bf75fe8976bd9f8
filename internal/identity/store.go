// SPDX-License-Identifier: MPL-2.0

package identity

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vermillion-mc/vermillion/pkg/cueutil"
)

const fileHeader = "// This file was generated automatically. DO NOT modify it unless necessary.\n"

// ErrMalformedRecord marks an identity file that exists but cannot be trusted.
var ErrMalformedRecord = errors.New("malformed identity record")

//go:embed identity_schema.cue
var identitySchema []byte

// Store reads and writes the identity file.
type Store struct {
	path  string
	newID func() (uuid.UUID, error)
}

// NewStore returns a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path, newID: uuid.NewRandom}
}

// Path is the identity file location.
func (s *Store) Path() string { return s.path }

// Load reads the persisted record. A missing file is reported as ok=false
// with a nil error; an unreadable or malformed file is an error.
func (s *Store) Load(ctx context.Context) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read identity file: %w", err)
	}

	result, err := cueutil.ParseAndDecode[fileRecord](identitySchema, data, "#Identities",
		cueutil.WithFilename(s.path))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	record, err := result.Value.toRecord()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrMalformedRecord, s.path, err)
	}
	return record, true, nil
}

// Ensure returns the persisted record, or generates and persists a new one
// when the file is absent. created reports which branch was taken. The new
// record is on disk before Ensure returns.
func (s *Store) Ensure(ctx context.Context) (record Record, created bool, err error) {
	record, ok, err := s.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return record, false, nil
	}

	record, err = generate(s.newID)
	if err != nil {
		return nil, false, err
	}
	if err := s.write(record); err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// Reset discards the persisted record. The next Ensure generates a new one.
func (s *Store) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove identity file: %w", err)
	}
	return nil
}

// write persists record through a synced temp file renamed over the target.
func (s *Store) write(record Record) error {
	body, err := json.MarshalIndent(record.toFile(), "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode identity record: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create identity directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".uuids-*.json")
	if err != nil {
		return fmt.Errorf("failed to create identity file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.WriteString(fileHeader + string(body) + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync identity file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close identity file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to persist identity file: %w", err)
	}
	return nil
}
