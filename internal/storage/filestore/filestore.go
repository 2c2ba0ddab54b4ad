// Package filestore mirrors the in-memory record collections to JSON files.
//
// Every mutation updates memory first, then rewrites the whole collection
// file before returning. Both steps run under one per-collection mutex, so
// the file always reflects the latest memory state once a mutation returns.
// A crash between the two steps can lose at most the one mutation in flight.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/storage/memory"
)

// File names inside the data directory.
const (
	TokensFile       = "tokens.json"
	PendingPostsFile = "pending-posts.json"
)

// Store owns both durable collections.
type Store struct {
	dir    string
	log    *slog.Logger
	tokens *TokenStore
	posts  *PendingPostStore
}

// Open creates dir if needed and loads both collections from it.
// A missing file starts empty; a corrupt file is logged and also starts empty.
func Open(dir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{dir: dir, log: log}

	s.tokens = &TokenStore{
		mem:  memory.NewTokenStore(),
		file: &jsonFile{path: filepath.Join(dir, TokensFile)},
	}
	s.posts = &PendingPostStore{
		mem:  memory.NewPendingPostStore(),
		file: &jsonFile{path: filepath.Join(dir, PendingPostsFile)},
	}

	// Files hold arrays in the domain types' JSON shape.
	var tokens []*domain.Token
	if s.load(s.tokens.file, &tokens) {
		s.tokens.mem.Replace(tokens)
	} else {
		tokens = nil
	}
	var posts []*domain.PendingPost
	if s.load(s.posts.file, &posts) {
		s.posts.mem.Replace(posts)
	} else {
		posts = nil
	}

	log.Info("record store loaded",
		slog.String("dir", dir),
		slog.Int("tokens", len(tokens)),
		slog.Int("pending_posts", len(posts)),
	)
	return s, nil
}

// Tokens returns the durable token collection.
func (s *Store) Tokens() *TokenStore { return s.tokens }

// PendingPosts returns the durable pending post collection.
func (s *Store) PendingPosts() *PendingPostStore { return s.posts }

func (s *Store) load(f *jsonFile, dst any) bool {
	err := f.read(dst)
	switch {
	case err == nil:
		return true
	case errors.Is(err, fs.ErrNotExist):
		return false
	default:
		s.log.Warn("ignoring unreadable collection file",
			slog.String("path", f.path),
			slog.Any("error", err),
		)
		return false
	}
}

// jsonFile is one collection file. Callers serialize writes with the
// owning collection's mutex.
type jsonFile struct {
	path string
}

func (f *jsonFile) read(dst any) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(f.path), err)
	}
	return nil
}

// write replaces the file atomically: temp file in the same dir, fsync, rename.
func (f *jsonFile) write(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(f.path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", f.path, err)
	}
	return nil
}
