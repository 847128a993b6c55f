// Package storage provides the named blob store contract shared by the
// local-file, GitHub contents API and S3 backends. Every persisted object,
// including the case index at cases/index.json, is a path under this
// contract, so all writers follow the same read-token-then-write protocol.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates no file exists at the path.
	ErrNotFound = errors.New("file not found")
	// ErrConflict indicates the supplied version token no longer matches
	// the stored object; the caller must re-read before writing.
	ErrConflict = errors.New("version token mismatch")
	// ErrUnavailable indicates a transport or backend failure.
	ErrUnavailable = errors.New("storage unavailable")
)

// Backend is a named blob store with optimistic concurrency. Version tokens
// are opaque; the local backend does not use them and always accepts writes.
type Backend interface {
	// GetFile returns the content and current version token at path.
	GetFile(ctx context.Context, path string) (content []byte, token string, err error)

	// PutFile writes content at path. For an existing file token must be
	// the value returned by the most recent GetFile; an empty token
	// creates the file. Remote backends reject stale tokens with
	// ErrConflict rather than permit a blind overwrite.
	PutFile(ctx context.Context, path string, content []byte, token string) (newToken string, err error)
}

// Lister is implemented by backends that can enumerate the directories
// directly under a path. The reconciliation sweep uses it to re-derive
// index entries from per-case directories.
type Lister interface {
	ListDirs(ctx context.Context, path string) ([]string, error)
}
