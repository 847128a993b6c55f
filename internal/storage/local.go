package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Local stores files under a root directory. Version tokens are content
// hashes; PutFile compares them under a per-directory lock, so the
// read-token-then-conditional-write protocol holds here exactly as it does
// on the remote backends. Writes go through temp-file-then-rename so
// readers never observe a partially written file.
type Local struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocal(root string) *Local {
	return &Local{
		root:  root,
		locks: make(map[string]*sync.Mutex),
	}
}

func (l *Local) GetFile(ctx context.Context, path string) ([]byte, string, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, "", err
	}

	content, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return content, contentToken(content), nil
}

func (l *Local) PutFile(ctx context.Context, path string, content []byte, token string) (string, error) {
	full, err := l.resolve(path)
	if err != nil {
		return "", err
	}

	lock := l.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	current, err := os.ReadFile(full)
	switch {
	case err == nil:
		if token != contentToken(current) {
			return "", ErrConflict
		}
	case os.IsNotExist(err):
		if token != "" {
			return "", ErrConflict
		}
	default:
		return "", fmt.Errorf("read current version of %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".put-*")
	if err != nil {
		return "", fmt.Errorf("create temp file for %s: %w", path, err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("replace %s: %w", path, err)
	}
	return contentToken(content), nil
}

func (l *Local) ListDirs(ctx context.Context, path string) ([]string, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("list %s: %w", path, err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}

func contentToken(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// resolve joins path under root and rejects traversal outside it.
func (l *Local) resolve(path string) (string, error) {
	full := filepath.Join(l.root, filepath.FromSlash(path))
	root := filepath.Clean(l.root)
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes storage root", path)
	}
	return full, nil
}

// pathLock returns the mutex guarding one directory. Files of different
// cases live at disjoint paths and never contend; the shared index file
// gets its own lock.
func (l *Local) pathLock(path string) *sync.Mutex {
	key := path
	if i := strings.LastIndex(path, "/"); i > 0 {
		key = path[:i]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	return lock
}
