package storage

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

// Memory is an in-process backend that enforces the same version-token
// protocol as the remote backends. It backs tests and local development.
type Memory struct {
	mu    sync.Mutex
	files map[string]memoryFile
	seq   int
}

type memoryFile struct {
	content []byte
	token   string
}

func NewMemory() *Memory {
	return &Memory{files: make(map[string]memoryFile)}
}

func (m *Memory) GetFile(ctx context.Context, path string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[path]
	if !ok {
		return nil, "", ErrNotFound
	}
	content := make([]byte, len(file.content))
	copy(content, file.content)
	return content, file.token, nil
}

func (m *Memory) PutFile(ctx context.Context, path string, content []byte, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.files[path]
	if exists && token != existing.token {
		return "", ErrConflict
	}
	if !exists && token != "" {
		return "", ErrConflict
	}

	m.seq++
	stored := make([]byte, len(content))
	copy(stored, content)
	file := memoryFile{content: stored, token: strconv.Itoa(m.seq)}
	m.files[path] = file
	return file.token, nil
}

func (m *Memory) ListDirs(ctx context.Context, path string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := strings.TrimSuffix(path, "/") + "/"
	seen := make(map[string]bool)
	var dirs []string
	for key := range m.files {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		name, _, isDir := strings.Cut(rest, "/")
		if isDir && !seen[name] {
			seen[name] = true
			dirs = append(dirs, name)
		}
	}
	return dirs, nil
}

// Paths lists every stored path, for test assertions.
func (m *Memory) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	paths := make([]string, 0, len(m.files))
	for key := range m.files {
		paths = append(paths, key)
	}
	return paths
}
