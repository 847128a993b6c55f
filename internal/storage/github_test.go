package storage_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"gaevic/internal/storage"

	"github.com/stretchr/testify/require"
)

// fakeContentsAPI mimics the subset of the GitHub contents API the backend
// uses: GET returns base64 content plus a blob sha, PUT requires the current
// sha for updates and rejects stale ones.
type fakeContentsAPI struct {
	mu    sync.Mutex
	files map[string]fakeBlob
	puts  int
}

type fakeBlob struct {
	content []byte
	sha     string
}

func newFakeContentsAPI() *fakeContentsAPI {
	return &fakeContentsAPI{files: make(map[string]fakeBlob)}
}

func (f *fakeContentsAPI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "/repos/county/evictions/contents/"
		require.True(t, strings.HasPrefix(r.URL.Path, prefix), "unexpected path %s", r.URL.Path)
		path := strings.TrimPrefix(r.URL.Path, prefix)

		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			if blob, ok := f.files[path]; ok {
				json.NewEncoder(w).Encode(map[string]any{
					"name":     path,
					"type":     "file",
					"content":  base64.StdEncoding.EncodeToString(blob.content),
					"encoding": "base64",
					"sha":      blob.sha,
				})
				return
			}
			// Directory listing
			var entries []map[string]any
			seen := map[string]bool{}
			for key := range f.files {
				if rest, ok := strings.CutPrefix(key, path+"/"); ok {
					name, _, isDir := strings.Cut(rest, "/")
					if seen[name] {
						continue
					}
					seen[name] = true
					kind := "file"
					if isDir {
						kind = "dir"
					}
					entries = append(entries, map[string]any{"name": name, "type": kind})
				}
			}
			if len(entries) == 0 {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(entries)

		case http.MethodPut:
			var req struct {
				Message string `json:"message"`
				Content string `json:"content"`
				SHA     string `json:"sha"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			existing, exists := f.files[path]
			if exists && req.SHA != existing.sha {
				w.WriteHeader(http.StatusConflict)
				return
			}
			if !exists && req.SHA != "" {
				w.WriteHeader(http.StatusUnprocessableEntity)
				return
			}

			content, err := base64.StdEncoding.DecodeString(req.Content)
			require.NoError(t, err)

			f.puts++
			blob := fakeBlob{content: content, sha: fmt.Sprintf("sha-%d", f.puts)}
			f.files[path] = blob

			status := http.StatusCreated
			if exists {
				status = http.StatusOK
			}
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{
				"content": map[string]any{"sha": blob.sha},
			})

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func newGitHubBackend(t *testing.T) (*storage.GitHub, *fakeContentsAPI) {
	fake := newFakeContentsAPI()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	return storage.NewGitHub(srv.URL, "test-token", "county", "evictions"), fake
}

func TestGitHub_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	backend, _ := newGitHubBackend(t)

	token, err := backend.PutFile(ctx, "cases/HOU-1/case_data.json", []byte(`{"case_id":"HOU-1"}`), "")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	content, gotToken, err := backend.GetFile(ctx, "cases/HOU-1/case_data.json")
	require.NoError(t, err)
	require.Equal(t, `{"case_id":"HOU-1"}`, string(content))
	require.Equal(t, token, gotToken)
}

func TestGitHub_GetMissingFile(t *testing.T) {
	backend, _ := newGitHubBackend(t)

	_, _, err := backend.GetFile(context.Background(), "cases/none/case_data.json")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGitHub_UpdateRequiresCurrentToken(t *testing.T) {
	ctx := context.Background()
	backend, _ := newGitHubBackend(t)

	token, err := backend.PutFile(ctx, "cases/index.json", []byte(`{"cases":[]}`), "")
	require.NoError(t, err)

	// A write with the current token succeeds and rotates the token.
	newToken, err := backend.PutFile(ctx, "cases/index.json", []byte(`{"cases":[1]}`), token)
	require.NoError(t, err)
	require.NotEqual(t, token, newToken)

	// Reusing the stale token is a conflict.
	_, err = backend.PutFile(ctx, "cases/index.json", []byte(`{"cases":[2]}`), token)
	require.ErrorIs(t, err, storage.ErrConflict)
}

func TestGitHub_BlindCreateOverExistingConflicts(t *testing.T) {
	ctx := context.Background()
	backend, _ := newGitHubBackend(t)

	_, err := backend.PutFile(ctx, "cases/index.json", []byte(`{"cases":[]}`), "")
	require.NoError(t, err)

	_, err = backend.PutFile(ctx, "cases/index.json", []byte(`{"cases":[1]}`), "")
	require.ErrorIs(t, err, storage.ErrConflict)
}

func TestGitHub_DecodesWrappedBase64(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Emulate the 60-column wrapping GitHub applies to content.
		encoded := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 content that is long enough to wrap across lines"))
		var wrapped strings.Builder
		for i := 0; i < len(encoded); i += 60 {
			end := min(i+60, len(encoded))
			wrapped.WriteString(encoded[i:end])
			wrapped.WriteString("\n")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": wrapped.String(), "encoding": "base64", "sha": "abc",
		})
	}))
	t.Cleanup(srv.Close)

	backend := storage.NewGitHub(srv.URL, "tok", "county", "evictions")
	content, token, err := backend.GetFile(ctx, "cases/HOU-1/Summons.pdf")
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 content that is long enough to wrap across lines", string(content))
	require.Equal(t, "abc", token)
}

func TestGitHub_ListDirs(t *testing.T) {
	ctx := context.Background()
	backend, _ := newGitHubBackend(t)

	_, err := backend.PutFile(ctx, "cases/HOU-1/case_data.json", []byte("{}"), "")
	require.NoError(t, err)
	_, err = backend.PutFile(ctx, "cases/HOU-2/case_data.json", []byte("{}"), "")
	require.NoError(t, err)
	_, err = backend.PutFile(ctx, "cases/index.json", []byte(`{"cases":[]}`), "")
	require.NoError(t, err)

	dirs, err := backend.ListDirs(ctx, "cases")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"HOU-1", "HOU-2"}, dirs)
}
