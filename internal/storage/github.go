package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GitHub stores files in a repository through the contents API. The blob
// SHA returned by the API is the version token: the API rejects updates
// carrying a stale SHA, which is what makes blind overwrites impossible.
type GitHub struct {
	baseURL    string
	token      string
	owner      string
	repo       string
	httpClient *http.Client
}

// NewGitHub creates a contents API backend. baseURL is overridable for
// tests; an empty value targets api.github.com.
func NewGitHub(baseURL, token, owner, repo string) *GitHub {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &GitHub{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		owner:   owner,
		repo:    repo,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type contentsFile struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

type putResponse struct {
	Content contentsFile `json:"content"`
}

func (g *GitHub) GetFile(ctx context.Context, path string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.contentsURL(path), nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get %s: %w: %v", path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("get %s failed with status %d: %s", path, resp.StatusCode, string(body))
	}

	var file contentsFile
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, "", fmt.Errorf("decode contents response: %w", err)
	}

	// The API wraps base64 payloads at 60 columns
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return nil, "", fmt.Errorf("decode content of %s: %w", path, err)
	}
	return raw, file.SHA, nil
}

func (g *GitHub) PutFile(ctx context.Context, path string, content []byte, token string) (string, error) {
	message := fmt.Sprintf("Add %s", path)
	if token != "" {
		message = fmt.Sprintf("Update %s", path)
	}

	body, err := json.Marshal(putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     token,
	})
	if err != nil {
		return "", fmt.Errorf("encode put request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.contentsURL(path), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	g.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("put %s: %w: %v", path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict, http.StatusUnprocessableEntity:
		// Stale or missing SHA: someone else updated the file first
		return "", ErrConflict
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("put %s failed with status %d: %s", path, resp.StatusCode, string(respBody))
	}

	var result putResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode put response: %w", err)
	}
	return result.Content.SHA, nil
}

// ListDirs enumerates the directories under path. A contents GET on a
// directory returns an entry array instead of a single file object.
func (g *GitHub) ListDirs(ctx context.Context, path string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.contentsURL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w: %v", path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list %s failed with status %d: %s", path, resp.StatusCode, string(body))
	}

	var entries []contentsFile
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode directory listing: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.Type == "dir" {
			dirs = append(dirs, entry.Name)
		}
	}
	return dirs, nil
}

func (g *GitHub) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", g.baseURL, g.owner, g.repo, path)
}

func (g *GitHub) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.token))
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}
