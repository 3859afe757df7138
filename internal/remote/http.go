package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"enginectl/pkg/types"
)

// HTTPStore talks to an artifactd server (or anything speaking its API:
// /v1/list/{prefix} for listings, /v1/files/{path} for contents).
type HTTPStore struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

func (s *HTTPStore) List(ctx context.Context, prefix string) ([]types.RemoteFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url("list", prefix), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, Transient(err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "list "+prefix); err != nil {
		return nil, err
	}
	var lr types.ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, Transient(fmt.Errorf("decode listing: %w", err))
	}
	return lr.Files, nil
}

func (s *HTTPStore) Download(ctx context.Context, remotePath, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url("files", remotePath), nil)
	if err != nil {
		return err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return Transient(err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "download "+remotePath); err != nil {
		return err
	}
	if err := writeLocal(localPath, resp.Body); err != nil {
		return Transient(err)
	}
	return nil
}

func (s *HTTPStore) Upload(ctx context.Context, localPath, remotePath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.url("files", remotePath), f)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := s.Client.Do(req)
	if err != nil {
		return Transient(err)
	}
	defer resp.Body.Close()
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return Transient(err)
	}
	return checkStatus(resp, "upload "+remotePath)
}

func (s *HTTPStore) url(kind, p string) string {
	segs := strings.Split(strings.Trim(p, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return s.BaseURL + "/v1/" + kind + "/" + strings.Join(segs, "/")
}

// checkStatus maps HTTP status codes onto the error taxonomy: 5xx is
// transient and retried, 404 means the artifact does not exist, anything
// else unexpected is permanent.
func checkStatus(resp *http.Response, op string) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500:
		return Transient(fmt.Errorf("%s: status %d", op, resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return os.ErrNotExist
	default:
		return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}
}
