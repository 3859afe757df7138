package remote

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"enginectl/pkg/types"
)

// Store is the artifact-store collaborator contract: flat path-keyed files,
// no transactional guarantees.
type Store interface {
	// List returns every file under prefix, paths relative to the store root.
	List(ctx context.Context, prefix string) ([]types.RemoteFile, error)
	// Download fetches one remote file into localPath, creating parents.
	Download(ctx context.Context, remotePath, localPath string) error
	// Upload stores one local file at remotePath.
	Upload(ctx context.Context, localPath, remotePath string) error
}

// DownloadPrefix fetches every file under prefix into localDir, preserving
// the layout below the prefix. Each store call is retried with backoff so a
// transient network failure is not conflated with "artifact does not exist."
func DownloadPrefix(ctx context.Context, s Store, prefix, localDir string) error {
	var files []types.RemoteFile
	err := withRetry(ctx, "list "+prefix, func() error {
		var err error
		files, err = s.List(ctx, prefix)
		return err
	})
	if err != nil {
		return err
	}
	for _, f := range files {
		rel := strings.TrimPrefix(strings.TrimPrefix(f.Path, prefix), "/")
		local := filepath.Join(localDir, filepath.FromSlash(rel))
		remote := f.Path
		if err := withRetry(ctx, "download "+remote, func() error {
			return s.Download(ctx, remote, local)
		}); err != nil {
			return err
		}
	}
	return nil
}

// UploadDir stores every regular file under localDir below prefix.
func UploadDir(ctx context.Context, s Store, localDir, prefix string) error {
	var locals []string
	err := filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			locals = append(locals, p)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, local := range locals {
		rel, err := filepath.Rel(localDir, local)
		if err != nil {
			return err
		}
		remote := path.Join(prefix, filepath.ToSlash(rel))
		local := local
		if err := withRetry(ctx, "upload "+remote, func() error {
			return s.Upload(ctx, local, remote)
		}); err != nil {
			return err
		}
	}
	return nil
}
