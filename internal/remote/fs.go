package remote

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"enginectl/pkg/types"
)

// FSStore is a Store backed by a local directory tree. It serves as the
// artifactd backend and as a remote for file-mounted stores (NFS, fuse).
type FSStore struct {
	Root string
}

func NewFSStore(root string) *FSStore { return &FSStore{Root: root} }

func (s *FSStore) List(ctx context.Context, prefix string) ([]types.RemoteFile, error) {
	base := filepath.Join(s.Root, filepath.FromSlash(prefix))
	var out []types.RemoteFile
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == base {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.Root, p)
		if err != nil {
			return err
		}
		out = append(out, types.RemoteFile{Path: filepath.ToSlash(rel), SizeBytes: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Open returns a reader for one stored file. Used by the artifactd server
// side; remote clients go through Download.
func (s *FSStore) Open(remotePath string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.Root, filepath.FromSlash(remotePath)))
}

// Put stores the contents of r at remotePath.
func (s *FSStore) Put(remotePath string, r io.Reader) error {
	return writeLocal(filepath.Join(s.Root, filepath.FromSlash(remotePath)), r)
}

func (s *FSStore) Download(ctx context.Context, remotePath, localPath string) error {
	src, err := os.Open(filepath.Join(s.Root, filepath.FromSlash(remotePath)))
	if err != nil {
		return err
	}
	defer src.Close()
	return writeLocal(localPath, src)
}

func (s *FSStore) Upload(ctx context.Context, localPath, remotePath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer src.Close()
	return writeLocal(filepath.Join(s.Root, filepath.FromSlash(remotePath)), src)
}

// writeLocal copies r to path through a temp file so a partial copy never
// lands under the final name.
func writeLocal(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".partial-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
