package artifact

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yanqian/bazi-report/internal/domain/report"
)

// DiskStore keeps one directory per report under a base directory.
type DiskStore struct {
	base string
}

var _ report.ArtifactStore = (*DiskStore)(nil)

// NewDiskStore creates base if needed.
func NewDiskStore(base string) (*DiskStore, error) {
	if base == "" {
		return nil, errors.New("artifact: output dir is required")
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create output dir: %w", err)
	}
	return &DiskStore{base: base}, nil
}

// Reserve creates the report directory. An existing directory means the id is taken.
func (s *DiskStore) Reserve(_ context.Context, id string) error {
	if !report.ValidID(id) {
		return fmt.Errorf("artifact: invalid report id %q", id)
	}
	err := os.Mkdir(filepath.Join(s.base, id), 0o755)
	if errors.Is(err, fs.ErrExist) {
		return report.ErrIDTaken
	}
	return err
}

// Put writes the file through a temp file so readers never see a partial artifact.
func (s *DiskStore) Put(_ context.Context, id, name string, data []byte, contentType string) (report.StoredArtifact, error) {
	target, err := s.path(id, name)
	if err != nil {
		return report.StoredArtifact{}, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+name+".*")
	if err != nil {
		return report.StoredArtifact{}, fmt.Errorf("artifact: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return report.StoredArtifact{}, fmt.Errorf("artifact: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return report.StoredArtifact{}, fmt.Errorf("artifact: close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return report.StoredArtifact{}, fmt.Errorf("artifact: chmod %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return report.StoredArtifact{}, fmt.Errorf("artifact: rename %s: %w", name, err)
	}

	hash := md5.Sum(data)
	return report.StoredArtifact{
		Key:         id + "/" + name,
		Size:        int64(len(data)),
		ContentType: contentType,
		ETag:        hex.EncodeToString(hash[:]),
	}, nil
}

// Get opens a stored file for reading.
func (s *DiskStore) Get(_ context.Context, id, name string) (io.ReadCloser, report.StoredArtifact, error) {
	target, err := s.path(id, name)
	if err != nil {
		return nil, report.StoredArtifact{}, report.ErrArtifactNotFound
	}
	f, err := os.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, report.StoredArtifact{}, report.ErrArtifactNotFound
	}
	if err != nil {
		return nil, report.StoredArtifact{}, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, report.StoredArtifact{}, err
	}
	return f, report.StoredArtifact{
		Key:         id + "/" + name,
		Size:        info.Size(),
		ContentType: report.ContentTypes[name],
	}, nil
}

// Dir returns the directory that holds a report's files.
func (s *DiskStore) Dir(id string) string {
	return filepath.Join(s.base, id)
}

func (s *DiskStore) path(id, name string) (string, error) {
	if !report.ValidID(id) || !report.ValidFile(name) {
		return "", fmt.Errorf("artifact: invalid artifact %q/%q", id, name)
	}
	return filepath.Join(s.base, id, name), nil
}
