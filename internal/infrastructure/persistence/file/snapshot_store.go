package file

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/tasktrack/internal/application/dto"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/port/output"
)

// SnapshotStore keeps the snapshot in a single flat file
type SnapshotStore struct {
	fs         afero.Fs
	path       string
	archiveDir string
}

var _ output.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a store for path. Archives go to an "archives"
// directory next to it.
func NewSnapshotStore(fs afero.Fs, path string) *SnapshotStore {
	return &SnapshotStore{
		fs:         fs,
		path:       path,
		archiveDir: filepath.Join(filepath.Dir(path), "archives"),
	}
}

// Path returns the snapshot file path
func (s *SnapshotStore) Path() string {
	return s.path
}

// Save replaces the snapshot file atomically
func (s *SnapshotStore) Save(ctx context.Context, snap dto.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return &output.PersistenceError{Op: "save", Err: err}
	}
	err := WriteAtomic(s.fs, s.path, func(w io.Writer) error {
		return Encode(w, snap)
	})
	var perr *output.PersistenceError
	if errors.As(err, &perr) {
		return perr
	}
	if err != nil {
		return &output.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// Load reads the snapshot file. A missing file yields an empty snapshot.
func (s *SnapshotStore) Load(ctx context.Context) (dto.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return dto.Snapshot{}, &output.PersistenceError{Op: "load", Err: err}
	}
	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return dto.Snapshot{}, &output.PersistenceError{Op: "load", Err: err}
	}
	if !exists {
		return dto.Snapshot{}, nil
	}

	f, err := s.fs.Open(s.path)
	if err != nil {
		return dto.Snapshot{}, &output.PersistenceError{Op: "load", Err: err}
	}
	defer f.Close()
	return Decode(f)
}

// Archive copies the current snapshot file to archives/<timestamp>_<ULID>.csv
// and returns the archive path. It returns "" when there is nothing to archive.
func (s *SnapshotStore) Archive(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if exists, _ := afero.Exists(s.fs, s.path); !exists {
			return "", nil
		}
		return "", fmt.Errorf("failed to read snapshot: %w", err)
	}

	now := time.Now()
	id := ulid.MustNew(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	name := fmt.Sprintf("%s_%s.csv", now.Format("2006-01-02T15-04-05"), id.String())
	dest := filepath.Join(s.archiveDir, name)

	if err := WriteFileAtomic(s.fs, dest, data); err != nil {
		return "", fmt.Errorf("failed to archive snapshot: %w", err)
	}
	return dest, nil
}
