package staging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Artifact is one uploaded recording written to disk for the duration of
// a single request.
type Artifact struct {
	ID     string
	Path   string
	Format string
	Size   int64
}

// Stager writes uploads into Dir as <uuid>.<format>.
type Stager struct {
	Dir    string
	Format string
}

// NewStager creates a stager rooted at dir. An empty dir means os.TempDir().
func NewStager(dir, format string) *Stager {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Stager{Dir: dir, Format: format}
}

// Stage copies r into a freshly named file. When the copy fails the file
// is removed before returning, so callers only own an artifact on success.
func (s *Stager) Stage(r io.Reader) (*Artifact, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create staging dir %s", s.Dir)
	}

	id := uuid.NewString()
	path := filepath.Join(s.Dir, id+"."+s.Format)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, errors.Wrap(err, "create staged file")
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		os.Remove(path)
		return nil, errors.Wrap(copyErr, "write staged file")
	}

	return &Artifact{ID: id, Path: path, Format: s.Format, Size: n}, nil
}

// Release deletes the staged file. A file that is already gone is not an error.
func (a *Artifact) Release() error {
	if a == nil {
		return nil
	}
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove staged file %s", a.Path)
	}
	return nil
}
