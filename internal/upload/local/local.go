// Package local stores school images in a directory on the server's disk.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aanand-mishra/schools-api/internal/upload"
)

// Sink writes images under Dir and references them as URLPrefix/<name>.
// The directory must be served at URLPrefix for the references to load.
type Sink struct {
	Dir       string
	URLPrefix string

	now func() time.Time
}

var _ upload.Sink = (*Sink)(nil)

// New returns a Sink rooted at dir. The directory is created on first save.
func New(dir, urlPrefix string) *Sink {
	return &Sink{
		Dir:       dir,
		URLPrefix: "/" + strings.Trim(urlPrefix, "/"),
		now:       time.Now,
	}
}

// Save writes file to a freshly generated name and returns its
// root-relative path. A partially written file is removed on failure.
func (s *Sink) Save(ctx context.Context, file upload.File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("local.Save: create dir: %w", err)
	}

	name := upload.NewFileName(file, s.now())
	path := filepath.Join(s.Dir, name)

	// O_EXCL: never overwrite an existing image.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("local.Save: create file: %w", err)
	}

	_, werr := f.Write(file.Data)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("local.Save: write file: %w", err)
	}

	return strings.TrimSuffix(s.URLPrefix, "/") + "/" + name, nil
}
