// Package upload validates school images and defines the Sink interface
// that stores them.
//
// Two sinks exist: local (files under a server directory, served back as
// root-relative paths) and s3 (objects in a bucket, referenced by their
// public URL). main picks one from configuration at start-up; handlers
// only see the Sink interface.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageBytes caps the size of one uploaded image (10 MiB).
const MaxImageBytes = 10 << 20

// Errors returned by Inspect.
var (
	ErrNotImage = errors.New("upload: not an image")
	ErrTooLarge = errors.New("upload: image exceeds 10 MiB")
)

// File is a validated image ready to be stored.
type File struct {
	// Filename is the name the client sent. Only its extension is used.
	Filename string
	// ContentType is the type detected from the file contents.
	ContentType string
	Data        []byte
}

// Sink stores image bytes and returns a reference the browser can load:
// a root-relative path or an absolute URL.
type Sink interface {
	Save(ctx context.Context, file File) (string, error)
}

// Inspect reads an uploaded file and checks that it is an image no larger
// than MaxImageBytes. Both the declared Content-Type and the sniffed
// contents must be image types.
func Inspect(fh *multipart.FileHeader) (File, error) {
	if fh.Size > MaxImageBytes {
		return File{}, ErrTooLarge
	}

	declared := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	if !strings.HasPrefix(declared, "image/") {
		return File{}, ErrNotImage
	}

	f, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("upload.Inspect: open: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return File{}, fmt.Errorf("upload.Inspect: read: %w", err)
	}
	if len(data) > MaxImageBytes {
		return File{}, ErrTooLarge
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return File{}, ErrNotImage
	}

	return File{
		Filename:    fh.Filename,
		ContentType: detected.String(),
		Data:        data,
	}, nil
}

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// NewFileName generates a collision-resistant name for file:
// "image-<unix millis>-<random hex><ext>". Nothing from the client name
// survives except a short alphanumeric extension; otherwise the
// extension comes from the detected content type.
func NewFileName(file File, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !extPattern.MatchString(ext) {
		ext = ""
		if m := mimetype.Lookup(file.ContentType); m != nil {
			ext = m.Extension()
		}
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	return fmt.Sprintf("image-%d-%s%s", now.UnixMilli(), suffix, ext)
}
