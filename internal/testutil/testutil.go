// Package testutil holds helpers shared by the package tests: multipart
// request builders, a temp SQLite store and response assertions.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/storage/sqlite"
)

// PNG is the smallest byte sequence content sniffing reports as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

// FilePart describes one file attached to a multipart body.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// ValidFields returns a complete, valid set of school form fields.
func ValidFields() map[string]string {
	return map[string]string{
		"name":    "Green Valley High",
		"address": "12 Park Street, Sector 4",
		"city":    "Pune",
		"state":   "Maharashtra",
		"contact": "+14155551234",
		"email":   "office@greenvalley.edu",
	}
}

// MultipartBody encodes fields and files and returns the body together
// with its Content-Type header value.
func MultipartBody(t *testing.T, fields map[string]string, files ...FilePart) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		if f.ContentType != "" {
			h.Set("Content-Type", f.ContentType)
		}
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part %s: %v", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			t.Fatalf("write part %s: %v", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, w.FormDataContentType()
}

// MultipartRequest builds an httptest request carrying a multipart body.
func MultipartRequest(t *testing.T, method, target string, fields map[string]string, files ...FilePart) *http.Request {
	t.Helper()

	body, contentType := MultipartBody(t, fields, files...)
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", contentType)
	return req
}

// FileHeader parses a single file part back into a *multipart.FileHeader,
// the way net/http hands it to handlers.
func FileHeader(t *testing.T, f FilePart) *multipart.FileHeader {
	t.Helper()

	req := MultipartRequest(t, http.MethodPost, "/", nil, f)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	_, fh, err := req.FormFile(f.Field)
	if err != nil {
		t.Fatalf("form file %s: %v", f.Field, err)
	}
	return fh
}

// NewSQLiteStore opens a SQLite store in a per-test temp directory.
func NewSQLiteStore(t *testing.T) *sqlite.SQLite {
	t.Helper()

	cfg := &config.Config{
		Database: config.Database{
			Driver:      config.DriverSQLite,
			StoragePath: filepath.Join(t.TempDir(), "schools.db"),
		},
	}
	s, err := sqlite.New(cfg)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// AssertStatus checks that the response has the expected status code.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into v.
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
