package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/testutil"
	"github.com/aanand-mishra/schools-api/internal/upload"
)

type recordedPut struct {
	method      string
	path        string
	contentType string
	body        []byte
}

func fakeS3(t *testing.T, status int) (*httptest.Server, func() []recordedPut) {
	t.Helper()

	var (
		mu   sync.Mutex
		puts []recordedPut
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		puts = append(puts, recordedPut{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		})
		mu.Unlock()

		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
			return
		}
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []recordedPut {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedPut(nil), puts...)
	}
}

func testConfig(endpoint string) config.S3 {
	return config.S3{
		Bucket:          "school-images",
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		KeyPrefix:       "schoolImages/",
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(config.S3{Region: "us-east-1"}); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}

func TestSaveUploadsObject(t *testing.T) {
	srv, puts := fakeS3(t, http.StatusOK)

	sink, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	sink.now = func() time.Time { return time.UnixMilli(1700000000000) }

	ref, err := sink.Save(context.Background(), upload.File{
		Filename:    "front.png",
		ContentType: "image/png",
		Data:        testutil.PNG,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	wantPrefix := srv.URL + "/school-images/schoolImages/image-1700000000000-"
	if !strings.HasPrefix(ref, wantPrefix) || !strings.HasSuffix(ref, ".png") {
		t.Fatalf("ref = %q, want prefix %q", ref, wantPrefix)
	}

	got := puts()
	if len(got) != 1 {
		t.Fatalf("requests = %d, want 1", len(got))
	}
	put := got[0]
	if put.method != http.MethodPut {
		t.Errorf("method = %s, want PUT", put.method)
	}
	if !strings.HasPrefix(put.path, "/school-images/schoolImages/image-") {
		t.Errorf("path = %q", put.path)
	}
	if put.contentType != "image/png" {
		t.Errorf("content type = %q", put.contentType)
	}
	if !bytes.Equal(put.body, testutil.PNG) {
		t.Error("uploaded bytes differ")
	}
}

func TestSaveReportsFailure(t *testing.T) {
	srv, _ := fakeS3(t, http.StatusForbidden)

	sink, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	_, err = sink.Save(context.Background(), upload.File{
		Filename:    "front.png",
		ContentType: "image/png",
		Data:        testutil.PNG,
	})
	if err == nil {
		t.Fatal("expected error from rejected upload")
	}
}

func TestObjectURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.S3
		want string
	}{
		{
			name: "public base url",
			cfg:  config.S3{Bucket: "b", Region: "us-east-1", PublicBaseURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com/schoolImages/a.png",
		},
		{
			name: "custom endpoint",
			cfg:  config.S3{Bucket: "b", Region: "us-east-1", Endpoint: "http://localhost:9000/"},
			want: "http://localhost:9000/b/schoolImages/a.png",
		},
		{
			name: "aws virtual host",
			cfg:  config.S3{Bucket: "b", Region: "ap-south-1"},
			want: "https://b.s3.ap-south-1.amazonaws.com/schoolImages/a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := NewWithClient(nil, tt.cfg)
			if got := sink.ObjectURL("schoolImages/a.png"); got != tt.want {
				t.Errorf("ObjectURL = %q, want %q", got, tt.want)
			}
		})
	}
}
