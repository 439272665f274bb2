package local

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aanand-mishra/schools-api/internal/testutil"
	"github.com/aanand-mishra/schools-api/internal/upload"
)

func TestSaveWritesFileAndReturnsPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public", "schoolImages")
	sink := New(dir, "schoolImages/")
	sink.now = func() time.Time { return time.UnixMilli(1700000000000) }

	ref, err := sink.Save(context.Background(), upload.File{
		Filename:    "campus.png",
		ContentType: "image/png",
		Data:        testutil.PNG,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if !strings.HasPrefix(ref, "/schoolImages/image-1700000000000-") || !strings.HasSuffix(ref, ".png") {
		t.Fatalf("ref = %q", ref)
	}

	got, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(ref, "/schoolImages/")))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(got, testutil.PNG) {
		t.Fatal("stored bytes differ")
	}
}

func TestSaveTwiceProducesDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	sink := New(dir, "/schoolImages")

	file := upload.File{Filename: "a.png", ContentType: "image/png", Data: testutil.PNG}
	first, err := sink.Save(context.Background(), file)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := sink.Save(context.Background(), file)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first == second {
		t.Fatalf("refs collide: %q", first)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("files = %d, want 2", len(entries))
	}
}

func TestSaveFailsWhenDirIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	sink := New(filepath.Join(blocker, "images"), "/schoolImages")
	_, err := sink.Save(context.Background(), upload.File{Filename: "a.png", ContentType: "image/png", Data: testutil.PNG})
	if err == nil {
		t.Fatal("expected error when directory cannot be created")
	}
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	sink := New(dir, "/schoolImages")
	if _, err := sink.Save(ctx, upload.File{Filename: "a.png", Data: testutil.PNG}); err == nil {
		t.Fatal("expected context error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("files = %d, want 0", len(entries))
	}
}
