package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pipeline/internal/domain"
)

func testCreative(productID, ratioName string, data []byte) domain.Creative {
	return domain.Creative{
		ProductID: productID,
		Ratio:     domain.AspectRatio{Name: ratioName, Width: 100, Height: 100},
		Format:    "jpg",
		Data:      data,
	}
}

func TestCreativeKey(t *testing.T) {
	got := CreativeKey("P1", "9:16", "jpg")
	if got != "P1/9:16/creative_9:16.jpg" {
		t.Fatalf("key = %q", got)
	}
}

func TestPersistWritesAtDerivedKey(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	path, err := store.Persist(context.Background(), testCreative("P1", "1:1", []byte("jpeg-bytes")))
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	want := filepath.Join(dir, "P1", "1:1", "creative_1:1.jpg")
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("data = %q", data)
	}
}

func TestPersistOverwritesOnRerun(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Persist(context.Background(), testCreative("P1", "1:1", []byte("first"))); err != nil {
		t.Fatalf("first persist: %v", err)
	}
	path, err := store.Persist(context.Background(), testCreative("P1", "1:1", []byte("second")))
	if err != nil {
		t.Fatalf("second persist: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("data = %q, want last write to win", data)
	}
}

func TestPersistLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Persist(context.Background(), testCreative("P1", "16:9", []byte("bytes"))); err != nil {
		t.Fatalf("persist: %v", err)
	}

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasPrefix(d.Name(), ".creative-") {
			t.Fatalf("leftover temp file %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
}

func TestPersistRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, err = store.Persist(context.Background(), testCreative("../escape", "1:1", []byte("x")))
	if !errors.Is(err, domain.ErrPersistFailed) {
		t.Fatalf("err = %v, want ErrPersistFailed", err)
	}
}

func TestPersistHonorsCancelledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Persist(ctx, testCreative("P1", "1:1", []byte("x"))); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Fatal("expected error for blank base path")
	}
}
