package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFSStorePut(t *testing.T) {
	dir := t.TempDir()
	s := NewFSStore(dir, "http://localhost:8080/")

	url, err := s.Put(context.Background(), "products/abc.png", []byte("png"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "http://localhost:8080/uploads/products/abc.png" {
		t.Fatalf("url = %s", url)
	}
	data, err := os.ReadFile(filepath.Join(dir, "products", "abc.png"))
	if err != nil || string(data) != "png" {
		t.Fatalf("stored data = %q, %v", data, err)
	}

	if err := s.Delete(context.Background(), "products/abc.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(context.Background(), "products/abc.png"); err != nil {
		t.Fatalf("Delete of missing object should be nil, got %v", err)
	}
}

func TestFSStoreKeyStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	s := NewFSStore(dir, "http://x")

	if _, err := s.Put(context.Background(), "../../etc/passwd", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "etc", "passwd")); err != nil {
		t.Fatalf("object should be stored under the upload dir: %v", err)
	}
	if _, err := s.Put(context.Background(), "", []byte("x")); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestFSStoreURLCarriesPrefixOnce(t *testing.T) {
	for _, base := range []string{"http://localhost:8080", "http://localhost:8080/uploads", "http://localhost:8080/uploads/"} {
		s := NewFSStore(t.TempDir(), base)
		url, err := s.Put(context.Background(), "products/1/a.png", []byte("png"))
		if err != nil {
			t.Fatalf("Put(%s): %v", base, err)
		}
		if url != "http://localhost:8080/uploads/products/1/a.png" {
			t.Errorf("base %s: url = %s", base, url)
		}
	}
}
