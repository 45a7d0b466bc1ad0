package aws

import (
	"testing"
	"time"
)

type mapStorage map[string][]byte

func (m mapStorage) Get(key string) ([]byte, error)                    { return m[key], nil }
func (m mapStorage) Set(key string, val []byte, _ time.Duration) error { m[key] = val; return nil }
func (m mapStorage) Delete(key string) error                           { delete(m, key); return nil }
func (m mapStorage) Reset() error                                      { clear(m); return nil }
func (m mapStorage) Close() error                                      { return nil }

func TestBucket_URL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		region   string
		want     string
	}{
		{"minio", "http://localhost:9000/", "", "http://localhost:9000/icons/categories/1/a.png"},
		{"aws", "", "eu-central-1", "https://icons.s3.eu-central-1.amazonaws.com/categories/1/a.png"},
		{"bare", "", "", "categories/1/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBucket(nil, tt.endpoint, "icons", tt.region)
			if got := b.URL("categories/1/a.png"); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestBucket_UploadDelete(t *testing.T) {
	store := mapStorage{}
	b := NewBucket(store, "", "icons", "")

	if err := b.Upload("k", []byte("png")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := b.Download("k"); string(got) != "png" {
		t.Fatalf("expected stored bytes, got %q", got)
	}
	if err := b.Delete("k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store["k"]; ok {
		t.Fatalf("expected key to be deleted")
	}
}
