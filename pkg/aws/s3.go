package aws

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/s3/v2"

	"goldshop/pkg/config"
)

// Bucket stores category icons. Any fiber.Storage works; S3 in production.
type Bucket struct {
	storage  fiber.Storage
	endpoint string
	name     string
	region   string
}

func NewS3Bucket(cfg *config.AppConfig) *Bucket {
	storage := s3.New(s3.Config{
		Endpoint: cfg.AWSEndpoint,
		Bucket:   cfg.AWSBucket,
		Region:   cfg.AWSDefaultRegion,
		Credentials: s3.Credentials{
			AccessKey:       cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
		},
		MaxAttempts:    3,
		RequestTimeout: time.Second * 10,
		Reset:          false,
	})

	return NewBucket(storage, cfg.AWSEndpoint, cfg.AWSBucket, cfg.AWSDefaultRegion)
}

func NewBucket(storage fiber.Storage, endpoint, name, region string) *Bucket {
	return &Bucket{
		storage:  storage,
		endpoint: strings.TrimRight(endpoint, "/"),
		name:     name,
		region:   region,
	}
}

// Upload stores data under key. Objects do not expire.
func (b *Bucket) Upload(key string, data []byte) error {
	return b.storage.Set(key, data, 0)
}

func (b *Bucket) Download(key string) ([]byte, error) {
	return b.storage.Get(key)
}

func (b *Bucket) Delete(key string) error {
	return b.storage.Delete(key)
}

// URL is the public address of key: endpoint/bucket/key for MinIO style
// endpoints, the virtual-hosted AWS form otherwise.
func (b *Bucket) URL(key string) string {
	if b.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", b.endpoint, b.name, key)
	}
	if b.region != "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.name, b.region, key)
	}
	return key
}
