// Package storage keeps uploaded résumé files in an S3-compatible bucket
// such as Cloudflare R2 or MinIO.
package storage

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"

	"github.com/jonathan/ats-assistant/internal/config"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// BlobStore stores résumé files. The server runs without one when no
// bucket is configured.
type BlobStore interface {
	Put(ctx context.Context, ownerID, fileName string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// ObjectAPI is the part of *s3.Client the store uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ResumeStore is a BlobStore backed by a bucket.
type ResumeStore struct {
	client ObjectAPI
	bucket string
	prefix string
}

// NewResumeStore wraps an existing client.
func NewResumeStore(client ObjectAPI, bucket, prefix string) *ResumeStore {
	return &ResumeStore{client: client, bucket: bucket, prefix: prefix}
}

// NewS3Client builds a client for cfg. A custom endpoint switches to
// path-style addressing, which R2 and MinIO expect.
func NewS3Client(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// New returns a ResumeStore for cfg, or nil when no bucket is configured.
func New(ctx context.Context, cfg config.StorageConfig) (*ResumeStore, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewResumeStore(client, cfg.Bucket, cfg.Prefix), nil
}

// Put uploads data under a key derived from ownerID and fileName and
// returns the key.
func (s *ResumeStore) Put(ctx context.Context, ownerID, fileName string, data []byte, contentType string) (string, error) {
	key := ObjectKey(s.prefix, ownerID, fileName)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", errors.Wrapf(err, "put object %s", key)
	}
	return key, nil
}

// Get downloads the object at key.
func (s *ResumeStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, errors.Wrapf(ErrNotFound, "get object %s", key)
		}
		return nil, errors.Wrapf(err, "get object %s", key)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read object %s", key)
	}
	return data, nil
}

// ObjectKey builds prefix/ownerID/name where name is fileName reduced to
// its base and to characters safe in a URL path.
func ObjectKey(prefix, ownerID, fileName string) string {
	name := sanitizeFileName(fileName)
	return path.Join(strings.Trim(prefix, "/"), ownerID, name)
}

func sanitizeFileName(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, `\`, "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), ".")
	if name == "" || name == "_" {
		return "resume"
	}
	return name
}

// MemoryStore is an in-process BlobStore for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	prefix  string
	objects map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{prefix: prefix, objects: make(map[string][]byte)}
}

// Put implements BlobStore.
func (m *MemoryStore) Put(_ context.Context, ownerID, fileName string, data []byte, _ string) (string, error) {
	key := ObjectKey(m.prefix, ownerID, fileName)
	m.mu.Lock()
	m.objects[key] = append([]byte(nil), data...)
	m.mu.Unlock()
	return key, nil
}

// Get implements BlobStore.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "get object %s", key)
	}
	return append([]byte(nil), data...), nil
}

var (
	_ BlobStore = (*ResumeStore)(nil)
	_ BlobStore = (*MemoryStore)(nil)
)
