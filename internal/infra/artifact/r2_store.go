package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/bazi-report/internal/domain/report"
)

// R2Config describes an S3-compatible bucket such as Cloudflare R2.
type R2Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
}

// R2Store stores report files as objects keyed {prefix}/{id}/{name}.
type R2Store struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

var _ report.ArtifactStore = (*R2Store)(nil)

// NewR2Store constructs the object storage adapter.
func NewR2Store(cfg R2Config, logger *slog.Logger) (*R2Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("artifact: r2 bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init r2 client: %w", err)
	}
	return &R2Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger.With("component", "artifact.r2"),
	}, nil
}

func (s *R2Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

// Reserve fails with ErrIDTaken when any object already lives under the id.
func (s *R2Store) Reserve(ctx context.Context, id string) error {
	if !report.ValidID(id) {
		return fmt.Errorf("artifact: invalid report id %q", id)
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("artifact: ensure bucket: %w", err)
	}
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:  s.key(id, ""),
		MaxKeys: 1,
	})
	for obj := range objects {
		if obj.Err != nil {
			return fmt.Errorf("artifact: list %s: %w", id, obj.Err)
		}
		return report.ErrIDTaken
	}
	return nil
}

// Put uploads one artifact.
func (s *R2Store) Put(ctx context.Context, id, name string, data []byte, contentType string) (report.StoredArtifact, error) {
	if !report.ValidID(id) || !report.ValidFile(name) {
		return report.StoredArtifact{}, fmt.Errorf("artifact: invalid artifact %q/%q", id, name)
	}
	key := s.key(id, name)
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: len(data) < 5*1024*1024,
	})
	if err != nil {
		return report.StoredArtifact{}, fmt.Errorf("artifact: upload %s: %w", key, err)
	}
	s.logger.Debug("artifact uploaded", "key", key, "size", info.Size)
	return report.StoredArtifact{
		Key:         key,
		Size:        info.Size,
		ContentType: contentType,
		ETag:        info.ETag,
	}, nil
}

// Get streams an artifact back.
func (s *R2Store) Get(ctx context.Context, id, name string) (io.ReadCloser, report.StoredArtifact, error) {
	if !report.ValidID(id) || !report.ValidFile(name) {
		return nil, report.StoredArtifact{}, report.ErrArtifactNotFound
	}
	key := s.key(id, name)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, report.StoredArtifact{}, translateErr(err)
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, report.StoredArtifact{}, translateErr(err)
	}
	contentType := stat.ContentType
	if contentType == "" {
		contentType = report.ContentTypes[name]
	}
	return obj, report.StoredArtifact{
		Key:         key,
		Size:        stat.Size,
		ContentType: contentType,
		ETag:        stat.ETag,
	}, nil
}

func (s *R2Store) key(id, name string) string {
	k := id + "/" + name
	if s.prefix != "" {
		k = s.prefix + "/" + k
	}
	return k
}

func translateErr(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return report.ErrArtifactNotFound
	}
	return err
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
