package repository

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/ArtlessApps/ruckplan/internal/config"
)

// Program covers are immutable once uploaded (new uploads get new keys),
// so clients may cache them for a day.
const coverCacheControl = "public, max-age=86400"

// SeaweedS3Repository stores program cover images on an S3-compatible
// endpoint (SeaweedFS in production). The returned URL goes straight into
// the program document and is served to clients as-is.
type SeaweedS3Repository struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewSeaweedS3Repository creates a new S3 repository
func NewSeaweedS3Repository(ctx context.Context, cfg appConfig.S3Config) (*SeaweedS3Repository, error) {
	// SeaweedFS/MinIO want a signature even when auth is off, so static
	// "any"/"any" credentials keep the SDK happy against both.
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("any", "any", "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // SeaweedFS does not resolve virtual-host buckets
	})

	repo := &SeaweedS3Repository{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.Endpoint, "/"),
	}

	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

// Upload writes the file under the given key and returns its public URL.
func (r *SeaweedS3Repository) Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error) {
	key := strings.TrimLeft(filename, "/")

	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file),
		ContentLength: aws.Int64(int64(len(file))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(coverCacheControl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return r.objectURL(key), nil
}

// objectURL builds the path-style public URL for a stored object.
func (r *SeaweedS3Repository) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", r.baseURL, r.bucket, key)
}

// ensureBucket creates the bucket on first boot against a fresh store.
func (r *SeaweedS3Repository) ensureBucket(ctx context.Context) error {
	if _, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	}); err == nil {
		return nil
	}

	if _, err := r.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(r.bucket),
	}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", r.bucket, err)
	}
	return nil
}
