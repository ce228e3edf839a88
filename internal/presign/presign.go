// Package presign issues presigned POST descriptors for S3-compatible storage.
// The descriptors it returns are consumed by the upload package.
package presign

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/singlebase/singlebase-go/internal/upload"
)

const (
	DefaultRegion  = "us-east-1"
	DefaultExpires = 15 * time.Minute
)

// ErrMissingBucket is returned by New when no bucket is configured.
var ErrMissingBucket = errors.New("presign: bucket is required")

// Config describes the storage target.
type Config struct {
	Bucket   string
	Region   string
	Endpoint string
	// Static credentials. When empty the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	Expires         time.Duration
	KeyPrefix       string
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// Presigner signs POST policies for one bucket.
type Presigner struct {
	client  *s3.PresignClient
	bucket  string
	expires time.Duration
	prefix  string
}

// New loads AWS configuration and builds a Presigner.
func New(ctx context.Context, cfg Config) (*Presigner, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrMissingBucket
	}
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	expires := cfg.Expires
	if expires <= 0 {
		expires = DefaultExpires
	}

	return &Presigner{
		client:  s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		expires: expires,
		prefix:  cfg.KeyPrefix,
	}, nil
}

// RandomKey returns prefix/YYYY/M/D/<uuid>.
func RandomKey(prefix string) string {
	d := time.Now().UTC()
	return path.Join(prefix, fmt.Sprintf("%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New()))
}

// PresignPost returns a descriptor for uploading one object under key.
// An empty key is replaced by RandomKey.
func (p *Presigner) PresignPost(ctx context.Context, key string) (upload.Descriptor, error) {
	if key == "" {
		key = RandomKey(p.prefix)
	}

	req, err := p.client.PresignPostObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignPostOptions) {
		o.Expires = p.expires
	})
	if err != nil {
		return upload.Descriptor{}, fmt.Errorf("presign %s: %w", key, err)
	}

	fields := make(map[string]string, len(req.Values))
	for k, v := range req.Values {
		fields[k] = v
	}
	return upload.Descriptor{URL: req.URL, Fields: fields}, nil
}
