// Package blob stores member photos in an S3-compatible bucket and hands
// back publicly resolvable URLs. No deletion or versioning happens here.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const photoPrefix = "member-photos"

// Config holds explicit construction parameters.
type Config struct {
	Bucket   string
	Region   string
	Endpoint string // optional; set for MinIO-style deployments
}

// PhotoStore uploads photo bytes under a generated key.
type PhotoStore struct {
	client *s3.Client
	bucket string
	region string
	base   *url.URL
}

// New creates a photo store from Config using the default credentials chain.
func New(ctx context.Context, cfg Config) (*PhotoStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("photo bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	var base *url.URL
	if cfg.Endpoint != "" {
		if u, err := url.Parse(cfg.Endpoint); err == nil {
			base = u
		}
	}
	return &PhotoStore{client: client, bucket: cfg.Bucket, region: region, base: base}, nil
}

// Upload writes the photo under member-photos/<uuid>.<ext> and returns its
// public URL.
func (p *PhotoStore) Upload(ctx context.Context, fileName, contentType string, r io.Reader) (string, error) {
	key := fmt.Sprintf("%s/%s", photoPrefix, uuid.NewString())
	if ext := fileExt(fileName); ext != "" {
		key += "." + ext
	}

	input := &s3.PutObjectInput{
		Bucket: &p.bucket,
		Key:    &key,
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := p.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	return p.publicURL(key), nil
}

func (p *PhotoStore) publicURL(key string) string {
	if p.base != nil {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(p.base.String(), "/"), p.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key)
}

func fileExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		return strings.ToLower(name[i+1:])
	}
	return ""
}
