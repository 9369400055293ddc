// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contentstore

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 stores files as objects in a single bucket. Paths map to keys directly.
type S3 struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

func NewS3(ctx context.Context, cfg Config) (*S3, error) {
	if cfg.S3Bucket == "" {
		return nil, &ConfigError{Message: "Server is not configured for S3 uploads."}
	}
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.S3AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, &ConfigError{Message: "S3 configuration is invalid."}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3PathStyle
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})
	return &S3{client: client, bucket: cfg.S3Bucket, endpoint: strings.TrimRight(cfg.S3Endpoint, "/")}, nil
}

func (s *S3) Driver() Driver { return DriverS3 }

func (s *S3) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &path})
	if err == nil {
		return true, nil
	}
	if statusOf(err) == http.StatusNotFound {
		return false, nil
	}
	return false, s.upstream(err)
}

// Create writes with If-None-Match so a concurrent writer cannot be
// overwritten, after a Head for backends that ignore the condition.
func (s *S3) Create(ctx context.Context, path string, content []byte, _ string) (Info, error) {
	exists, err := s.Exists(ctx, path)
	if err != nil {
		return Info{}, err
	}
	if exists {
		return Info{}, ErrExists
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &path,
		Body:        bytes.NewReader(content),
		ContentType: aws.String("text/csv; charset=utf-8"),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		if statusOf(err) == http.StatusPreconditionFailed {
			return Info{}, ErrExists
		}
		return Info{}, s.upstream(err)
	}
	return Info{Path: path, URL: s.urlFor(path)}, nil
}

func (s *S3) urlFor(path string) string {
	if s.endpoint != "" {
		return s.endpoint + "/" + s.bucket + "/" + path
	}
	return "s3://" + s.bucket + "/" + path
}

func (s *S3) upstream(err error) error {
	return &UpstreamError{Driver: DriverS3, StatusCode: statusOf(err), Err: err}
}

func statusOf(err error) int {
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		return re.HTTPStatusCode()
	}
	return 0
}
