package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"leakscan/internal/config"
	"leakscan/internal/domain"
	"leakscan/internal/port"
)

type s3Client struct {
	client   *s3.Client
	maxBytes int64
}

// NewS3Client creates a new S3-backed ObjectStorage implementation. Objects
// larger than maxBytes are rejected while reading; zero disables the limit.
func NewS3Client(cfg *config.S3Config, maxBytes int64) (port.ObjectStorage, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &s3Client{
		client:   s3.NewFromConfig(awsCfg, s3Opts...),
		maxBytes: maxBytes,
	}, nil
}

func (c *s3Client) Download(ctx context.Context, bucket, key string) (*port.StoredObject, error) {
	result, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", domain.ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("s3 download: %w", err)
	}
	defer result.Body.Close()

	if c.maxBytes > 0 && aws.ToInt64(result.ContentLength) > c.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", domain.ErrFileTooLarge, key, aws.ToInt64(result.ContentLength))
	}

	var body io.Reader = result.Body
	if c.maxBytes > 0 {
		body = io.LimitReader(result.Body, c.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("s3 download read: %w", err)
	}
	if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileTooLarge, key)
	}

	return &port.StoredObject{
		Key:         path.Base(key),
		Body:        data,
		ContentType: aws.ToString(result.ContentType),
		Size:        int64(len(data)),
	}, nil
}
