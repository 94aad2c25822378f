package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/joseph-ayodele/personal-info-parser/internal/common"
)

// S3Store reads license images from an S3-compatible bucket (AWS, R2, MinIO).
type S3Store struct {
	client *s3.Client
	logger *slog.Logger
}

func NewS3Store(ctx context.Context, cfg common.StorageConfig, logger *slog.Logger) (*S3Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	region := cfg.S3Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, common.WrapError(err, "load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, logger: logger}, nil
}

// Get downloads bucket/key, refusing objects larger than maxBytes.
func (s *S3Store) Get(ctx context.Context, bucket, key string, maxBytes int64) ([]byte, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, "", common.InvalidArgumentErrorf("image s3://%s/%s not found", bucket, key)
		}
		s.logger.Error("storage.s3.get_error", "bucket", bucket, "key", key, "error", err)
		return nil, "", common.UpstreamError("fetch image from s3", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			s.logger.Warn("storage.s3.body_close_error", "error", err)
		}
	}(out.Body)

	if n := aws.ToInt64(out.ContentLength); n > maxBytes {
		return nil, "", common.InvalidArgumentErrorf("image exceeds %d bytes", maxBytes)
	}
	data, err := io.ReadAll(io.LimitReader(out.Body, maxBytes+1))
	if err != nil {
		return nil, "", common.UpstreamError("read s3 object", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, "", common.InvalidArgumentErrorf("image exceeds %d bytes", maxBytes)
	}

	s.logger.Info("storage.s3.get", "bucket", bucket, "key", key, "bytes", len(data))
	return data, aws.ToString(out.ContentType), nil
}

