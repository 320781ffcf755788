package mailer

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// s3GetObjectAPI is the part of the S3 client the loader calls.
type s3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Loader reads templates stored under a prefix of an S3 bucket.
type s3Loader struct {
	client s3GetObjectAPI
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Loader creates an S3-backed template loader using the default AWS
// credential chain.
func NewS3Loader(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Loader, error) {
	logger = logger.With().Str("component", "s3-template-loader").Logger()

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 template loader initialised")

	return newS3Loader(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func newS3Loader(client s3GetObjectAPI, bucket, prefix string, logger zerolog.Logger) *s3Loader {
	return &s3Loader{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

func (l *s3Loader) Load(ctx context.Context, name string) (string, error) {
	key := l.prefix + name

	result, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		l.logger.Warn().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", key).
			Msg("failed to get template from S3")
		return "", fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", l.bucket, key, err)
	}
	defer result.Body.Close()

	b, err := io.ReadAll(io.LimitReader(result.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read S3 object %s: %w", key, err)
	}

	l.logger.Info().
		Str("bucket", l.bucket).
		Str("key", key).
		Msg("template loaded from S3")

	return string(b), nil
}
