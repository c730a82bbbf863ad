package modelstore

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"emi-eligibility-engine/internal/utils"
)

// ObjectGetter is the part of the S3 client the source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads artifacts from bucket/prefix.
type S3Source struct {
	client ObjectGetter
	bucket string
	prefix string
}

// NewS3Source creates an S3Source using the default AWS credential chain.
func NewS3Source(ctx context.Context, region, bucket, prefix string) (*S3Source, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3SourceWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3SourceWithClient creates an S3Source over an existing client.
func NewS3SourceWithClient(client ObjectGetter, bucket, prefix string) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for an artifact name.
func (s *S3Source) Key(name string) string {
	return path.Join(s.prefix, name)
}

// Fetch downloads the artifact object.
func (s *S3Source) Fetch(ctx context.Context, name string) ([]byte, error) {
	key := s.Key(name)

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		utils.GetLogger().Error("Failed to download artifact from S3",
			zap.String("bucket", s.bucket),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download artifact: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact content: %w", err)
	}

	utils.GetLogger().Debug("Downloaded artifact from S3",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return data, nil
}

func (s *S3Source) String() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.prefix)
}
