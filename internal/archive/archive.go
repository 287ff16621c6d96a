package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

var ErrEmptyKey = errors.New("archive key is empty")

// Archiver keeps a copy of generated documents: uploaded reports, discharge
// summaries and consultation reports.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// ObjectPutter is the part of the S3 client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Archiver struct {
	client ObjectPutter
	bucket string
	log    logrus.FieldLogger
}

// NewS3Archiver loads the default AWS credential chain for region.
func NewS3Archiver(ctx context.Context, bucket, region string, log logrus.FieldLogger) (*S3Archiver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  cfg.Credentials,
		HTTPClient:   cfg.HTTPClient,
		BaseEndpoint: cfg.BaseEndpoint,
		UsePathStyle: true,
	})
	return NewS3ArchiverWithClient(client, bucket, log), nil
}

func NewS3ArchiverWithClient(client ObjectPutter, bucket string, log logrus.FieldLogger) *S3Archiver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &S3Archiver{client: client, bucket: bucket, log: log}
}

func (a *S3Archiver) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}

	a.log.WithFields(logrus.Fields{"bucket": a.bucket, "key": key, "bytes": len(body)}).Debug("Archived object")
	return nil
}

// NoopArchiver drops everything. Used when no bucket is configured.
type NoopArchiver struct{}

func (NoopArchiver) Put(context.Context, string, []byte, string) error { return nil }

var (
	_ Archiver = (*S3Archiver)(nil)
	_ Archiver = NoopArchiver{}
)
