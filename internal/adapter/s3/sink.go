// Package s3 uploads report artifacts to an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
)

// Sink uploads artifacts to bucket under prefix.
type Sink struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
	logger   *slog.Logger
}

// NewSink creates a sink backed by an s3manager uploader for region.
func NewSink(region, bucket, prefix string, logger *slog.Logger) (*Sink, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return NewSinkWithUploader(s3manager.NewUploader(sess), bucket, prefix, logger), nil
}

// NewSinkWithUploader creates a sink with an explicit uploader.
func NewSinkWithUploader(uploader s3manageriface.UploaderAPI, bucket, prefix string, logger *slog.Logger) *Sink {
	return &Sink{uploader: uploader, bucket: bucket, prefix: prefix, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (s *Sink) Name() string { return "s3" }

// Put uploads the artifact and returns its object URL.
func (s *Sink) Put(ctx context.Context, a domain.Artifact) (string, error) {
	key := path.Join(s.prefix, a.Name)
	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(a.Data),
		ContentType: aws.String(a.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload s3://%s/%s: %w", s.bucket, key, err)
	}

	s.logger.Info("artifact uploaded", "bucket", s.bucket, "key", key, "bytes", len(a.Data))
	return out.Location, nil
}
