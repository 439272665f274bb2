// Package s3 stores school images in an S3-compatible bucket and
// references them by public URL.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/upload"
)

// Sink uploads images with PutObject.
type Sink struct {
	client    s3iface.S3API
	bucket    string
	region    string
	endpoint  string
	keyPrefix string
	baseURL   string

	now func() time.Time
}

var _ upload.Sink = (*Sink)(nil)

// New builds a Sink from cfg. Static credentials are used when both
// keys are set; otherwise the SDK's default chain applies (env vars,
// shared config, instance role). A custom endpoint switches to
// path-style addressing for S3-compatible stores.
func New(cfg config.S3) (*Sink, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3.New: bucket is required")
	}

	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
		// Failed uploads surface to the caller immediately.
		MaxRetries: aws.Int(0),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("s3.New: create session: %w", err)
	}

	return NewWithClient(s3.New(sess), cfg), nil
}

// NewWithClient builds a Sink around an existing client.
func NewWithClient(client s3iface.S3API, cfg config.S3) *Sink {
	return &Sink{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		endpoint:  strings.TrimSuffix(cfg.Endpoint, "/"),
		keyPrefix: cfg.KeyPrefix,
		baseURL:   strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		now:       time.Now,
	}
}

// Save uploads file under a generated key and returns its public URL.
func (s *Sink) Save(ctx context.Context, file upload.File) (string, error) {
	key := s.keyPrefix + upload.NewFileName(file, s.now())

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file.Data),
		ContentLength: aws.Int64(int64(len(file.Data))),
		ContentType:   aws.String(file.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3.Save: put object %s: %w", key, err)
	}

	return s.ObjectURL(key), nil
}

// ObjectURL returns the public URL of key.
func (s *Sink) ObjectURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()

	switch {
	case s.baseURL != "":
		return s.baseURL + "/" + escaped
	case s.endpoint != "":
		return s.endpoint + "/" + s.bucket + "/" + escaped
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
	}
}
