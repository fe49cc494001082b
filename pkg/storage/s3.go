package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultRegion is used when Config.Region is empty.
const DefaultRegion = "us-east-1"

// DefaultMaxObjectSize bounds Get; staged CSV files are far smaller.
const DefaultMaxObjectSize = 32 << 20

// Config points at an S3-compatible bucket.
type Config struct {
	Bucket    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the AWS endpoint, e.g. MinIO or R2.
	Endpoint string
	Region   string
	// Prefix is prepended to every key, e.g. "ochoko/imports".
	Prefix        string
	MaxObjectSize int64
	PathStyle     bool
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

func (c *Config) validate() error {
	var missing []string
	if c.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if c.AccessKey == "" {
		missing = append(missing, "access key")
	}
	if c.SecretKey == "" {
		missing = append(missing, "secret key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.MaxObjectSize <= 0 {
		c.MaxObjectSize = DefaultMaxObjectSize
	}
	c.Prefix = strings.Trim(c.Prefix, "/")
	return nil
}

// S3 stores small objects in one bucket.
type S3 struct {
	client *s3.Client
	cfg    Config
}

// New builds an S3 client from static credentials.
func New(cfg Config) (*S3, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := s3.New(s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		// S3-compatible stores reject the SDK's default trailing checksums.
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})
	return &S3{client: client, cfg: cfg}, nil
}

// Put writes data under key.
func (s *S3) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(s.key(key)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return classify(err, ErrPutFailed)
	}
	return nil
}

// Get reads the object under key, refusing objects larger than the
// configured limit.
func (s *S3) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(key)),
	})
	if err != nil {
		return nil, classify(err, ErrGetFailed)
	}
	defer out.Body.Close()

	if out.ContentLength != nil && *out.ContentLength > s.cfg.MaxObjectSize {
		return nil, ErrTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(out.Body, s.cfg.MaxObjectSize+1))
	if err != nil {
		return nil, errors.Join(ErrGetFailed, err)
	}
	if int64(len(data)) > s.cfg.MaxObjectSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(key)),
	})
	if err != nil {
		err = classify(err, ErrDeleteFailed)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// Ping checks that the bucket is reachable with the configured
// credentials. It serves as a readiness check.
func (s *S3) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
	if err != nil {
		return classify(err, ErrGetFailed)
	}
	return nil
}

func (s *S3) key(k string) string {
	k = strings.TrimLeft(k, "/")
	if s.cfg.Prefix == "" {
		return k
	}
	return s.cfg.Prefix + "/" + k
}
