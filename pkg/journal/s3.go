package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of *s3.Client the S3 sink uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink buffers lines and uploads them as one object per Rotate or Close.
//
// Object keys are prefix + RFC 3339 UTC timestamp + ".jsonl". Two
// rotations within the same second get a numeric suffix.
type S3Sink struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time

	mu      sync.Mutex
	buf     bytes.Buffer
	lastKey string
	dup     int
}

// NewS3Sink creates a sink uploading to bucket under prefix.
func NewS3Sink(client PutObjectAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// Write implements Sink.
func (s *S3Sink) Write(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Write(line)
	return nil
}

// Buffered returns the number of bytes waiting for upload.
func (s *S3Sink) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

// Rotate uploads the buffered lines, if any, as a new object. On failure
// the lines are kept for the next attempt.
func (s *S3Sink) Rotate(ctx context.Context) error {
	s.mu.Lock()
	if s.buf.Len() == 0 {
		s.mu.Unlock()
		return nil
	}
	body := bytes.Clone(s.buf.Bytes())
	s.buf.Reset()
	key := s.nextKey()
	s.mu.Unlock()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/x-ndjson"),
		Metadata: map[string]string{
			"upload-time": s.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		s.mu.Lock()
		rest := bytes.Clone(s.buf.Bytes())
		s.buf.Reset()
		s.buf.Write(body)
		s.buf.Write(rest)
		s.mu.Unlock()
		return fmt.Errorf("journal: s3 upload %s: %w", key, err)
	}
	return nil
}

// Close uploads what is buffered.
func (s *S3Sink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Rotate(ctx)
}

// nextKey must be called with mu held.
func (s *S3Sink) nextKey() string {
	key := s.prefix + s.now().UTC().Format(time.RFC3339)
	if key == s.lastKey {
		s.dup++
		return fmt.Sprintf("%s-%d.jsonl", key, s.dup)
	}
	s.lastKey = key
	s.dup = 0
	return key + ".jsonl"
}

// S3Config locates the bucket a journal is uploaded to.
type S3Config struct {
	Region   string
	Endpoint string

	// AccessKeyID and SecretAccessKey default to AWS_ACCESS_KEY_ID and
	// AWS_SECRET_ACCESS_KEY.
	AccessKeyID     string
	SecretAccessKey string
}

// ErrNoCredentials is returned by the S3 client when no access key is
// configured.
var ErrNoCredentials = errors.New("journal: no s3 credentials")

// NewS3Client builds an S3 client from static configuration. A custom
// Endpoint switches to path-style addressing, as S3-compatible stores
// expect.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: aws.NewCredentialsCache(staticCredentials(cfg)),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func staticCredentials(cfg S3Config) aws.CredentialsProviderFunc {
	return func(context.Context) (aws.Credentials, error) {
		id, secret := cfg.AccessKeyID, cfg.SecretAccessKey
		if id == "" {
			id = os.Getenv("AWS_ACCESS_KEY_ID")
			secret = os.Getenv("AWS_SECRET_ACCESS_KEY")
		}
		if id == "" || secret == "" {
			return aws.Credentials{}, ErrNoCredentials
		}
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "canopy",
		}, nil
	}
}
