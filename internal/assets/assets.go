// Package assets serves the static guidance images shown around the tide
// chart. Images are compiled into the binary; a bucket can be configured to
// override them without a redeploy.
package assets

import (
	"context"
	"embed"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

//go:embed static
var content embed.FS

// S3Client defines the S3 operations the store needs.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store resolves named assets: from the configured bucket when one is set,
// falling back to the embedded copies.
type Store struct {
	client S3Client
	bucket string
}

// NewStore builds a Store. With an empty bucket the embedded assets are the
// only source and no AWS client is created. A non-empty endpoint points the
// client at a local S3 stand-in with static credentials.
func NewStore(ctx context.Context, bucket, endpoint string) (*Store, error) {
	if bucket == "" {
		return &Store{}, nil
	}

	var cfg aws.Config
	var err error
	if endpoint != "" {
		log.Debug().Str("endpoint", endpoint).Msg("Using local S3 endpoint for assets")
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion("local"),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("test", "test", ""),
			),
		)
	} else {
		cfg, err = awsconfig.LoadDefaultConfig(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{client: client, bucket: bucket}, nil
}

// NewStoreWithClient wires an explicit S3 client, used in tests.
func NewStoreWithClient(client S3Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// Get returns the asset bytes and content type. Unknown names fail with a
// NotFoundError.
func (s *Store) Get(ctx context.Context, name string) ([]byte, string, error) {
	if name != path.Base(name) || strings.HasPrefix(name, ".") {
		return nil, "", &NotFoundError{Name: name}
	}

	if s.client != nil {
		data, err := s.fromBucket(ctx, name)
		if err == nil {
			return data, contentTypeFor(name), nil
		}
		log.Debug().Err(err).Str("asset", name).Msg("Bucket miss, using embedded asset")
	}

	data, err := content.ReadFile("static/" + name)
	if err != nil {
		return nil, "", &NotFoundError{Name: name}
	}
	return data, contentTypeFor(name), nil
}

func (s *Store) fromBucket(ctx context.Context, name string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, err
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Error closing S3 object body")
		}
	}(result.Body)

	return io.ReadAll(result.Body)
}

type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no such asset: %s", e.Name)
}

func contentTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	case ".css":
		return "text/css"
	default:
		return "application/octet-stream"
	}
}
