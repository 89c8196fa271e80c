package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	cfg "github.com/maheshrc27/crosspost/configs"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// MediaHostService publishes local media at a public URL. Threads fetches
// images by URL, so uploads go through here first.
type MediaHostService interface {
	Host(ctx context.Context, path string) (string, error)
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type r2Service struct {
	client    objectPutter
	bucket    string
	publicURL string
}

// NewR2Service returns a MediaHostService backed by a Cloudflare R2 bucket.
func NewR2Service(ctx context.Context, c cfg.Config) (MediaHostService, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.R2AccessKey, c.R2SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2AccountID))
	})

	return newR2Service(client, c.R2BucketName, c.R2PublicURL), nil
}

func newR2Service(client objectPutter, bucket, publicURL string) *r2Service {
	return &r2Service{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Host uploads the file under a random key and returns its public URL.
func (r *r2Service) Host(ctx context.Context, path string) (string, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	contentType := "application/octet-stream"
	if kind, err := filetype.Match(file); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	key := id + strings.ToLower(filepath.Ext(path))

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return fmt.Sprintf("%s/%s", r.publicURL, key), nil
}
