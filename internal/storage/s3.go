package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"sqlgate/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3Client builds a client from cfg. Static credentials are used when
// both keys are set; otherwise the client is anonymous, which suits public
// or gateway-authenticated endpoints.
func NewS3Client(cfg *config.Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.AWSRegion,
		UsePathStyle: cfg.S3PathStyle,
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		id, secret := cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey
		opts.Credentials = aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     id,
				SecretAccessKey: secret,
				Source:          "sqlgate",
			}, nil
		})
	}
	return s3.New(opts)
}

// S3Provider uploads files to a bucket with the multipart upload manager.
type S3Provider struct {
	client *s3.Client
	bucket string
}

func NewS3Provider(client *s3.Client, bucket string) *S3Provider {
	return &S3Provider{
		client: client,
		bucket: bucket,
	}
}

// StreamToFile returns the write end of a pipe feeding the upload. Closing
// it with an error aborts the upload.
func (p *S3Provider) StreamToFile(ctx context.Context, key string) (io.WriteCloser, <-chan error) {
	reader, writer := io.Pipe()
	errChan := make(chan error, 1)

	go func() {
		defer close(errChan)

		uploader := manager.NewUploader(p.client, func(u *manager.Uploader) {
			u.PartSize = 10 * 1024 * 1024
			u.Concurrency = 5
		})

		slog.Info("Starting S3 upload", "bucket", p.bucket, "key", key)
		_, err := uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
			Body:   reader,
		})

		// Unblock the writer if the upload stopped early.
		_ = reader.CloseWithError(err)

		if err != nil {
			slog.Error("S3 upload failed", "key", key, "error", err)
			errChan <- fmt.Errorf("s3 upload failed: %w", err)
			return
		}
		slog.Info("S3 upload finished", "key", key)
		errChan <- nil
	}()

	return writer, errChan
}

func (p *S3Provider) OpenFile(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (p *S3Provider) GetDownloadURL(key string) string {
	return fmt.Sprintf("s3://%s/%s", p.bucket, key)
}
