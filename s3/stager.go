package s3

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/storinews/courier"
)

// ObjectGetter is the slice of the S3 API the stager needs. Tests substitute a
// fake here.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Stager downloads attachments from the bucket into per-call scratch
// directories under a common root.
type Stager struct {
	client     ObjectGetter
	bucket     string
	scratchDir string
}

// NewStager builds a stager with an S3 client from the configured credentials.
func NewStager(ctx context.Context, config *courier.Config) (*Stager, error) {
	awsOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Storage.Region),
	}
	if config.Storage.AccessKey != "" && config.Storage.SecretKey != "" {
		awsOptions = append(awsOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.Storage.AccessKey, config.Storage.SecretKey, ""),
		))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, awsOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if config.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewStagerWithClient(client, config.Storage.Bucket, config.Storage.ScratchDir), nil
}

// NewStagerWithClient builds a stager around a pre-configured client.
func NewStagerWithClient(client ObjectGetter, bucket, scratchDir string) *Stager {
	return &Stager{
		client:     client,
		bucket:     bucket,
		scratchDir: scratchDir,
	}
}

// Stage downloads the object named by key into a directory unique to this
// call, so concurrent sends cannot collide on filenames or purge each other's
// attachments. The returned cleanup removes the call's directory.
func (s *Stager) Stage(ctx context.Context, key string) (string, func() error, error) {
	dir := filepath.Join(s.scratchDir, uuid.NewV4().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, errors.Wrap(err, "failed to create scratch directory")
	}
	cleanup := func() error {
		return purge(dir)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		_ = cleanup()
		return "", nil, errors.Wrapf(err, "failed to download %s from bucket %s", key, s.bucket)
	}
	defer out.Body.Close()

	path := filepath.Join(dir, filepath.Base(key))
	f, err := os.Create(path)
	if err != nil {
		_ = cleanup()
		return "", nil, errors.Wrap(err, "failed to create staged file")
	}

	if _, err := io.Copy(f, out.Body); err != nil {
		_ = f.Close()
		_ = cleanup()
		return "", nil, errors.Wrap(err, "failed to write staged file")
	}
	if err := f.Close(); err != nil {
		_ = cleanup()
		return "", nil, errors.Wrap(err, "failed to write staged file")
	}

	return path, cleanup, nil
}

// purge deletes every entry in dir, then dir itself. Every failed deletion is
// reported, not just the first.
func purge(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "failed to read scratch directory")
	}

	var errs []error
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Wrap(stderrors.Join(errs...), "failed to purge scratch directory")
	}

	return os.Remove(dir)
}
