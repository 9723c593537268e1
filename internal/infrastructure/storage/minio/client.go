// Package minio uploads run artifacts (result table, manifest) to an
// S3-compatible object store.
package minio

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Su-informatics-lab/llm-drug-effect/internal/infrastructure/monitoring/logging"
	"github.com/Su-informatics-lab/llm-drug-effect/pkg/errors"
)

// MinIOAPI is the slice of the minio-go client the uploader needs.
// Narrowed for test doubles.
type MinIOAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// ClientConfig holds object store connection parameters.
type ClientConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Client uploads files into one bucket.
type Client struct {
	api    MinIOAPI
	bucket string
	logger logging.Logger
}

// NewClient connects to the object store.
func NewClient(cfg ClientConfig, log logging.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.InvalidParam("storage endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.InvalidParam("storage bucket is required")
	}

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to build object store client")
	}
	return newClient(api, cfg.Bucket, log), nil
}

func newClient(api MinIOAPI, bucket string, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{api: api, bucket: bucket, logger: log}
}

// EnsureBucket creates the bucket if it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError,
			fmt.Sprintf("failed to check bucket %q", c.bucket))
	}
	if exists {
		return nil
	}
	if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError,
			fmt.Sprintf("failed to create bucket %q", c.bucket))
	}
	c.logger.Info("bucket created", logging.String("bucket", c.bucket))
	return nil
}

// UploadFile stores a local file under objectPrefix, keeping its base name.
// Returns the object name.
func (c *Client) UploadFile(ctx context.Context, localPath, objectPrefix string) (string, error) {
	objectName := filepath.Base(localPath)
	if objectPrefix != "" {
		objectName = objectPrefix + "/" + objectName
	}

	info, err := c.api.FPutObject(ctx, c.bucket, objectName, localPath, minio.PutObjectOptions{})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError,
			fmt.Sprintf("failed to upload %s", localPath))
	}

	c.logger.Info("artifact uploaded",
		logging.String("bucket", c.bucket),
		logging.String("object", objectName),
		logging.Int64("size", info.Size))
	return objectName, nil
}

//Personal.AI order the ending
