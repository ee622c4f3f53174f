package geostore

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"go.uber.org/zap"

	"github.com/yourorg/geostore/gstypes"
)

// WithBucket sets the bucket every operation targets, overriding the
// S3_BUCKET_NAME environment variable.
func WithBucket(bucket string) gstypes.Option {
	return func(c *gstypes.ClientConfig) {
		c.Bucket = bucket
	}
}

// WithRegion sets the AWS region for the client.
func WithRegion(region string) gstypes.Option {
	return func(c *gstypes.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom endpoint URL (for MinIO, LocalStack, etc.).
func WithEndpoint(endpoint string) gstypes.Option {
	return func(c *gstypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle enables path-style addressing, required by most
// S3-compatible endpoints.
func WithForcePathStyle() gstypes.Option {
	return func(c *gstypes.ClientConfig) {
		c.ForcePathStyle = true
	}
}

// WithMaxRetries sets the maximum retry attempts for failed requests.
func WithMaxRetries(retries int) gstypes.Option {
	return func(c *gstypes.ClientConfig) {
		c.MaxRetries = retries
	}
}

// WithTimeout sets the per-request timeout on the underlying HTTP client.
func WithTimeout(timeout time.Duration) gstypes.Option {
	return func(c *gstypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client, overriding WithTimeout.
func WithHTTPClient(client *http.Client) gstypes.Option {
	return func(c *gstypes.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithAWSConfig supplies a pre-built AWS configuration instead of the
// default credential chain.
func WithAWSConfig(cfg *aws.Config) gstypes.Option {
	return func(c *gstypes.ClientConfig) {
		c.CustomAWSConfig = cfg
	}
}

// WithFilesystem sets the filesystem used for temp-file round trips.
// Defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) gstypes.Option {
	return func(c *gstypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) gstypes.Option {
	return func(c *gstypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithContentType sets the Content-Type for an upload, bypassing detection.
func WithContentType(contentType string) gstypes.UploadOption {
	return func(c *gstypes.UploadConfig) {
		c.ContentType = contentType
	}
}

// WithMetadata sets user-defined metadata stored with the object.
func WithMetadata(metadata map[string]string) gstypes.UploadOption {
	return func(c *gstypes.UploadConfig) {
		c.Metadata = metadata
	}
}

// WithStorageClass sets the storage class for an upload.
func WithStorageClass(class gstypes.StorageClass) gstypes.UploadOption {
	return func(c *gstypes.UploadConfig) {
		c.StorageClass = class
	}
}

// WithMaxKeys caps the page size for a single listing request.
func WithMaxKeys(maxKeys int32) gstypes.ListOption {
	return func(c *gstypes.ListConfig) {
		c.MaxKeys = maxKeys
	}
}

// WithDelimiter groups keys by the given delimiter (commonly "/").
func WithDelimiter(delimiter string) gstypes.ListOption {
	return func(c *gstypes.ListConfig) {
		c.Delimiter = delimiter
	}
}

// WithStartAfter starts the listing after the given key.
func WithStartAfter(key string) gstypes.ListOption {
	return func(c *gstypes.ListConfig) {
		c.StartAfter = key
	}
}
