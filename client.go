// Package geostore provides client initialization and configuration.
//
// The Client mediates all access to a single bucket resolved at construction
// time, either from an explicit option or from the process environment, and
// verifies read access before it is handed to the caller.
package geostore

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"go.uber.org/zap"

	"github.com/yourorg/geostore/errors"
	"github.com/yourorg/geostore/gstypes"
	"github.com/yourorg/geostore/internal/s3api"
	"github.com/yourorg/geostore/internal/validation"
)

// EnvBucketName is the environment variable supplying the default bucket
// name when none is given explicitly.
const EnvBucketName = "S3_BUCKET_NAME"

// Client provides bucket-scoped access to geospatial and tabular files
// stored in S3. It is safe for concurrent use.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// rawClient holds the actual AWS S3 client when constructed via New
	rawClient *s3.Client

	// config holds the AWS configuration
	config aws.Config

	// bucket is the bucket every operation targets; non-empty after construction
	bucket string

	// mu protects concurrent access to the filesystem handle
	mu sync.RWMutex

	// fs is the filesystem abstraction used for temp-file round trips
	fs fs.Filesystem

	// log records per-operation failures and transfer events
	log *zap.Logger
}

// New creates a new storage client with the provided options.
// It loads AWS credentials using the default credential chain, resolves the
// target bucket (WithBucket option or the S3_BUCKET_NAME environment
// variable), and verifies read access with a bounded listing request.
//
// Construction fails with ErrBucketNotConfigured when no bucket can be
// resolved, ErrAccessDenied when the caller cannot read the bucket, and
// ErrBucketNotFound when the bucket does not exist.
//
// Example:
//
//	client, err := geostore.New(ctx,
//	    geostore.WithBucket("amenity-data"),
//	    geostore.WithRegion("eu-west-1"),
//	)
func New(ctx context.Context, opts ...gstypes.Option) (*Client, error) {
	clientCfg := &gstypes.ClientConfig{
		MaxRetries: 3, // Default retry count
	}
	for _, opt := range opts {
		opt(clientCfg)
	}

	bucket := clientCfg.Bucket
	if bucket == "" {
		bucket = os.Getenv(EnvBucketName)
	}
	if bucket == "" {
		return nil, errors.NewError("init", errors.ErrBucketNotConfigured).
			WithMessage("no bucket supplied and " + EnvBucketName + " is unset")
	}
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, errors.NewError("init", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1" // AWS default region
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	// Custom endpoints support MinIO and LocalStack deployments.
	endpoint := clientCfg.Endpoint
	if endpoint == "" {
		endpoint = os.Getenv("AWS_ENDPOINT_URL_S3")
	}
	if endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	if clientCfg.ForcePathStyle || strings.EqualFold(os.Getenv("AWS_S3_FORCE_PATH_STYLE"), "true") {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if clientCfg.CustomHTTPClient != nil {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = clientCfg.CustomHTTPClient
		})
	} else if clientCfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	client := &Client{
		s3Client:  s3Client,
		rawClient: s3Client,
		config:    cfg,
		bucket:    bucket,
		fs:        resolveFilesystem(clientCfg),
		log:       resolveLogger(clientCfg),
	}

	if err := client.VerifyAccess(ctx); err != nil {
		return nil, err
	}

	return client, nil
}

// NewWithClient creates a storage client with a custom S3API implementation
// and an explicit bucket. The access bootstrap is skipped.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, bucket string, opts ...gstypes.Option) *Client {
	clientCfg := &gstypes.ClientConfig{}
	for _, opt := range opts {
		opt(clientCfg)
	}

	return &Client{
		s3Client: s3Client,
		config:   aws.Config{},
		bucket:   bucket,
		fs:       resolveFilesystem(clientCfg),
		log:      resolveLogger(clientCfg),
	}
}

// VerifyAccess checks that the client can read the configured bucket by
// issuing a listing request capped at one key. AccessDenied and NoSuchBucket
// responses map to their sentinel errors.
func (c *Client) VerifyAccess(ctx context.Context) error {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucket),
		MaxKeys: aws.Int32(1),
	}

	if _, err := c.s3Client.ListObjectsV2(ctx, input); err != nil {
		c.log.Error("bucket access check failed",
			zap.String("bucket", c.bucket),
			zap.Error(err))
		return errors.NewBucketError("verifyAccess", c.bucket, convertAccessError(err))
	}

	c.log.Debug("bucket access verified", zap.String("bucket", c.bucket))
	return nil
}

// Bucket returns the bucket name resolved at construction.
func (c *Client) Bucket() string {
	return c.bucket
}

// SetFilesystem sets the filesystem implementation used for temp-file
// round trips. This is useful for testing with in-memory filesystems.
func (c *Client) SetFilesystem(filesystem fs.Filesystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fs = filesystem
}

// filesystem returns the current filesystem handle.
//
//nolint:ireturn // interface return mirrors the fs abstraction
func (c *Client) filesystem() fs.Filesystem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fs
}

// Close releases any resources held by the client.
// Currently a no-op but included for future extensibility.
func (c *Client) Close() error {
	return nil
}

// convertAccessError maps bootstrap listing failures to sentinel errors.
func convertAccessError(err error) error {
	var noSuchBucket *awstypes.NoSuchBucket
	if stderrors.As(err, &noSuchBucket) {
		return errors.ErrBucketNotFound
	}

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "AccessDenied"):
		return errors.ErrAccessDenied
	case strings.Contains(errMsg, "NoSuchBucket"):
		return errors.ErrBucketNotFound
	}

	return err
}

//nolint:ireturn // interface return mirrors the fs abstraction
func resolveFilesystem(cfg *gstypes.ClientConfig) fs.Filesystem {
	if cfg.Filesystem != nil {
		return cfg.Filesystem
	}
	// Default to OS filesystem rooted at /
	return billy.NewOSFS("/")
}

func resolveLogger(cfg *gstypes.ClientConfig) *zap.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return zap.NewNop()
}
