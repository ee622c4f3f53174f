package geostore

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/yourorg/geostore/errors"
	"github.com/yourorg/geostore/gstypes"
	"github.com/yourorg/geostore/internal/metrics"
	"github.com/yourorg/geostore/internal/operations/download"
	"github.com/yourorg/geostore/internal/operations/list"
	"github.com/yourorg/geostore/internal/operations/upload"
	"github.com/yourorg/geostore/internal/validation"
)

// DefaultContentType is used when content type detection fails.
const DefaultContentType = "application/octet-stream"

// ListKeys returns the keys of every object under the given prefix, in the
// lexical order the service reports. Pagination is handled transparently.
func (c *Client) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	objects, err := c.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// ListObjects returns every object under the given prefix with its size and
// modification time, following continuation tokens until the listing is
// exhausted.
func (c *Client) ListObjects(ctx context.Context, prefix string) ([]gstypes.ObjectInfo, error) {
	metrics.ListRequests.Inc()

	lister := list.New(c.s3Client)
	objects, err := lister.ListAll(ctx, c.bucket, prefix)
	if err != nil {
		metrics.Errors.Inc()
		c.log.Error("list objects failed",
			zap.String("bucket", c.bucket),
			zap.String("prefix", prefix),
			zap.Error(err))
		return nil, errors.NewBucketError("list", c.bucket, err)
	}

	c.log.Debug("listed objects",
		zap.String("bucket", c.bucket),
		zap.String("prefix", prefix),
		zap.Int("count", len(objects)))
	return objects, nil
}

// ListPage performs a single-page listing request with the given options.
// Callers drive pagination themselves via Page.ContinuationToken.
func (c *Client) ListPage(ctx context.Context, prefix string, opts ...gstypes.ListOption) (*list.Page, error) {
	metrics.ListRequests.Inc()

	listCfg := &gstypes.ListConfig{Prefix: prefix}
	for _, opt := range opts {
		opt(listCfg)
	}

	lister := list.New(c.s3Client)
	page, err := lister.ListPage(ctx, c.bucket, listCfg)
	if err != nil {
		metrics.Errors.Inc()
		c.log.Error("list page failed",
			zap.String("bucket", c.bucket),
			zap.String("prefix", prefix),
			zap.Error(err))
		return nil, errors.NewBucketError("list", c.bucket, err)
	}
	return page, nil
}

// Put uploads a byte payload to the given key.
func (c *Client) Put(ctx context.Context, key string, data []byte, opts ...gstypes.UploadOption) (*gstypes.UploadResult, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}

	startTime := time.Now()
	uploadCfg := c.uploadConfig(key, data, opts)

	uploader := upload.New(c.s3Client)
	result, err := uploader.Put(ctx, c.bucket, key, data, uploadCfg, startTime)
	if err != nil {
		metrics.Errors.Inc()
		c.log.Error("upload failed",
			zap.String("bucket", c.bucket),
			zap.String("key", key),
			zap.Error(err))
		return nil, err
	}

	metrics.Uploads.Inc()
	c.log.Info("uploaded object",
		zap.String("bucket", c.bucket),
		zap.String("key", key),
		zap.Int64("size", result.Size),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// Upload uploads data from a reader to the given key. The reader is drained
// into memory to determine the content length.
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, opts ...gstypes.UploadOption) (*gstypes.UploadResult, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}
	if reader == nil {
		return nil, errors.NewObjectError("upload", c.bucket, key, errors.ErrInvalidInput).
			WithMessage("reader is nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		metrics.Errors.Inc()
		return nil, errors.NewObjectError("upload", c.bucket, key, err)
	}

	return c.Put(ctx, key, data, opts...)
}

// UploadFile uploads a file from the client's filesystem to the given key.
func (c *Client) UploadFile(ctx context.Context, key, path string, opts ...gstypes.UploadOption) (*gstypes.UploadResult, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}

	data, err := c.filesystem().ReadFile(path)
	if err != nil {
		metrics.Errors.Inc()
		c.log.Error("read local file failed",
			zap.String("path", path),
			zap.Error(err))
		return nil, errors.NewObjectError("uploadFile", c.bucket, key, err)
	}

	return c.Put(ctx, key, data, opts...)
}

// Download fetches the object at the given key and streams it to the writer.
func (c *Client) Download(ctx context.Context, key string, writer io.Writer) (*gstypes.DownloadResult, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}

	startTime := time.Now()
	downloader := download.New(c.s3Client)
	result, err := downloader.Download(ctx, c.bucket, key, writer, startTime)
	if err != nil {
		metrics.Errors.Inc()
		c.log.Error("download failed",
			zap.String("bucket", c.bucket),
			zap.String("key", key),
			zap.Error(err))
		return nil, err
	}

	metrics.Downloads.Inc()
	c.log.Info("downloaded object",
		zap.String("bucket", c.bucket),
		zap.String("key", key),
		zap.Int64("size", result.Size),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// DownloadFile fetches the object at the given key into a file on the
// client's filesystem, creating or truncating it.
func (c *Client) DownloadFile(ctx context.Context, key, path string) (*gstypes.DownloadResult, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}

	startTime := time.Now()
	downloader := download.New(c.s3Client)
	result, err := downloader.DownloadFile(ctx, c.bucket, key, path, c.filesystem(), startTime)
	if err != nil {
		metrics.Errors.Inc()
		c.log.Error("download to file failed",
			zap.String("bucket", c.bucket),
			zap.String("key", key),
			zap.String("path", path),
			zap.Error(err))
		return nil, err
	}

	metrics.Downloads.Inc()
	return result, nil
}

// Get fetches the object at the given key into memory.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}

	startTime := time.Now()
	downloader := download.New(c.s3Client)
	data, err := downloader.Get(ctx, c.bucket, key, startTime)
	if err != nil {
		metrics.Errors.Inc()
		c.log.Error("get failed",
			zap.String("bucket", c.bucket),
			zap.String("key", key),
			zap.Error(err))
		return nil, err
	}

	metrics.Downloads.Inc()
	return data, nil
}

// Exists reports whether an object exists at the given key.
// A missing object is (false, nil); any other failure is returned as an
// error rather than folded into the boolean.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return false, err
	}

	metrics.Probes.Inc()

	input := &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}

	if _, err := c.s3Client.HeadObject(ctx, input); err != nil {
		if download.IsNotFound(err) {
			return false, nil
		}
		metrics.Errors.Inc()
		c.log.Error("existence probe failed",
			zap.String("bucket", c.bucket),
			zap.String("key", key),
			zap.Error(err))
		return false, errors.NewObjectError("exists", c.bucket, key, err)
	}

	return true, nil
}

// Metadata returns the stored metadata for the object at the given key.
func (c *Client) Metadata(ctx context.Context, key string) (*gstypes.ObjectMetadata, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}

	input := &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}

	output, err := c.s3Client.HeadObject(ctx, input)
	if err != nil {
		if download.IsNotFound(err) {
			return nil, errors.NewObjectError("metadata", c.bucket, key, errors.ErrObjectNotFound)
		}
		metrics.Errors.Inc()
		return nil, errors.NewObjectError("metadata", c.bucket, key, err)
	}

	return &gstypes.ObjectMetadata{
		ContentType:   aws.ToString(output.ContentType),
		ContentLength: aws.ToInt64(output.ContentLength),
		LastModified:  aws.ToTime(output.LastModified),
		ETag:          aws.ToString(output.ETag),
		Metadata:      output.Metadata,
	}, nil
}

// Delete removes the object at the given key. Deleting a missing object is
// not an error; S3 delete is idempotent.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := validation.ValidateObjectKey(key); err != nil {
		return err
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}

	if _, err := c.s3Client.DeleteObject(ctx, input); err != nil {
		metrics.Errors.Inc()
		c.log.Error("delete failed",
			zap.String("bucket", c.bucket),
			zap.String("key", key),
			zap.Error(err))
		return errors.NewObjectError("delete", c.bucket, key, err)
	}

	c.log.Info("deleted object",
		zap.String("bucket", c.bucket),
		zap.String("key", key))
	return nil
}

// uploadConfig applies upload options and fills in a detected content type
// when the caller did not set one.
func (c *Client) uploadConfig(key string, data []byte, opts []gstypes.UploadOption) *gstypes.UploadConfig {
	cfg := &gstypes.UploadConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.ContentType == "" {
		cfg.ContentType = detectContentType(key, data)
	}
	return cfg
}

// detectContentType determines the content type from the key's extension,
// falling back to content sniffing and then the generic binary type.
func detectContentType(key string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	if len(data) > 0 {
		if mtype := mimetype.Detect(data); mtype != nil {
			return mtype.String()
		}
	}
	return DefaultContentType
}
