// Package download handles S3 object download operations.
//
// Downloads stream the object body directly to the destination writer or
// file, and map the service's not-found responses to ErrObjectNotFound.
package download

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/yourorg/geostore/errors"
	"github.com/yourorg/geostore/gstypes"
	"github.com/yourorg/geostore/internal/s3api"
)

// Downloader handles S3 download operations.
type Downloader struct {
	s3Client s3api.S3API
}

// New creates a new Downloader instance.
func New(s3Client s3api.S3API) *Downloader {
	return &Downloader{
		s3Client: s3Client,
	}
}

// Download downloads an object from S3 and writes it to an io.Writer.
func (d *Downloader) Download(
	ctx context.Context,
	bucket, key string,
	writer io.Writer,
	startTime time.Time,
) (*gstypes.DownloadResult, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	output, err := d.s3Client.GetObject(ctx, input)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NewObjectError("download", bucket, key, errors.ErrObjectNotFound)
		}
		return nil, errors.NewObjectError("download", bucket, key, err)
	}
	defer output.Body.Close()

	size := int64(0)
	if output.ContentLength != nil {
		size = *output.ContentLength
	}

	bytesWritten, err := io.Copy(writer, output.Body)
	if err != nil {
		return nil, errors.NewObjectError("download", bucket, key, err)
	}

	if size == 0 {
		size = bytesWritten
	}

	return &gstypes.DownloadResult{
		Key:      key,
		Size:     size,
		ETag:     aws.ToString(output.ETag),
		Duration: time.Since(startTime),
	}, nil
}

// DownloadFile downloads an object from S3 to a file on the given filesystem.
// The file will be created if it doesn't exist, or truncated if it does.
func (d *Downloader) DownloadFile(
	ctx context.Context,
	bucket, key, filepath string,
	fsys fs.Filesystem,
	startTime time.Time,
) (*gstypes.DownloadResult, error) {
	file, err := fsys.Create(filepath)
	if err != nil {
		return nil, errors.NewObjectError("downloadFile", bucket, key, err)
	}
	defer file.Close()

	return d.Download(ctx, bucket, key, file, startTime)
}

// Get downloads an entire object from S3 and returns it as a byte slice.
// This is a convenience method for small objects that can fit in memory.
func (d *Downloader) Get(
	ctx context.Context,
	bucket, key string,
	startTime time.Time,
) ([]byte, error) {
	var buf bytes.Buffer
	_, err := d.Download(ctx, bucket, key, &buf, startTime)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsNotFound checks if an error indicates that an object was not found.
// The SDK surfaces typed errors for GetObject but only a generic 404 for
// HeadObject, so both the typed and string forms are checked.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	var noSuchKey *awstypes.NoSuchKey
	if stderrors.As(err, &noSuchKey) {
		return true
	}
	var notFound *awstypes.NotFound
	if stderrors.As(err, &notFound) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "NoSuchKey") || strings.Contains(errStr, "NotFound")
}
