// Package upload handles S3 object upload operations.
//
// The files this module moves around are small interchange files (GeoJSON
// documents and spreadsheet workbooks), so uploads are single PutObject
// requests with no multipart handling.
package upload

import (
	"bytes"
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/yourorg/geostore/errors"
	"github.com/yourorg/geostore/gstypes"
	"github.com/yourorg/geostore/internal/s3api"
)

// Uploader handles S3 upload operations.
type Uploader struct {
	s3Client s3api.S3API
}

// New creates a new Uploader instance.
func New(s3Client s3api.S3API) *Uploader {
	return &Uploader{
		s3Client: s3Client,
	}
}

// Put performs a single PutObject request with the given byte payload.
func (u *Uploader) Put(
	ctx context.Context,
	bucket, key string,
	data []byte,
	config *gstypes.UploadConfig,
	startTime time.Time,
) (*gstypes.UploadResult, error) {
	size := int64(len(data))

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(config.ContentType),
		ContentLength: aws.Int64(size),
	}

	if config.StorageClass != "" {
		input.StorageClass = awstypes.StorageClass(config.StorageClass)
	}

	if len(config.Metadata) > 0 {
		input.Metadata = config.Metadata
	}

	output, err := u.s3Client.PutObject(ctx, input)
	if err != nil {
		return nil, errors.NewObjectError("put", bucket, key, err)
	}

	return &gstypes.UploadResult{
		Key:      key,
		Size:     size,
		ETag:     aws.ToString(output.ETag),
		Duration: time.Since(startTime),
	}, nil
}
