// Package list handles listing of S3 objects, including transparent
// pagination across continuation tokens.
package list

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/yourorg/geostore/gstypes"
	"github.com/yourorg/geostore/internal/s3api"
)

// Lister handles listing of S3 objects.
type Lister struct {
	client s3api.S3API
}

// New creates a new Lister.
func New(client s3api.S3API) *Lister {
	return &Lister{
		client: client,
	}
}

// Page represents a single page of listing results.
type Page struct {
	Objects           []gstypes.ObjectInfo
	CommonPrefixes    []string
	IsTruncated       bool
	ContinuationToken string
}

// ListPage performs a single-page listing request.
func (l *Lister) ListPage(ctx context.Context, bucket string, config *gstypes.ListConfig) (*Page, error) {
	pageSize := config.MaxKeys
	if pageSize == 0 || pageSize > 1000 {
		pageSize = 1000 // Maximum allowed by S3
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(config.Prefix),
		MaxKeys: aws.Int32(pageSize),
	}

	if config.Delimiter != "" {
		input.Delimiter = aws.String(config.Delimiter)
	}
	if config.StartAfter != "" {
		input.StartAfter = aws.String(config.StartAfter)
	}

	output, err := l.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	return convertOutput(output), nil
}

// ListAll aggregates all pages for the given prefix into a single slice,
// following continuation tokens until the listing is exhausted.
func (l *Lister) ListAll(ctx context.Context, bucket, prefix string) ([]gstypes.ObjectInfo, error) {
	var objects []gstypes.ObjectInfo
	var continuationToken *string

	for {
		input := &s3.ListObjectsV2Input{
			Bucket:  aws.String(bucket),
			Prefix:  aws.String(prefix),
			MaxKeys: aws.Int32(1000),
		}
		if continuationToken != nil {
			input.ContinuationToken = continuationToken
		}

		output, err := l.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list objects page: %w", err)
		}

		for _, obj := range output.Contents {
			objects = append(objects, gstypes.ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         aws.ToString(obj.ETag),
			})
		}

		if !aws.ToBool(output.IsTruncated) {
			return objects, nil
		}
		continuationToken = output.NextContinuationToken
	}
}

// convertOutput converts S3 output to our Page type.
func convertOutput(output *s3.ListObjectsV2Output) *Page {
	page := &Page{
		Objects:        make([]gstypes.ObjectInfo, 0, len(output.Contents)),
		CommonPrefixes: make([]string, 0, len(output.CommonPrefixes)),
		IsTruncated:    aws.ToBool(output.IsTruncated),
	}

	if output.NextContinuationToken != nil {
		page.ContinuationToken = *output.NextContinuationToken
	}

	for _, obj := range output.Contents {
		page.Objects = append(page.Objects, gstypes.ObjectInfo{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
		})
	}

	for _, prefix := range output.CommonPrefixes {
		page.CommonPrefixes = append(page.CommonPrefixes, aws.ToString(prefix.Prefix))
	}

	return page
}
