package testutil

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // matches the service's ETag scheme
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeObject struct {
	data         []byte
	contentType  string
	metadata     map[string]string
	lastModified time.Time
	etag         string
}

// FakeBucket is an in-memory S3API implementation backed by a map.
// It supports puts, gets, heads, deletes, and paginated listings, which is
// enough to exercise full upload/download round trips without a network.
//
// PageLimit, when set, caps the page size of ListObjectsV2 responses so
// tests can force multi-page listings with small key counts.
type FakeBucket struct {
	mu        sync.Mutex
	objects   map[string]fakeObject
	PageLimit int
}

// NewFakeBucket creates an empty in-memory bucket.
func NewFakeBucket() *FakeBucket {
	return &FakeBucket{
		objects: make(map[string]fakeObject),
	}
}

// Len returns the number of stored objects.
func (f *FakeBucket) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// PutObject stores the request body under the request key.
func (f *FakeBucket) PutObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	obj := fakeObject{
		data:         data,
		contentType:  aws.ToString(params.ContentType),
		metadata:     params.Metadata,
		lastModified: time.Now().UTC(),
		etag:         fmt.Sprintf("%q", fmt.Sprintf("%x", md5.Sum(data))), //nolint:gosec
	}

	f.mu.Lock()
	f.objects[aws.ToString(params.Key)] = obj
	f.mu.Unlock()

	return &s3.PutObjectOutput{ETag: aws.String(obj.etag)}, nil
}

// GetObject returns the stored body, or NoSuchKey when absent.
func (f *FakeBucket) GetObject(
	_ context.Context,
	params *s3.GetObjectInput,
	_ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	obj, ok := f.objects[aws.ToString(params.Key)]
	f.mu.Unlock()

	if !ok {
		return nil, &awstypes.NoSuchKey{}
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentLength: aws.Int64(int64(len(obj.data))),
		ContentType:   aws.String(obj.contentType),
		ETag:          aws.String(obj.etag),
		LastModified:  aws.Time(obj.lastModified),
		Metadata:      obj.metadata,
	}, nil
}

// HeadObject returns object metadata, or NotFound when absent.
func (f *FakeBucket) HeadObject(
	_ context.Context,
	params *s3.HeadObjectInput,
	_ ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	obj, ok := f.objects[aws.ToString(params.Key)]
	f.mu.Unlock()

	if !ok {
		return nil, &awstypes.NotFound{}
	}

	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.data))),
		ContentType:   aws.String(obj.contentType),
		ETag:          aws.String(obj.etag),
		LastModified:  aws.Time(obj.lastModified),
		Metadata:      obj.metadata,
	}, nil
}

// ListObjectsV2 lists keys matching the prefix in lexical order, paginating
// with continuation tokens. The token is the last key of the previous page.
func (f *FakeBucket) ListObjectsV2(
	_ context.Context,
	params *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	prefix := aws.ToString(params.Prefix)

	f.mu.Lock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	f.mu.Unlock()
	sort.Strings(keys)

	after := aws.ToString(params.ContinuationToken)
	if after == "" {
		after = aws.ToString(params.StartAfter)
	}
	if after != "" {
		i := sort.SearchStrings(keys, after)
		if i < len(keys) && keys[i] == after {
			i++
		}
		keys = keys[i:]
	}

	pageSize := len(keys)
	if params.MaxKeys != nil && int(*params.MaxKeys) < pageSize {
		pageSize = int(*params.MaxKeys)
	}
	if f.PageLimit > 0 && f.PageLimit < pageSize {
		pageSize = f.PageLimit
	}

	page := keys[:pageSize]
	truncated := pageSize < len(keys)

	output := &s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(truncated),
		KeyCount:    aws.Int32(int32(len(page))),
	}
	f.mu.Lock()
	for _, k := range page {
		obj := f.objects[k]
		output.Contents = append(output.Contents, awstypes.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(obj.data))),
			LastModified: aws.Time(obj.lastModified),
			ETag:         aws.String(obj.etag),
		})
	}
	f.mu.Unlock()

	if truncated {
		output.NextContinuationToken = aws.String(page[len(page)-1])
	}

	return output, nil
}

// DeleteObject removes the key; deleting a missing key is not an error.
func (f *FakeBucket) DeleteObject(
	_ context.Context,
	params *s3.DeleteObjectInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	delete(f.objects, aws.ToString(params.Key))
	f.mu.Unlock()
	return &s3.DeleteObjectOutput{}, nil
}
