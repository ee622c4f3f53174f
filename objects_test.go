package geostore

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/geostore/errors"
	"github.com/yourorg/geostore/internal/testutil"
)

func TestPutAndGet(t *testing.T) {
	fake := testutil.NewFakeBucket()
	client := NewWithClient(fake, "test-bucket")
	ctx := context.Background()

	data := []byte(`{"hello":"world"}`)
	result, err := client.Put(ctx, "data/test.json", data)
	require.NoError(t, err)
	assert.Equal(t, "data/test.json", result.Key)
	assert.Equal(t, int64(len(data)), result.Size)
	assert.NotEmpty(t, result.ETag)

	got, err := client.Get(ctx, "data/test.json")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestPutRejectsInvalidKey(t *testing.T) {
	client := NewWithClient(testutil.NewFakeBucket(), "test-bucket")

	tests := []struct {
		name string
		key  string
	}{
		{name: "empty", key: ""},
		{name: "traversal", key: "../secrets.txt"},
		{name: "control char", key: "bad\x00key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Put(context.Background(), tt.key, []byte("x"))
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrInvalidObjectKey))
		})
	}
}

func TestUploadFromReader(t *testing.T) {
	fake := testutil.NewFakeBucket()
	client := NewWithClient(fake, "test-bucket")
	ctx := context.Background()

	data := testutil.GenerateRandomData(2048)
	result, err := client.Upload(ctx, "blobs/random.bin", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(2048), result.Size)

	got, err := client.Get(ctx, "blobs/random.bin")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestUploadNilReader(t *testing.T) {
	client := NewWithClient(testutil.NewFakeBucket(), "test-bucket")

	_, err := client.Upload(context.Background(), "key.txt", nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestDownloadToWriter(t *testing.T) {
	fake := testutil.NewFakeBucket()
	client := NewWithClient(fake, "test-bucket")
	ctx := context.Background()

	data := []byte("some file contents")
	_, err := client.Put(ctx, "files/notes.txt", data)
	require.NoError(t, err)

	var buf bytes.Buffer
	result, err := client.Download(ctx, "files/notes.txt", &buf)
	require.NoError(t, err)
	assert.Equal(t, data, buf.Bytes())
	assert.Equal(t, int64(len(data)), result.Size)
}

func TestDownloadMissingObject(t *testing.T) {
	client := NewWithClient(testutil.NewFakeBucket(), "test-bucket")

	var buf bytes.Buffer
	_, err := client.Download(context.Background(), "missing.txt", &buf)
	require.Error(t, err)
	assert.True(t, errors.IsObjectNotFound(err))
}

func TestExists(t *testing.T) {
	fake := testutil.NewFakeBucket()
	client := NewWithClient(fake, "test-bucket")
	ctx := context.Background()

	exists, err := client.Exists(ctx, "present.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = client.Put(ctx, "present.txt", []byte("here"))
	require.NoError(t, err)

	exists, err = client.Exists(ctx, "present.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExistsSurfacesProbeFailures(t *testing.T) {
	// Failures other than a missing object must not be folded into false.
	mock := &testutil.MockS3Client{
		HeadObjectFunc: func(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			return nil, stderrors.New("api error AccessDenied: Access Denied")
		},
	}
	client := NewWithClient(mock, "test-bucket")

	exists, err := client.Exists(context.Background(), "guarded.txt")
	require.Error(t, err)
	assert.False(t, exists)
	assert.False(t, errors.IsObjectNotFound(err))
}

func TestMetadata(t *testing.T) {
	fake := testutil.NewFakeBucket()
	client := NewWithClient(fake, "test-bucket")
	ctx := context.Background()

	_, err := client.Put(ctx, "doc.json", []byte(`{}`),
		WithContentType("application/json"),
		WithMetadata(map[string]string{"source": "import"}))
	require.NoError(t, err)

	meta, err := client.Metadata(ctx, "doc.json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", meta.ContentType)
	assert.Equal(t, int64(2), meta.ContentLength)
	assert.Equal(t, "import", meta.Metadata["source"])

	_, err = client.Metadata(ctx, "missing.json")
	require.Error(t, err)
	assert.True(t, errors.IsObjectNotFound(err))
}

func TestDelete(t *testing.T) {
	fake := testutil.NewFakeBucket()
	client := NewWithClient(fake, "test-bucket")
	ctx := context.Background()

	_, err := client.Put(ctx, "temp.txt", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, client.Delete(ctx, "temp.txt"))

	exists, err := client.Exists(ctx, "temp.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	// Idempotent for missing keys.
	require.NoError(t, client.Delete(ctx, "temp.txt"))
}

func TestListKeys(t *testing.T) {
	fake := testutil.NewFakeBucket()
	client := NewWithClient(fake, "test-bucket")
	ctx := context.Background()

	for _, key := range []string{"a/1.txt", "a/2.txt", "b/3.txt"} {
		_, err := client.Put(ctx, key, []byte("x"))
		require.NoError(t, err)
	}

	keys, err := client.ListKeys(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1.txt", "a/2.txt"}, keys)

	keys, err = client.ListKeys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, keys, 3)

	keys, err = client.ListKeys(ctx, "nope/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestListObjectsMultiPage(t *testing.T) {
	fake := testutil.NewFakeBucket()
	fake.PageLimit = 2 // force pagination
	client := NewWithClient(fake, "test-bucket")
	ctx := context.Background()

	want := map[string]int64{}
	for i := 0; i < 7; i++ {
		key := fmt.Sprintf("pages/file-%02d.txt", i)
		data := testutil.GenerateRandomData(10 + i)
		_, err := client.Put(ctx, key, data)
		require.NoError(t, err)
		want[key] = int64(len(data))
	}

	objects, err := client.ListObjects(ctx, "pages/")
	require.NoError(t, err)
	require.Len(t, objects, 7)

	for _, obj := range objects {
		size, ok := want[obj.Key]
		require.True(t, ok, "unexpected key %s", obj.Key)
		assert.Equal(t, size, obj.Size)
		assert.False(t, obj.LastModified.IsZero())
	}
}

func TestListPage(t *testing.T) {
	fake := testutil.NewFakeBucket()
	client := NewWithClient(fake, "test-bucket")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.Put(ctx, fmt.Sprintf("p/%d.txt", i), []byte("x"))
		require.NoError(t, err)
	}

	page, err := client.ListPage(ctx, "p/", WithMaxKeys(3))
	require.NoError(t, err)
	assert.Len(t, page.Objects, 3)
	assert.True(t, page.IsTruncated)
	assert.NotEmpty(t, page.ContinuationToken)

	rest, err := client.ListPage(ctx, "p/", WithMaxKeys(3), WithStartAfter(page.ContinuationToken))
	require.NoError(t, err)
	assert.Len(t, rest.Objects, 2)
	assert.False(t, rest.IsTruncated)
}

func TestListErrorWrapsBucket(t *testing.T) {
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return nil, stderrors.New("network down")
		},
	}
	client := NewWithClient(mock, "test-bucket")

	_, err := client.ListKeys(context.Background(), "")
	require.Error(t, err)

	var opErr *errors.Error
	require.True(t, stderrors.As(err, &opErr))
	assert.Equal(t, "test-bucket", opErr.Bucket)
}

func TestPutRecordsContentType(t *testing.T) {
	var gotContentType string
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			gotContentType = aws.ToString(params.ContentType)
			return &s3.PutObjectOutput{ETag: aws.String(`"abc"`)}, nil
		},
	}
	client := NewWithClient(mock, "test-bucket")

	_, err := client.Put(context.Background(), "report.json", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gotContentType, "application/json"))
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name string
		key  string
		data []byte
		want string
	}{
		{name: "by extension", key: "page.html", data: nil, want: "text/html"},
		{name: "sniffed json", key: "noext", data: []byte(`{"a":1}`), want: "application/json"},
		{name: "fallback", key: "noext", data: nil, want: DefaultContentType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectContentType(tt.key, tt.data)
			assert.True(t, strings.HasPrefix(got, tt.want), "got %s", got)
		})
	}
}

func TestPutStorageClass(t *testing.T) {
	var gotClass awstypes.StorageClass
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			gotClass = params.StorageClass
			return &s3.PutObjectOutput{}, nil
		},
	}
	client := NewWithClient(mock, "test-bucket")

	_, err := client.Put(context.Background(), "archive.bin", []byte("x"),
		WithStorageClass("STANDARD_IA"))
	require.NoError(t, err)
	assert.Equal(t, awstypes.StorageClassStandardIa, gotClass)
}
