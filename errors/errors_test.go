package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bucket and key",
			err:  NewObjectError("download", "data", "a/b.geojson", ErrObjectNotFound),
			want: "geostore.download data/a/b.geojson: geostore: object not found",
		},
		{
			name: "bucket only",
			err:  NewBucketError("list", "data", ErrAccessDenied),
			want: "geostore.list bucket data: geostore: access denied",
		},
		{
			name: "op only",
			err:  NewError("init", ErrBucketNotConfigured),
			want: "geostore.init: geostore: bucket not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestUnwrap(t *testing.T) {
	base := stderrors.New("underlying failure")
	err := NewObjectError("upload", "data", "k", base)

	assert.Equal(t, base, err.Unwrap())
	assert.True(t, stderrors.Is(err, base))
}

func TestWithMessagePreservesSentinel(t *testing.T) {
	err := NewError("init", ErrBucketNotConfigured).WithMessage("no env var set")

	require.True(t, stderrors.Is(err, ErrBucketNotConfigured))
	assert.Contains(t, err.Error(), "no env var set")
}

func TestSentinelHelpers(t *testing.T) {
	assert.True(t, IsBucketNotConfigured(NewError("init", ErrBucketNotConfigured)))
	assert.True(t, IsBucketNotFound(NewBucketError("verifyAccess", "b", ErrBucketNotFound)))
	assert.True(t, IsObjectNotFound(NewObjectError("get", "b", "k", ErrObjectNotFound)))
	assert.True(t, IsAccessDenied(NewBucketError("verifyAccess", "b", ErrAccessDenied)))
	assert.True(t, IsInvalidInput(NewError("upload", ErrInvalidInput)))

	other := stderrors.New("other")
	assert.False(t, IsObjectNotFound(other))
	assert.False(t, IsAccessDenied(nil))
}
