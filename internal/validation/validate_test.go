package validation

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/geostore/errors"
)

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr bool
	}{
		{name: "valid simple", bucket: "my-bucket", wantErr: false},
		{name: "valid with dots", bucket: "my.bucket.name", wantErr: false},
		{name: "valid with numbers", bucket: "bucket123", wantErr: false},
		{name: "valid min length", bucket: "abc", wantErr: false},
		{name: "empty", bucket: "", wantErr: true},
		{name: "too short", bucket: "ab", wantErr: true},
		{name: "too long", bucket: strings.Repeat("a", 64), wantErr: true},
		{name: "uppercase", bucket: "MyBucket", wantErr: true},
		{name: "underscore", bucket: "my_bucket", wantErr: true},
		{name: "leading hyphen", bucket: "-bucket", wantErr: true},
		{name: "trailing dot", bucket: "bucket.", wantErr: true},
		{name: "adjacent dots", bucket: "my..bucket", wantErr: true},
		{name: "adjacent hyphens", bucket: "my--bucket", wantErr: true},
		{name: "ip address", bucket: "192.168.1.1", wantErr: true},
		{name: "ip-like out of range", bucket: "300.168.1.1", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, errors.ErrInvalidBucketName))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid simple", key: "file.txt", wantErr: false},
		{name: "valid nested", key: "folder/sub/file.geojson", wantErr: false},
		{name: "valid unicode", key: "données/café.xlsx", wantErr: false},
		{name: "empty", key: "", wantErr: true},
		{name: "traversal dots", key: "../etc/passwd", wantErr: true},
		{name: "traversal embedded", key: "folder/../../secret", wantErr: true},
		{name: "absolute path", key: "/etc/passwd", wantErr: true},
		{name: "too long", key: strings.Repeat("k", 1025), wantErr: true},
		{name: "max length", key: strings.Repeat("k", 1024), wantErr: false},
		{name: "null byte", key: "file\x00.txt", wantErr: true},
		{name: "newline", key: "file\n.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, errors.ErrInvalidObjectKey))
				return
			}
			require.NoError(t, err)
		})
	}
}
