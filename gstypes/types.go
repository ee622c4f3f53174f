// Package gstypes provides shared type definitions for the geostore module.
package gstypes

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"go.uber.org/zap"
)

// StorageClass represents the S3 storage class for uploaded objects.
type StorageClass string

// Predefined S3 storage classes
const (
	// StorageClassStandard is the default S3 storage class
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassIntelligentTiering provides intelligent tiering storage
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"
)

// ObjectInfo describes a stored object as reported by a listing request.
type ObjectInfo struct {
	// Key is the object key (path) within the bucket
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the entity tag for the object
	ETag string
}

// ObjectMetadata contains detailed metadata about a stored object.
type ObjectMetadata struct {
	// ContentType is the MIME type of the object
	ContentType string

	// ContentLength is the size of the object in bytes
	ContentLength int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the entity tag for the object
	ETag string

	// Metadata contains user-defined metadata
	Metadata map[string]string
}

// UploadResult contains the result of an upload operation.
type UploadResult struct {
	// Key is the object key that was uploaded
	Key string

	// Size is the size of the uploaded object in bytes
	Size int64

	// ETag is the entity tag for the uploaded object
	ETag string

	// Duration is how long the upload took
	Duration time.Duration
}

// DownloadResult contains the result of a download operation.
type DownloadResult struct {
	// Key is the object key that was downloaded
	Key string

	// Size is the size of the downloaded object in bytes
	Size int64

	// ETag is the entity tag for the downloaded object
	ETag string

	// Duration is how long the download took
	Duration time.Duration
}

// ClientConfig holds configuration for the storage client.
type ClientConfig struct {
	Bucket           string
	Region           string
	Endpoint         string
	MaxRetries       int
	Timeout          time.Duration
	ForcePathStyle   bool
	CustomAWSConfig  *aws.Config
	CustomHTTPClient *http.Client
	Filesystem       fs.Filesystem // Filesystem abstraction for temp-file round trips
	Logger           *zap.Logger
}

// UploadConfig holds configuration for upload operations.
type UploadConfig struct {
	ContentType  string
	Metadata     map[string]string
	StorageClass StorageClass
}

// ListConfig holds configuration for list operations.
type ListConfig struct {
	Prefix     string
	Delimiter  string
	MaxKeys    int32
	StartAfter string
}

// Option is a functional option for configuring the storage client.
type (
	Option func(*ClientConfig)
	// UploadOption is a functional option for configuring upload operations.
	UploadOption func(*UploadConfig)
	// ListOption is a functional option for configuring list operations.
	ListOption func(*ListConfig)
)
