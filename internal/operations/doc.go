// Package operations groups the low-level S3 operation implementations
// (upload, download, list) used by the public client.
package operations
