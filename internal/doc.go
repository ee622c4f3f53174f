// Package internal contains implementation details for the geostore module.
// These packages are not part of the public API and may change without notice.
package internal
