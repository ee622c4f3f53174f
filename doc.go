// Package geostore stores geospatial feature tables and spreadsheet
// workbooks in an S3 bucket. It wraps AWS SDK v2 with a bucket-scoped
// client: the bucket is resolved once at construction (explicitly or from
// the S3_BUCKET_NAME environment variable), access is verified up front,
// and every subsequent operation targets that bucket.
//
// Geospatial tables travel as GeoJSON documents ({folder}/{name}.geojson)
// and tabular data as XLSX workbooks ({folder}/{name}.xlsx). Transfers are
// staged through temporary files that are always cleaned up; nothing
// persists locally after a call returns.
//
// Key features:
//   - Zero-configuration usage with the AWS credential chain
//   - Progressive enhancement through functional options
//   - Transparent pagination for bucket listings
//   - Typed errors with bucket and key context
//
// Example usage:
//
//	client, err := geostore.New(ctx, geostore.WithBucket("amenity-data"))
//	if err != nil {
//	    return err
//	}
//
//	table, err := client.DownloadGeoTable(ctx, "parks", "amenities")
//	if err != nil {
//	    return err
//	}
package geostore
