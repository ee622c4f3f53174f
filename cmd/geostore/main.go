// Command geostore is a small CLI for the bucket store: listing keys,
// probing existence, and moving GeoJSON tables and XLSX workbooks in and
// out of the configured bucket.
//
// Usage:
//
//	geostore [flags] list [prefix]
//	geostore [flags] sizes [prefix]
//	geostore [flags] exists <name> <folder>
//	geostore [flags] exists-geo <name> <folder>
//	geostore [flags] upload-geo <file> <name> <folder>
//	geostore [flags] download-geo <name> <folder> <outfile>
//	geostore [flags] download-workbook <name> <folder> <outfile>
//
// The bucket comes from -bucket or the S3_BUCKET_NAME environment variable.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/geostore"
	"github.com/yourorg/geostore/geotable"
	"github.com/yourorg/geostore/gstypes"
	"github.com/yourorg/geostore/internal/metrics"
)

func main() {
	bucket := flag.String("bucket", "", "target bucket (defaults to S3_BUCKET_NAME)")
	region := flag.String("region", "", "AWS region")
	endpoint := flag.String("endpoint", "", "custom S3 endpoint (MinIO, LocalStack)")
	pathStyle := flag.Bool("path-style", false, "use path-style addressing")
	timeout := flag.Duration("timeout", 2*time.Minute, "per-request timeout")
	serveMetrics := flag.Bool("metrics", false, "expose Prometheus metrics while running")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	logger, err := buildLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	if *serveMetrics {
		metrics.Init()
		go func() {
			if err := metrics.Serve(metrics.AddrFromEnv()); err != nil {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	ctx := context.Background()

	var clientOpts []gstypes.Option
	if *bucket != "" {
		clientOpts = append(clientOpts, geostore.WithBucket(*bucket))
	}
	if *region != "" {
		clientOpts = append(clientOpts, geostore.WithRegion(*region))
	}
	if *endpoint != "" {
		clientOpts = append(clientOpts, geostore.WithEndpoint(*endpoint))
	}
	if *pathStyle {
		clientOpts = append(clientOpts, geostore.WithForcePathStyle())
	}
	clientOpts = append(clientOpts,
		geostore.WithTimeout(*timeout),
		geostore.WithLogger(logger),
	)

	client, err := geostore.New(ctx, clientOpts...)
	if err != nil {
		logger.Fatal("client init failed", zap.Error(err))
	}
	defer client.Close() //nolint:errcheck

	if err := run(ctx, client, flag.Args()); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func run(ctx context.Context, client *geostore.Client, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "list":
		return runList(ctx, client, rest)
	case "sizes":
		return runSizes(ctx, client, rest)
	case "exists":
		return runExists(ctx, client, rest, false)
	case "exists-geo":
		return runExists(ctx, client, rest, true)
	case "upload-geo":
		return runUploadGeo(ctx, client, rest)
	case "download-geo":
		return runDownloadGeo(ctx, client, rest)
	case "download-workbook":
		return runDownloadWorkbook(ctx, client, rest)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runList(ctx context.Context, client *geostore.Client, args []string) error {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}

	keys, err := client.ListKeys(ctx, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}

func runSizes(ctx context.Context, client *geostore.Client, args []string) error {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}

	objects, err := client.ListObjects(ctx, prefix)
	if err != nil {
		return err
	}
	for _, obj := range objects {
		fmt.Printf("%12d  %s\n", obj.Size, obj.Key)
	}
	return nil
}

func runExists(ctx context.Context, client *geostore.Client, args []string, geo bool) error {
	if len(args) != 2 {
		return fmt.Errorf("expected <name> <folder>, got %d args", len(args))
	}
	name, folder := args[0], args[1]

	var exists bool
	var err error
	if geo {
		exists, err = client.GeoTableExists(ctx, name, folder)
	} else {
		exists, err = client.FileExists(ctx, name, folder)
	}
	if err != nil {
		return err
	}

	fmt.Println(exists)
	return nil
}

func runUploadGeo(ctx context.Context, client *geostore.Client, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("expected <file> <name> <folder>, got %d args", len(args))
	}
	file, name, folder := args[0], args[1], args[2]

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	table, err := geotable.UnmarshalGeoJSON(data)
	if err != nil {
		return err
	}

	result, err := client.UploadGeoTable(ctx, table, name, folder)
	if err != nil {
		return err
	}

	fmt.Printf("uploaded %s (%d bytes, %d features)\n", result.Key, result.Size, table.Len())
	return nil
}

func runDownloadGeo(ctx context.Context, client *geostore.Client, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("expected <name> <folder> <outfile>, got %d args", len(args))
	}
	name, folder, outfile := args[0], args[1], args[2]

	table, err := client.DownloadGeoTable(ctx, name, folder)
	if err != nil {
		return err
	}

	out, err := os.Create(outfile)
	if err != nil {
		return fmt.Errorf("create %s: %w", outfile, err)
	}
	defer out.Close()

	if err := table.Write(out); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d features)\n", outfile, table.Len())
	return nil
}

func runDownloadWorkbook(ctx context.Context, client *geostore.Client, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("expected <name> <folder> <outfile>, got %d args", len(args))
	}
	name, folder, outfile := args[0], args[1], args[2]

	table, err := client.DownloadWorkbook(ctx, name, folder)
	if err != nil {
		return err
	}

	out, err := os.Create(outfile)
	if err != nil {
		return fmt.Errorf("create %s: %w", outfile, err)
	}
	defer out.Close()

	if err := table.WriteWorkbook(out); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d rows)\n", outfile, table.Len())
	return nil
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: geostore [flags] <command> [args]

commands:
  list [prefix]                          list object keys
  sizes [prefix]                         list objects with sizes
  exists <name> <folder>                 check a file exists
  exists-geo <name> <folder>             check a geo table exists
  upload-geo <file> <name> <folder>      upload a GeoJSON file as a geo table
  download-geo <name> <folder> <out>     download a geo table to a file
  download-workbook <name> <folder> <out>  download a workbook to a file

flags:`)
	flag.PrintDefaults()
}
