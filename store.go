package geostore

import (
	"context"
	"path"

	"go.uber.org/zap"

	"github.com/yourorg/geostore/errors"
	"github.com/yourorg/geostore/geotable"
	"github.com/yourorg/geostore/gstypes"
	"github.com/yourorg/geostore/tabular"
)

// Key extensions for the two interchange formats.
const (
	GeoExt      = ".geojson"
	WorkbookExt = ".xlsx"
)

// GeoKey builds the object key for a named geospatial table in a folder.
// An empty folder places the object at the bucket root.
func GeoKey(folder, name string) string {
	return RawKey(folder, name+GeoExt)
}

// WorkbookKey builds the object key for a named workbook in a folder.
func WorkbookKey(folder, name string) string {
	return RawKey(folder, name+WorkbookExt)
}

// RawKey joins a folder and a file name into an object key.
func RawKey(folder, name string) string {
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

// UploadGeoTable serializes the table as GeoJSON and uploads it to
// {folder}/{name}.geojson. The document is staged in a temporary file that
// is removed whether or not the upload succeeds.
func (c *Client) UploadGeoTable(ctx context.Context, table *geotable.Table, name, folder string) (*gstypes.UploadResult, error) {
	key := GeoKey(folder, name)
	if table == nil {
		return nil, errors.NewObjectError("uploadGeoTable", c.bucket, key, errors.ErrInvalidInput).
			WithMessage("table is nil")
	}

	data, err := table.MarshalGeoJSON()
	if err != nil {
		return nil, errors.NewObjectError("uploadGeoTable", c.bucket, key, err)
	}

	var result *gstypes.UploadResult
	err = c.withTempFile("uploadGeoTable", name+GeoExt, func(tmpPath string) error {
		if err := c.filesystem().WriteFile(tmpPath, data, 0o600); err != nil {
			return errors.NewObjectError("uploadGeoTable", c.bucket, key, err)
		}
		result, err = c.UploadFile(ctx, key, tmpPath, WithContentType(geotable.ContentType))
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DownloadGeoTable fetches {folder}/{name}.geojson and parses it into a
// feature table. The object is staged in a temporary file that is removed
// before returning.
func (c *Client) DownloadGeoTable(ctx context.Context, name, folder string) (*geotable.Table, error) {
	key := GeoKey(folder, name)

	var table *geotable.Table
	err := c.withTempFile("downloadGeoTable", name+GeoExt, func(tmpPath string) error {
		if _, err := c.DownloadFile(ctx, key, tmpPath); err != nil {
			return err
		}

		data, err := c.filesystem().ReadFile(tmpPath)
		if err != nil {
			return errors.NewObjectError("downloadGeoTable", c.bucket, key, err)
		}

		table, err = geotable.UnmarshalGeoJSON(data)
		if err != nil {
			return errors.NewObjectError("downloadGeoTable", c.bucket, key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// UploadWorkbook serializes the table as an XLSX workbook and uploads it to
// {folder}/{name}.xlsx.
func (c *Client) UploadWorkbook(ctx context.Context, table *tabular.Table, name, folder string) (*gstypes.UploadResult, error) {
	key := WorkbookKey(folder, name)
	if table == nil {
		return nil, errors.NewObjectError("uploadWorkbook", c.bucket, key, errors.ErrInvalidInput).
			WithMessage("table is nil")
	}

	var result *gstypes.UploadResult
	err := c.withTempFile("uploadWorkbook", name+WorkbookExt, func(tmpPath string) error {
		file, err := c.filesystem().Create(tmpPath)
		if err != nil {
			return errors.NewObjectError("uploadWorkbook", c.bucket, key, err)
		}
		if err := table.WriteWorkbook(file); err != nil {
			file.Close()
			return errors.NewObjectError("uploadWorkbook", c.bucket, key, err)
		}
		if err := file.Close(); err != nil {
			return errors.NewObjectError("uploadWorkbook", c.bucket, key, err)
		}

		result, err = c.UploadFile(ctx, key, tmpPath, WithContentType(tabular.ContentType))
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DownloadWorkbook fetches {folder}/{name}.xlsx and parses its first sheet
// into a rows/columns table.
func (c *Client) DownloadWorkbook(ctx context.Context, name, folder string) (*tabular.Table, error) {
	key := WorkbookKey(folder, name)

	var table *tabular.Table
	err := c.withTempFile("downloadWorkbook", name+WorkbookExt, func(tmpPath string) error {
		if _, err := c.DownloadFile(ctx, key, tmpPath); err != nil {
			return err
		}

		file, err := c.filesystem().Open(tmpPath)
		if err != nil {
			return errors.NewObjectError("downloadWorkbook", c.bucket, key, err)
		}
		defer file.Close()

		table, err = tabular.ReadWorkbook(file)
		if err != nil {
			return errors.NewObjectError("downloadWorkbook", c.bucket, key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// GeoTableExists reports whether {folder}/{name}.geojson exists.
func (c *Client) GeoTableExists(ctx context.Context, name, folder string) (bool, error) {
	return c.Exists(ctx, GeoKey(folder, name))
}

// FileExists reports whether {folder}/{name} exists, with the name taken
// verbatim (extension included).
func (c *Client) FileExists(ctx context.Context, name, folder string) (bool, error) {
	return c.Exists(ctx, RawKey(folder, name))
}

// withTempFile creates a scratch directory, runs fn with the path of a file
// inside it, and removes both afterwards. Cleanup failures are logged, not
// returned; the transfer outcome wins.
func (c *Client) withTempFile(op, filename string, fn func(tmpPath string) error) error {
	fsys := c.filesystem()

	dir, err := fsys.TempDir("", "geostore")
	if err != nil {
		return errors.NewError(op, err).WithMessage("create temp dir")
	}
	tmpPath := path.Join(dir, filename)

	defer func() {
		// The file may never have been created if the transfer failed early.
		if exists, _ := fsys.Exists(tmpPath); exists {
			if rmErr := fsys.Remove(tmpPath); rmErr != nil {
				c.log.Warn("temp file cleanup failed",
					zap.String("path", tmpPath),
					zap.Error(rmErr))
			}
		}
		if rmErr := fsys.Remove(dir); rmErr != nil {
			c.log.Warn("temp dir cleanup failed",
				zap.String("path", dir),
				zap.Error(rmErr))
		}
	}()

	return fn(tmpPath)
}
