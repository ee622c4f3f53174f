// Package geotable provides an in-memory vector-feature table: geometries
// plus attribute columns, serialized as GeoJSON for interchange.
//
// A Table is the unit this module uploads and downloads; it is transient and
// only materialized on disk for the duration of a transfer.
package geotable

import (
	"errors"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ContentType is the media type used when uploading GeoJSON documents.
const ContentType = "application/geo+json"

// Table is a collection of vector features (geometry + attributes).
type Table struct {
	fc *geojson.FeatureCollection
}

// New creates an empty feature table.
func New() *Table {
	return &Table{fc: geojson.NewFeatureCollection()}
}

// FromCollection wraps an existing GeoJSON feature collection.
func FromCollection(fc *geojson.FeatureCollection) *Table {
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}
	return &Table{fc: fc}
}

// Append adds a feature with the given geometry and attribute values.
// It returns the created feature so callers can set further properties.
func (t *Table) Append(geometry orb.Geometry, properties map[string]interface{}) *geojson.Feature {
	f := geojson.NewFeature(geometry)
	for k, v := range properties {
		f.Properties[k] = v
	}
	t.fc.Append(f)
	return f
}

// Len returns the number of features in the table.
func (t *Table) Len() int {
	return len(t.fc.Features)
}

// Features returns the features in insertion order.
func (t *Table) Features() []*geojson.Feature {
	return t.fc.Features
}

// Collection returns the underlying GeoJSON feature collection.
func (t *Table) Collection() *geojson.FeatureCollection {
	return t.fc
}

// Bound returns the bounding box covering every geometry in the table.
// The zero bound is returned for an empty table.
func (t *Table) Bound() orb.Bound {
	var bound orb.Bound
	for i, f := range t.fc.Features {
		if f.Geometry == nil {
			continue
		}
		if i == 0 {
			bound = f.Geometry.Bound()
			continue
		}
		bound = bound.Union(f.Geometry.Bound())
	}
	return bound
}

// MarshalGeoJSON encodes the table as a GeoJSON FeatureCollection document.
func (t *Table) MarshalGeoJSON() ([]byte, error) {
	data, err := t.fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("geotable: marshal: %w", err)
	}
	return data, nil
}

// UnmarshalGeoJSON decodes a GeoJSON FeatureCollection document.
func UnmarshalGeoJSON(data []byte) (*Table, error) {
	if len(data) == 0 {
		return nil, errors.New("geotable: empty document")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("geotable: unmarshal: %w", err)
	}
	return &Table{fc: fc}, nil
}

// Write encodes the table to the given writer.
func (t *Table) Write(w io.Writer) error {
	data, err := t.MarshalGeoJSON()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("geotable: write: %w", err)
	}
	return nil
}

// Read decodes a table from the given reader.
func Read(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("geotable: read: %w", err)
	}
	return UnmarshalGeoJSON(data)
}
