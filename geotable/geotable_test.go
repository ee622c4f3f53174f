package geotable

import (
	"bytes"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable() *Table {
	table := New()
	table.Append(orb.Point{13.405, 52.52}, map[string]interface{}{
		"name": "Berlin",
	})
	table.Append(orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}, map[string]interface{}{
		"name": "square",
		"area": 16.0,
	})
	return table
}

func TestAppendAndLen(t *testing.T) {
	table := New()
	assert.Equal(t, 0, table.Len())

	f := table.Append(orb.Point{1, 2}, map[string]interface{}{"id": "a"})
	require.NotNil(t, f)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "a", table.Features()[0].Properties["id"])
}

func TestMarshalRoundTrip(t *testing.T) {
	original := buildTable()

	data, err := original.MarshalGeoJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)

	got, err := UnmarshalGeoJSON(data)
	require.NoError(t, err)
	require.Equal(t, original.Len(), got.Len())

	assert.Equal(t, orb.Point{13.405, 52.52}, got.Features()[0].Geometry)
	assert.Equal(t, "Berlin", got.Features()[0].Properties["name"])
	assert.Equal(t, 16.0, got.Features()[1].Properties["area"])
}

func TestUnmarshalRejectsBadInput(t *testing.T) {
	_, err := UnmarshalGeoJSON(nil)
	require.Error(t, err)

	_, err = UnmarshalGeoJSON([]byte("not geojson"))
	require.Error(t, err)
}

func TestReadWrite(t *testing.T) {
	original := buildTable()

	var buf bytes.Buffer
	require.NoError(t, original.Write(&buf))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, original.Len(), got.Len())
}

func TestBound(t *testing.T) {
	table := New()
	table.Append(orb.Point{1, 1}, nil)
	table.Append(orb.Point{5, -3}, nil)

	bound := table.Bound()
	assert.Equal(t, orb.Point{1, -3}, bound.Min)
	assert.Equal(t, orb.Point{5, 1}, bound.Max)
}

func TestFromCollectionNil(t *testing.T) {
	table := FromCollection(nil)
	require.NotNil(t, table)
	assert.Equal(t, 0, table.Len())
}
