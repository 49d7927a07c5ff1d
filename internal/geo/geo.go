// Package geo converts venue locations between the GeoJSON the API speaks and
// the WKB stored in the database.
package geo

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

var ErrNotPoint = errors.New("geometry must be a GeoJSON Point")

// PointToWKB parses a GeoJSON Point and returns its little-endian WKB.
// An empty string yields nil.
func PointToWKB(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	p, ok := g.(*geom.Point)
	if !ok {
		return nil, ErrNotPoint
	}
	if lng, lat := p.X(), p.Y(); lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("coordinates out of range: [%g, %g]", lng, lat)
	}
	return wkb.Marshal(p, binary.LittleEndian)
}

// WKBToGeoJSON is the inverse of PointToWKB.
func WKBToGeoJSON(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return "", err
	}
	out, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
