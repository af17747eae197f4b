package views

import (
	"math"
	"strings"

	"github.com/zibamira/CTCoral-CoDA/table"
)

// Derived web-mercator columns owned by the map view.
const (
	ColMercatorX = "coda:map:mercatorx"
	ColMercatorY = "coda:map:mercatory"
)

// earthRadius is the WGS84 semi-major axis used by the web-mercator
// projection, in meters.
const earthRadius = 6378137.0

// Map plots the vertices on a tiled world map. WGS84 coordinates are
// projected to web-mercator once per reload and stored as derived columns.
type Map struct {
	base

	// LatColumn and LonColumn name the WGS84 input columns. Empty values
	// are auto-detected by column name.
	LatColumn string
	LonColumn string

	ready bool
}

func init() {
	MustRegister(KindMap, func(app App) View { return &Map{base: base{app}} })
}

func (v *Map) Kind() string { return KindMap }

// Ready reports whether coordinate columns were found on the last reload.
func (v *Map) Ready() bool { return v.ready }

func (v *Map) ReloadDF() error {
	vertices := v.app.Vertices()

	lat, lon := v.LatColumn, v.LonColumn
	if lat == "" || lon == "" {
		lat, lon = detectLatLon(vertices)
	}
	latitudes := vertices.Numbers(lat)
	longitudes := vertices.Numbers(lon)
	if latitudes == nil || longitudes == nil {
		v.ready = false
		return nil
	}

	x := make([]float64, len(longitudes))
	y := make([]float64, len(latitudes))
	for i := range longitudes {
		x[i], y[i] = mercator(longitudes[i], latitudes[i])
	}
	if err := vertices.SetNumbers(ColMercatorX, x); err != nil {
		return err
	}
	if err := vertices.SetNumbers(ColMercatorY, y); err != nil {
		return err
	}
	v.ready = true
	return nil
}

func (v *Map) ReloadCDS() error { return nil }

// mercator projects WGS84 degrees to web-mercator meters.
func mercator(lon, lat float64) (float64, float64) {
	x := earthRadius * lon * math.Pi / 180.0
	y := earthRadius * math.Log(math.Tan(math.Pi/4.0+lat*math.Pi/360.0))
	return x, y
}

// detectLatLon probes the scalar columns for conventional coordinate
// names.
func detectLatLon(tbl *table.Table) (string, string) {
	lat, lon := "", ""
	for _, name := range table.ScalarColumns(tbl, true) {
		lower := strings.ToLower(name)
		switch {
		case strings.HasSuffix(lower, "latitude") || strings.HasSuffix(lower, ":lat") || lower == "lat":
			if lat == "" {
				lat = name
			}
		case strings.HasSuffix(lower, "longitude") || strings.HasSuffix(lower, ":long") ||
			strings.HasSuffix(lower, ":lon") || lower == "long" || lower == "lon":
			if lon == "" {
				lon = name
			}
		}
	}
	return lat, lon
}
