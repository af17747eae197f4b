package views

// LegendEntry pairs one factor with its glyph.
type LegendEntry struct {
	Factor string `json:"factor"`
	Glyph  string `json:"glyph"`
}

// Legend shows the current factor to glyph assignments: the color legend of
// the vertex colormap and the marker legend of the marker map.
type Legend struct {
	base

	colors  []LegendEntry
	markers []LegendEntry
}

func init() {
	MustRegister(KindLegend, func(app App) View { return &Legend{base: base{app}} })
}

func (v *Legend) Kind() string { return KindLegend }

// Colors returns the factor/color rows of the legend.
func (v *Legend) Colors() []LegendEntry { return v.colors }

// Markers returns the factor/marker rows of the legend.
func (v *Legend) Markers() []LegendEntry { return v.markers }

func (v *Legend) ReloadDF() error { return nil }

func (v *Legend) ReloadCDS() error { return v.Recompute() }

// Recompute rebuilds the legend rows. Also called on factor map changes.
func (v *Legend) Recompute() error {
	v.colors = legendEntries(v.app.ColorMap().Factors, v.app.ColorMap().GlyphMap)
	v.markers = legendEntries(v.app.MarkerMap().Factors, v.app.MarkerMap().GlyphMap)
	return nil
}

func legendEntries(factors []string, glyphs map[string]string) []LegendEntry {
	entries := make([]LegendEntry, len(factors))
	for i, f := range factors {
		entries[i] = LegendEntry{Factor: f, Glyph: glyphs[f]}
	}
	return entries
}
