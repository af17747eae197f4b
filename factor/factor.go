// Package factor derives stable categorical encodings from table columns.
//
// A FactorMap wraps one column, caches the distinct values (factors) found
// in it and assigns every factor a dense id and a glyph (a color or marker
// name) from a palette. The factors are naturally sorted so that the
// assignment only depends on the set of distinct values, never on row
// order. This keeps colors and markers stable across reloads when the data
// shape is unchanged.
package factor

import (
	"math"
	"sort"
	"strconv"

	"github.com/maruel/natural"

	"github.com/zibamira/CTCoral-CoDA/errors"
	"github.com/zibamira/CTCoral-CoDA/table"
)

// NoneFactor is the single factor emitted when no column is selected or the
// selected column is absent from the table.
const NoneFactor = "None"

// nanFactor represents missing values in a factor column. It always sorts
// behind every real factor.
const nanFactor = "NaN"

// Mode selects how factors beyond the palette length get their glyph.
type Mode int

const (
	// ModeCycle wraps around: factor i gets palette[i % len(palette)].
	ModeCycle Mode = iota
	// ModeRepeatLast clamps: factor i beyond the palette gets the final
	// palette entry.
	ModeRepeatLast
)

func (m Mode) String() string {
	switch m {
	case ModeCycle:
		return "cycle"
	case ModeRepeatLast:
		return "repeat-last"
	}
	return "unknown"
}

// Sink receives the realized id and glyph columns, usually a render source.
type Sink interface {
	SetColumn(name string, values []any)
}

// FactorMap assigns ids and glyphs to the distinct values of a column.
type FactorMap struct {
	// Name of this factor map. The realized column names are derived from
	// it: "<name>:id" and "<name>:glyph".
	Name string

	// ColumnName is the column the map is computed from. Empty means no
	// column; Recompute then emits the single None factor.
	ColumnName string

	palette []string
	mode    Mode

	// Factors holds the naturally sorted distinct values.
	Factors []string

	// IDMap maps factor -> dense id in sorted order.
	IDMap map[string]int

	// GlyphMap maps factor -> palette glyph.
	GlyphMap map[string]string

	// IDColumn and GlyphColumn are the realized per-row columns.
	IDColumn    []float64
	GlyphColumn []string

	// epoch of the table the realization was computed against.
	epoch uint64

	observers []func()
}

// New creates a factor map. An empty palette is a programming error and is
// rejected at construction.
func New(name string, palette []string, mode Mode) (*FactorMap, error) {
	if len(palette) == 0 {
		return nil, errors.NewConfigurationError("palette for factor map %q is empty", name)
	}
	if mode != ModeCycle && mode != ModeRepeatLast {
		return nil, errors.NewConfigurationError("unknown assignment mode %d for factor map %q", mode, name)
	}
	return &FactorMap{
		Name:    name,
		palette: append([]string(nil), palette...),
		mode:    mode,
	}, nil
}

// MustNew is New for static palettes known to be valid.
func MustNew(name string, palette []string, mode Mode) *FactorMap {
	m, err := New(name, palette, mode)
	if err != nil {
		panic(err)
	}
	return m
}

// Palette returns the glyph palette.
func (m *FactorMap) Palette() []string { return m.palette }

// Mode returns the assignment mode.
func (m *FactorMap) Mode() Mode { return m.mode }

// Epoch returns the table epoch of the last Recompute.
func (m *FactorMap) Epoch() uint64 { return m.epoch }

// Glyph returns the palette entry for the i-th sorted factor according to
// the assignment mode.
func (m *FactorMap) Glyph(i int) string {
	switch m.mode {
	case ModeRepeatLast:
		if i >= len(m.palette) {
			i = len(m.palette) - 1
		}
		return m.palette[i]
	default:
		return m.palette[i%len(m.palette)]
	}
}

// Recompute rebuilds the factor mapping from the table and writes the
// realized "<name>:id" and "<name>:glyph" columns into it. The table is
// mutated in place; every view downstream depends on these columns.
func (m *FactorMap) Recompute(tbl *table.Table) error {
	nrows := tbl.NumRows()

	labels, ok := factorLabels(tbl, m.ColumnName)
	if !ok {
		// No column selected, or the column vanished from the table. Every
		// row still needs a renderable encoding.
		m.Factors = []string{NoneFactor}
		m.IDMap = map[string]int{NoneFactor: 0}
		m.GlyphMap = map[string]string{NoneFactor: m.palette[0]}

		m.IDColumn = make([]float64, nrows)
		m.GlyphColumn = make([]string, nrows)
		for i := range m.GlyphColumn {
			m.GlyphColumn[i] = m.palette[0]
		}
		return m.realize(tbl)
	}

	m.Factors = sortFactors(distinct(labels))

	// A column of hex-coded colors is its own colormap: every factor keeps
	// its value as glyph instead of drawing from the palette.
	colorColumn := table.IsColorColumn(tbl.Column(m.ColumnName))

	m.IDMap = make(map[string]int, len(m.Factors))
	m.GlyphMap = make(map[string]string, len(m.Factors))
	for i, f := range m.Factors {
		m.IDMap[f] = i
		if colorColumn {
			m.GlyphMap[f] = f
		} else {
			m.GlyphMap[f] = m.Glyph(i)
		}
	}

	m.IDColumn = make([]float64, nrows)
	m.GlyphColumn = make([]string, nrows)
	for i, label := range labels {
		m.IDColumn[i] = float64(m.IDMap[label])
		m.GlyphColumn[i] = m.GlyphMap[label]
	}
	return m.realize(tbl)
}

func (m *FactorMap) realize(tbl *table.Table) error {
	if err := tbl.SetNumbers(m.Name+":id", m.IDColumn); err != nil {
		return err
	}
	if err := tbl.SetStrings(m.Name+":glyph", m.GlyphColumn); err != nil {
		return err
	}
	m.epoch = tbl.Epoch()
	return nil
}

// Push propagates the realized columns to the render sink and notifies the
// observers. Histogram, graph and legend views re-bin and re-color on this
// notification.
func (m *FactorMap) Push(sink Sink) {
	glyphs := make([]any, len(m.GlyphColumn))
	for i, v := range m.GlyphColumn {
		glyphs[i] = v
	}
	ids := make([]any, len(m.IDColumn))
	for i, v := range m.IDColumn {
		ids[i] = v
	}
	sink.SetColumn(m.Name+":id", ids)
	sink.SetColumn(m.Name+":glyph", glyphs)

	for _, fn := range m.observers {
		fn()
	}
}

// OnUpdate registers an observer invoked after every Push.
func (m *FactorMap) OnUpdate(fn func()) {
	m.observers = append(m.observers, fn)
}

// factorLabels extracts the per-row factor labels from the column. Numeric
// label columns are formatted without a fractional part when integral, NaN
// cells map to the NaN factor.
func factorLabels(tbl *table.Table, column string) ([]string, bool) {
	if column == "" || column == NoneFactor || !tbl.Has(column) {
		return nil, false
	}
	col := tbl.Column(column)
	switch col.Kind {
	case table.KindString:
		return col.Strings, true
	case table.KindBool:
		labels := make([]string, len(col.Bools))
		for i, v := range col.Bools {
			labels[i] = strconv.FormatBool(v)
		}
		return labels, true
	case table.KindNumber:
		labels := make([]string, len(col.Numbers))
		for i, v := range col.Numbers {
			switch {
			case math.IsNaN(v):
				labels[i] = nanFactor
			case v == math.Trunc(v) && !math.IsInf(v, 0):
				labels[i] = strconv.FormatInt(int64(v), 10)
			default:
				labels[i] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		return labels, true
	}
	return nil, false
}

func distinct(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	var out []string
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}

// sortFactors orders the factors naturally, with the NaN factor always
// last. Missing values form one additional factor behind every real one.
func sortFactors(factors []string) []string {
	hasNaN := false
	filtered := factors[:0]
	for _, f := range factors {
		if f == nanFactor {
			hasNaN = true
			continue
		}
		filtered = append(filtered, f)
	}
	sort.Sort(natural.StringSlice(filtered))
	if hasNaN {
		filtered = append(filtered, nanFactor)
	}
	return filtered
}
