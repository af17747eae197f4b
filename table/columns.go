package table

import (
	"regexp"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// The column filters below mirror the menus offered by the UI controls:
// colormaps accept label columns, plot axes accept scalar columns, edge
// orientation accepts integral columns.

// Natsorted sorts names in natural (human-friendly) order, so that
// "item2" < "item10".
func Natsorted(names []string) []string {
	out := append([]string(nil), names...)
	sort.Sort(natural.StringSlice(out))
	return out
}

// DataColumns returns all data columns, i.e. every column not owned by CoDA
// itself, sorted naturally.
func DataColumns(t *Table) []string {
	var names []string
	for _, name := range t.Names() {
		if !strings.HasPrefix(name, Prefix) {
			names = append(names, name)
		}
	}
	return Natsorted(names)
}

// ScalarColumns returns all numeric data columns. With allowNaN false,
// columns containing missing values are excluded; dimensionality reduction
// needs a dense matrix.
func ScalarColumns(t *Table, allowNaN bool) []string {
	var names []string
	for _, name := range DataColumns(t) {
		col := t.Column(name)
		if col.Kind != KindNumber {
			continue
		}
		if !allowNaN && col.HasNaN() {
			continue
		}
		names = append(names, name)
	}
	return names
}

// CategoricalColumns returns all string-valued data columns.
func CategoricalColumns(t *Table) []string {
	var names []string
	for _, name := range DataColumns(t) {
		if t.Column(name).Kind == KindString {
			names = append(names, name)
		}
	}
	return names
}

// IntegralColumns returns all numeric data columns whose values are all
// integers.
func IntegralColumns(t *Table) []string {
	var names []string
	for _, name := range DataColumns(t) {
		if t.Column(name).IsIntegral() {
			names = append(names, name)
		}
	}
	return names
}

// LabelColumns returns all columns usable as categorical labels: the
// categorical columns followed by the integral ones.
func LabelColumns(t *Table) []string {
	return append(CategoricalColumns(t), IntegralColumns(t)...)
}

var (
	reRGB  = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	reRGBA = regexp.MustCompile(`^#[0-9a-fA-F]{8}$`)
)

// IsColorColumn reports whether every value of a string column is a
// hex-coded RGB or RGBA color. Such columns can be used as a colormap
// directly.
func IsColorColumn(c *Column) bool {
	if c == nil || c.Kind != KindString || c.Len() == 0 {
		return false
	}
	for _, v := range c.Strings {
		if !reRGB.MatchString(v) && !reRGBA.MatchString(v) {
			return false
		}
	}
	return true
}

// ColorColumns returns all data columns holding hex-coded color values.
func ColorColumns(t *Table) []string {
	var names []string
	for _, name := range DataColumns(t) {
		if IsColorColumn(t.Column(name)) {
			names = append(names, name)
		}
	}
	return names
}
