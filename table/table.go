// Package table implements the in-memory spreadsheet model shared by all
// CoDA views: ordered rows, named scalar columns and a monotonic epoch tag
// that derived artifacts use to detect staleness.
package table

import (
	"math"
	"sync/atomic"

	"github.com/zibamira/CTCoral-CoDA/errors"
)

// Prefix marks columns owned by CoDA itself (factor ids, glyphs, layout
// positions, mercator coordinates). They are skipped by the data column
// filters and never treated as user data.
const Prefix = "coda:"

// Kind enumerates the scalar column kinds.
type Kind int

const (
	// KindNumber holds float64 values. Missing cells are NaN.
	KindNumber Kind = iota
	// KindString holds string values. Missing cells are "".
	KindString
	// KindBool holds boolean values.
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	}
	return "unknown"
}

// Column is a single named column. Exactly one of the value slices is
// populated, according to Kind.
type Column struct {
	Name    string
	Kind    Kind
	Numbers []float64
	Strings []string
	Bools   []bool
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case KindNumber:
		return len(c.Numbers)
	case KindString:
		return len(c.Strings)
	case KindBool:
		return len(c.Bools)
	}
	return 0
}

// IsIntegral reports whether the column is numeric and every value is a
// finite integer. Such columns may act as categorical labels and as edge
// source/target indices.
func (c *Column) IsIntegral() bool {
	if c.Kind != KindNumber {
		return false
	}
	for _, v := range c.Numbers {
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return false
		}
	}
	return true
}

// HasNaN reports whether a numeric column contains missing values.
func (c *Column) HasNaN() bool {
	if c.Kind != KindNumber {
		return false
	}
	for _, v := range c.Numbers {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Values returns the column values as a generic slice, for hand-off to the
// render sink.
func (c *Column) Values() []any {
	out := make([]any, c.Len())
	switch c.Kind {
	case KindNumber:
		for i, v := range c.Numbers {
			out[i] = v
		}
	case KindString:
		for i, v := range c.Strings {
			out[i] = v
		}
	case KindBool:
		for i, v := range c.Bools {
			out[i] = v
		}
	}
	return out
}

// epochCounter assigns process-wide unique epochs to tables. An epoch tags
// one wholesale table state; derived artifacts record the epoch they were
// computed against.
var epochCounter atomic.Uint64

// NextEpoch returns a fresh, strictly increasing epoch value.
func NextEpoch() uint64 {
	return epochCounter.Add(1)
}

// Table is an ordered collection of rows. Row identity is positional and
// stable only within one epoch.
type Table struct {
	columns map[string]*Column
	order   []string
	nrows   int
	epoch   uint64
}

// New creates an empty table with a fresh epoch.
func New() *Table {
	return &Table{
		columns: make(map[string]*Column),
		epoch:   NextEpoch(),
	}
}

// Epoch returns the epoch this table state was created under.
func (t *Table) Epoch() uint64 { return t.epoch }

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nrows }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.order) }

// Names returns the column names in insertion order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Column returns the named column, or nil if it does not exist.
func (t *Table) Column(name string) *Column {
	return t.columns[name]
}

// SetColumn adds or replaces a column. The first column added determines the
// table's row count; later columns must match it.
func (t *Table) SetColumn(col *Column) error {
	if col == nil || col.Name == "" {
		return errors.New("column must have a name")
	}
	if len(t.order) == 0 || (len(t.order) == 1 && t.Has(col.Name)) {
		t.nrows = col.Len()
	} else if col.Len() != t.nrows {
		return errors.NewDataInconsistencyError(
			"column %q has %d rows, table has %d", col.Name, col.Len(), t.nrows)
	}
	if _, ok := t.columns[col.Name]; !ok {
		t.order = append(t.order, col.Name)
	}
	t.columns[col.Name] = col
	return nil
}

// SetNumbers adds or replaces a numeric column.
func (t *Table) SetNumbers(name string, values []float64) error {
	return t.SetColumn(&Column{Name: name, Kind: KindNumber, Numbers: values})
}

// SetStrings adds or replaces a string column.
func (t *Table) SetStrings(name string, values []string) error {
	return t.SetColumn(&Column{Name: name, Kind: KindString, Strings: values})
}

// SetBools adds or replaces a boolean column.
func (t *Table) SetBools(name string, values []bool) error {
	return t.SetColumn(&Column{Name: name, Kind: KindBool, Bools: values})
}

// Numbers returns the values of a numeric column, or nil if the column does
// not exist or is not numeric.
func (t *Table) Numbers(name string) []float64 {
	col := t.columns[name]
	if col == nil || col.Kind != KindNumber {
		return nil
	}
	return col.Numbers
}

// Strings returns the values of a string column, or nil.
func (t *Table) Strings(name string) []string {
	col := t.columns[name]
	if col == nil || col.Kind != KindString {
		return nil
	}
	return col.Strings
}

// AddPrefix returns a new table (same epoch family, fresh epoch) whose data
// columns are renamed to "<prefix>:<name>". Reserved coda: columns keep
// their names.
func (t *Table) AddPrefix(prefix string) *Table {
	out := New()
	for _, name := range t.order {
		col := t.columns[name]
		renamed := *col
		if prefix != "" && !isReserved(name) {
			renamed.Name = prefix + ":" + name
		}
		// Row counts are unchanged, SetColumn cannot fail here.
		_ = out.SetColumn(&renamed)
	}
	return out
}

// Concat appends the columns of other to t (horizontal concatenation).
// The row counts must match.
func (t *Table) Concat(other *Table) error {
	if len(t.order) > 0 && len(other.order) > 0 && t.nrows != other.nrows {
		return errors.NewDataInconsistencyError(
			"cannot merge tables with %d and %d rows", t.nrows, other.nrows)
	}
	for _, name := range other.order {
		if err := t.SetColumn(other.columns[name]); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the table under a fresh epoch.
func (t *Table) Clone() *Table {
	out := New()
	for _, name := range t.order {
		col := t.columns[name]
		cp := &Column{Name: col.Name, Kind: col.Kind}
		switch col.Kind {
		case KindNumber:
			cp.Numbers = append([]float64(nil), col.Numbers...)
		case KindString:
			cp.Strings = append([]string(nil), col.Strings...)
		case KindBool:
			cp.Bools = append([]bool(nil), col.Bools...)
		}
		_ = out.SetColumn(cp)
	}
	return out
}

func isReserved(name string) bool {
	return len(name) >= len(Prefix) && name[:len(Prefix)] == Prefix
}
