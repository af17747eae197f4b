package views

import (
	"github.com/zibamira/CTCoral-CoDA/table"
)

// Scatter plots two scalar vertex columns against each other, colored and
// marked by the global factor maps.
type Scatter struct {
	base

	// XColumn and YColumn are the plotted columns. A column that vanished
	// from the table falls back to the first scalar columns on reload.
	XColumn string
	YColumn string
}

func init() {
	MustRegister(KindScatter, func(app App) View { return &Scatter{base: base{app}} })
}

func (v *Scatter) Kind() string { return KindScatter }

func (v *Scatter) ReloadDF() error { return nil }

// ReloadCDS revalidates the column choices against the reloaded table.
func (v *Scatter) ReloadCDS() error {
	scalar := table.ScalarColumns(v.app.Vertices(), true)
	v.XColumn = fallbackColumn(v.XColumn, scalar, 0)
	v.YColumn = fallbackColumn(v.YColumn, scalar, 1)
	return nil
}

// fallbackColumn keeps current when it still exists, otherwise picks the
// i-th available column, or "None" when the table has none left.
func fallbackColumn(current string, available []string, i int) string {
	for _, name := range available {
		if name == current {
			return current
		}
	}
	if i < len(available) {
		return available[i]
	}
	if len(available) > 0 {
		return available[len(available)-1]
	}
	return "None"
}
