package views

import (
	"github.com/zibamira/CTCoral-CoDA/table"
)

// Spreadsheet shows a column subset of the vertex sink as a plain table.
type Spreadsheet struct {
	base

	// Columns is the projected subset. Empty means all data columns.
	Columns []string

	projected []string
}

func init() {
	MustRegister(KindSpreadsheet, func(app App) View { return &Spreadsheet{base: base{app}} })
}

func (v *Spreadsheet) Kind() string { return KindSpreadsheet }

func (v *Spreadsheet) ReloadDF() error { return nil }

func (v *Spreadsheet) ReloadCDS() error {
	vertices := v.app.Vertices()
	if len(v.Columns) == 0 {
		v.projected = table.DataColumns(vertices)
		return nil
	}

	var kept []string
	for _, name := range v.Columns {
		if vertices.Has(name) {
			kept = append(kept, name)
		}
	}
	v.projected = kept
	return nil
}

// Projection returns the visible columns after the last reload.
func (v *Spreadsheet) Projection() []string { return v.projected }

// Rows materializes the projected columns from the sink snapshot.
func (v *Spreadsheet) Rows() map[string][]any {
	data, _, _ := v.app.VertexSink().Snapshot()
	out := make(map[string][]any, len(v.projected))
	for _, name := range v.projected {
		if values, ok := data[name]; ok {
			out[name] = values
		}
	}
	return out
}
