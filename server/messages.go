package server

import (
	"sort"
	"strconv"

	"github.com/zibamira/CTCoral-CoDA/render"
)

// ReplaceMessage carries a full sink snapshot, sent after every reload and
// to late-joining clients.
type ReplaceMessage struct {
	Type    string           `json:"type"`
	Sink    string           `json:"sink"`
	Epoch   uint64           `json:"epoch"`
	NumRows int              `json:"nrows"`
	Columns []string         `json:"columns"`
	Data    map[string][]any `json:"data"`
}

// PatchMessage carries one updated column between reloads, e.g. after a
// colormap recompute.
type PatchMessage struct {
	Type   string `json:"type"`
	Sink   string `json:"sink"`
	Epoch  uint64 `json:"epoch"`
	Column string `json:"column"`
	Values []any  `json:"values"`
}

// SelectionMessage flows both ways: outbound on every selection change,
// inbound when a client selects.
type SelectionMessage struct {
	Type    string `json:"type"`
	Sink    string `json:"sink"`
	Indices []int  `json:"indices"`
}

// InboundMessage is the union of all client messages. Edge selections made
// on a multiline glyph arrive as an object keyed by the stringified line
// index instead of a flat index list.
type InboundMessage struct {
	Type        string           `json:"type"`
	Sink        string           `json:"sink,omitempty"`
	Indices     []int            `json:"indices,omitempty"`
	LineIndices map[string][]int `json:"line_indices,omitempty"`
}

// rowIndices normalizes the message to a sorted list of row indices. String
// keys of line_indices are parsed as row numbers; unparsable keys are
// dropped.
func (m *InboundMessage) rowIndices() []int {
	if len(m.LineIndices) == 0 {
		return m.Indices
	}
	rows := make([]int, 0, len(m.LineIndices))
	for key := range m.LineIndices {
		row, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows
}

func replaceMessage(sink *render.Source) ReplaceMessage {
	data, order, epoch := sink.Snapshot()
	return ReplaceMessage{
		Type:    "replace",
		Sink:    sink.Name(),
		Epoch:   epoch,
		NumRows: sink.NumRows(),
		Columns: order,
		Data:    data,
	}
}

func patchMessage(sink *render.Source, column string) PatchMessage {
	return PatchMessage{
		Type:   "patch",
		Sink:   sink.Name(),
		Epoch:  sink.Epoch(),
		Column: column,
		Values: sink.Column(column),
	}
}
