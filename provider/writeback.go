package provider

import (
	"bufio"
	"fmt"
	"os"

	"github.com/zibamira/CTCoral-CoDA/errors"
	"github.com/zibamira/CTCoral-CoDA/selection"
)

// WriteSelectionFile persists a selection as a mask spreadsheet. The format
// is fixed: the first line is a quoted title comment, then a single-column
// CSV with header "selected" and one 0/1 row per table row in table order.
// An empty selection writes all rows as 1, matching the empty-means-all
// convention.
func WriteSelectionFile(path, title string, nrows int, indices []int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create selection file %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%q\n", title)
	fmt.Fprintln(w, "selected")

	sel := selection.FromIndices(indices)
	if sel.IsEmpty() {
		for i := 0; i < nrows; i++ {
			fmt.Fprintln(w, "1")
		}
	} else {
		mask := sel.Mask(nrows)
		for i := 0; i < nrows; i++ {
			if mask[i] {
				fmt.Fprintln(w, "1")
			} else {
				fmt.Fprintln(w, "0")
			}
		}
	}

	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write selection file %s", path)
	}
	return nil
}

// WriteColormapFile persists a glyph column as a single-column CSV with
// header "color" and one hex color per table row.
func WriteColormapFile(path, title string, glyphs []string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create colormap file %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%q\n", title)
	fmt.Fprintln(w, "color")
	for _, glyph := range glyphs {
		fmt.Fprintln(w, glyph)
	}

	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write colormap file %s", path)
	}
	return nil
}
