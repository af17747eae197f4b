package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/zibamira/CTCoral-CoDA/errors"
	"github.com/zibamira/CTCoral-CoDA/logger"
	"github.com/zibamira/CTCoral-CoDA/provider"
)

// FilesystemCmd serves local CSV spreadsheets and reloads on file changes.
var FilesystemCmd = &cobra.Command{
	Use:   "filesystem",
	Short: "Watch and serve local CSV spreadsheets",
	Long: `Serve one or more vertex and edge CSV spreadsheets from disk.

Multiple spreadsheets with consistent row counts are merged column-wise,
each under its own prefix. Files are watched; edits trigger a reload.

A spreadsheet argument is either a path or "prefix=path" to control the
column prefix (default: the file stem).

Examples:
  coda filesystem --vertices corals.csv --edges framework.csv
  coda filesystem --vertices corals=data/corals.csv --vertices extra.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		vertexSpecs, _ := cmd.Flags().GetStringArray("vertices")
		edgeSpecs, _ := cmd.Flags().GetStringArray("edges")
		vertexSpecs = append(vertexSpecs, cfg.Provider.VertexCSV...)
		edgeSpecs = append(edgeSpecs, cfg.Provider.EdgeCSV...)
		if len(vertexSpecs) == 0 {
			cmd.Usage()
			return errors.New("at least one vertex spreadsheet is required")
		}

		p := provider.NewFilesystem(logger.Logger.Named("filesystem"))
		for _, spec := range vertexSpecs {
			prefix, path := splitSpec(spec)
			p.AddVertexCSV(path, prefix)
		}
		for _, spec := range edgeSpecs {
			prefix, path := splitSpec(spec)
			p.AddEdgeCSV(path, prefix)
		}

		p.PathVertexSelection, _ = cmd.Flags().GetString("vertex-selection")
		if p.PathVertexSelection == "" {
			p.PathVertexSelection = cfg.Provider.VertexSelection
		}
		p.PathEdgeSelection = cfg.Provider.EdgeSelection
		p.PathVertexColormap = cfg.Provider.VertexColormap
		p.PathEdgeColormap = cfg.Provider.EdgeColormap

		if err := p.Start(); err != nil {
			return err
		}
		defer p.Close()

		return serve(cmd, cfg, p)
	},
}

func init() {
	FilesystemCmd.Flags().StringArray("vertices", nil, "Vertex spreadsheet, path or prefix=path (repeatable)")
	FilesystemCmd.Flags().StringArray("edges", nil, "Edge spreadsheet, path or prefix=path (repeatable)")
	FilesystemCmd.Flags().String("vertex-selection", "", "Path the vertex selection is mirrored to")
}

// splitSpec splits "prefix=path" into its parts; a bare path yields an
// empty prefix, letting the provider derive one from the file stem.
func splitSpec(spec string) (string, string) {
	if prefix, path, ok := strings.Cut(spec, "="); ok {
		return prefix, path
	}
	return "", spec
}
