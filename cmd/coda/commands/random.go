package commands

import (
	"github.com/spf13/cobra"

	"github.com/zibamira/CTCoral-CoDA/provider"
)

// RandomCmd serves generated sample data, useful for trying out the
// dashboard without any files.
var RandomCmd = &cobra.Command{
	Use:   "random",
	Short: "Serve generated sample data",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		seed, _ := cmd.Flags().GetInt64("seed")
		if !cmd.Flags().Changed("seed") {
			seed = cfg.Provider.RandomSeed
		}
		samples, _ := cmd.Flags().GetInt("samples")

		p := provider.NewRandom(seed)
		if samples > 0 {
			p.Samples = samples
		}
		return serve(cmd, cfg, p)
	},
}

func init() {
	RandomCmd.Flags().Int64("seed", 0, "Random seed for reproducible data")
	RandomCmd.Flags().Int("samples", 100, "Number of generated vertices")
}
