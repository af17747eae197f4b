package commands

import (
	"github.com/spf13/cobra"

	"github.com/zibamira/CTCoral-CoDA/logger"
	"github.com/zibamira/CTCoral-CoDA/provider"
)

// AmiraCmd links the dashboard with a running Amira instance through a
// shared directory.
var AmiraCmd = &cobra.Command{
	Use:   "amira [directory]",
	Short: "Link with a running Amira instance",
	Long: `Attach to the data directory shared with an Amira instance.

Without an argument the newest amira-coda-* directory in the temp and
cache locations is used (zero-conf). The selection and colormap are
mirrored back into the directory so Amira stays in sync.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		dir := cfg.Provider.AmiraDir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			dir, err = provider.ZeroConfDirectory()
			if err != nil {
				cmd.Usage()
				return err
			}
		}

		p := provider.NewAmira(logger.Logger.Named("amira"), dir)
		if err := p.Start(); err != nil {
			return err
		}
		defer p.Close()

		return serve(cmd, cfg, p)
	},
}
