package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("session.automatic_reload", true)

	v.SetDefault("server.start_browser", false)

	v.SetDefault("provider.random_seed", 0)

	v.SetDefault("histogram.bins", 10)

	// Empty picks tree for forests, spring otherwise.
	v.SetDefault("graph.layout_algorithm", "")
}
