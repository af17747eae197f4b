package config

import (
	"github.com/zibamira/CTCoral-CoDA/errors"
	"github.com/zibamira/CTCoral-CoDA/graphlayout"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port != nil && *c.Server.Port == 0 {
		return errors.NewConfigurationError(
			"server.port cannot be 0 (omit for default port %d)", DefaultServerPort)
	}
	if c.Server.Port != nil && *c.Server.Port < 0 {
		return errors.NewConfigurationError("server.port must be positive, got %d", *c.Server.Port)
	}

	if c.Histogram.Bins < 1 {
		return errors.NewConfigurationError("histogram.bins must be >= 1, got %d", c.Histogram.Bins)
	}

	if c.Graph.LayoutAlgorithm != "" {
		known := false
		for _, name := range graphlayout.Algorithms() {
			if name == c.Graph.LayoutAlgorithm {
				known = true
				break
			}
		}
		if !known {
			return errors.NewConfigurationError(
				"graph.layout_algorithm %q unknown, pick one of %v",
				c.Graph.LayoutAlgorithm, graphlayout.Algorithms())
		}
	}
	return nil
}
