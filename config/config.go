// Package config holds the dashboard configuration, loaded from a TOML
// file, CODA_-prefixed environment variables and defaults, in that
// precedence order.
package config

// Config is the complete dashboard configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" toml:"server"`
	Session   SessionConfig   `mapstructure:"session" toml:"session"`
	Provider  ProviderConfig  `mapstructure:"provider" toml:"provider"`
	Histogram HistogramConfig `mapstructure:"histogram" toml:"histogram"`
	Graph     GraphConfig     `mapstructure:"graph" toml:"graph"`
}

// ServerConfig configures the websocket server.
type ServerConfig struct {
	// Port: nil = default 5006, 0 is invalid (omit for default).
	Port *int `mapstructure:"port" toml:"port"`

	// StartBrowser opens the dashboard in the default browser on startup.
	StartBrowser bool `mapstructure:"start_browser" toml:"start_browser"`
}

// DefaultServerPort is the listen port when none is configured.
const DefaultServerPort = 5006

// SessionConfig configures the reload behavior.
type SessionConfig struct {
	// AutomaticReload reloads on every provider change notification; when
	// false a notification only arms the manual reload control.
	AutomaticReload bool `mapstructure:"automatic_reload" toml:"automatic_reload"`
}

// ProviderConfig configures the data provider selected by the subcommand.
type ProviderConfig struct {
	// VertexCSV and EdgeCSV are the spreadsheet paths of the filesystem
	// provider, optionally as "prefix=path".
	VertexCSV []string `mapstructure:"vertex_csv" toml:"vertex_csv"`
	EdgeCSV   []string `mapstructure:"edge_csv" toml:"edge_csv"`

	// VertexSelection etc. are the writeback target paths.
	VertexSelection string `mapstructure:"vertex_selection" toml:"vertex_selection"`
	EdgeSelection   string `mapstructure:"edge_selection" toml:"edge_selection"`
	VertexColormap  string `mapstructure:"vertex_colormap" toml:"vertex_colormap"`
	EdgeColormap    string `mapstructure:"edge_colormap" toml:"edge_colormap"`

	// AmiraDir is the shared directory of the amira provider; empty uses
	// zero-conf discovery.
	AmiraDir string `mapstructure:"amira_dir" toml:"amira_dir"`

	// RandomSeed seeds the random provider.
	RandomSeed int64 `mapstructure:"random_seed" toml:"random_seed"`
}

// HistogramConfig configures the histogram views.
type HistogramConfig struct {
	Bins int `mapstructure:"bins" toml:"bins"`
}

// GraphConfig configures the graph views.
type GraphConfig struct {
	// LayoutAlgorithm overrides the automatic tree/spring choice.
	LayoutAlgorithm string `mapstructure:"layout_algorithm" toml:"layout_algorithm"`
}

// PortOrDefault resolves the configured port.
func (c *ServerConfig) PortOrDefault() int {
	if c.Port == nil {
		return DefaultServerPort
	}
	return *c.Port
}
