package config

import (
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/zibamira/CTCoral-CoDA/errors"
)

// Load reads the configuration from defaults, an optional TOML file and
// CODA_-prefixed environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("CODA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// WriteDefault writes a commented starting-point configuration to path.
// Refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Newf("config file %s already exists", path)
	}

	v := viper.New()
	SetDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return errors.Wrap(err, "failed to build default config")
	}

	raw, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to encode default config")
	}
	return os.WriteFile(path, raw, 0o644)
}
