package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked for in the working directory when no
// explicit --config is given.
const DefaultConfigFile = "sagitta.yaml"

// Config is the optional YAML configuration for the CLI.
type Config struct {
	// DB is the database file path. Overridden by the --db flag.
	DB string `yaml:"db"`

	// Indexes lists fields whose secondary indexes are ensured on every
	// invocation. Index creation is idempotent, so listing a field here
	// is always safe.
	Indexes []string `yaml:"indexes"`
}

// LoadConfig reads the config file. An explicit path must exist; the
// default path is optional and silently skipped when absent.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
