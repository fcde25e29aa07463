// pkg/core/load.go
package core

import (
	"fmt"
	"os"

	"github.com/joeydtaylor/steeze-dispatch/pkg/manifest"
	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/logger"
	toml "github.com/pelletier/go-toml/v2"
)

// LoadConfig reads and validates a TOML manifest. Body log paths are
// registered with the access logger as a side effect.
func LoadConfig(path string) (manifest.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return manifest.Config{}, err
	}
	var cfg manifest.Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return manifest.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return manifest.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	logger.AddBodyLogPaths(cfg.Server.BodyLogPaths...)
	return cfg, nil
}
