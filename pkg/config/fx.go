package config

import (
	"os"

	"github.com/pseudomuto/swellow/pkg/consts"
	"go.uber.org/fx"
)

// Module provides the *Config read from SWELLOW_CONFIG or swellow.yaml in the
// working directory. A missing file yields the defaults so every setting can
// come from flags or the environment instead.
var Module = fx.Module("config", fx.Provide(
	func() (*Config, error) {
		path := os.Getenv(consts.EnvConfig)
		if path == "" {
			path = DefaultFile
		}

		return Find(path)
	},
))
