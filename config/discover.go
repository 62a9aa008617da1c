package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// EnvConfig names an environment variable holding a config file path.
const EnvConfig = "CONDAPLAN_CONFIG"

// configNames are tried in order under <XDG config home>/condaplan.
var configNames = []string{"config.yaml", "config.yml", "config.toml"}

// Discover returns the config file to use when none was given explicitly:
// $CONDAPLAN_CONFIG when set, else the first existing condaplan/config.*
// under the XDG config home. It returns false when there is none.
func Discover() (string, bool) {
	return discover(os.Getenv(EnvConfig), filepath.Join(xdg.ConfigHome, "condaplan"))
}

func discover(env, dir string) (string, bool) {
	if env != "" {
		return env, true
	}
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
