// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "GMW"

// Setting keys shared by flags and GMW_* environment variables.
const (
	KeyVerbose = "verbose"
	KeyYes     = "yes"
	KeyTimeout = "timeout"
	KeyConfig  = "config"
	KeyNoColor = "no-color"
)

// Settings are the process-wide switches that live outside the project table.
type Settings struct {
	Verbose bool
	Yes     bool
	// Timeout overrides timeouts.build when non-zero.
	Timeout    time.Duration
	ConfigPath string
	NoColor    bool
}

// LoadSettings layers defaults, GMW_* environment variables and any of the
// given flags that were set explicitly, in increasing priority. Flags are
// bound by their long names (see the Key constants).
func LoadSettings(flags *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyYes, false)
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyConfig, "")
	v.SetDefault(KeyNoColor, false)

	if flags != nil {
		for _, key := range []string{KeyVerbose, KeyYes, KeyTimeout, KeyConfig, KeyNoColor} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Settings{}, fmt.Errorf("bind flag %s: %w", key, err)
				}
			}
		}
	}

	s := Settings{
		Verbose:    v.GetBool(KeyVerbose),
		Yes:        v.GetBool(KeyYes),
		Timeout:    v.GetDuration(KeyTimeout),
		ConfigPath: v.GetString(KeyConfig),
		NoColor:    v.GetBool(KeyNoColor),
	}
	if s.Timeout < 0 {
		return Settings{}, fmt.Errorf("%s must not be negative, got %s", KeyTimeout, s.Timeout)
	}
	return s, nil
}

// BuildTimeout returns the effective build timeout for cfg.
func (s Settings) BuildTimeout(cfg *Config) time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return cfg.Timeouts.BuildTimeout()
}
