// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cardinalhq/logrank/internal/classify"
	"github.com/cardinalhq/logrank/internal/filtersort"
	"github.com/cardinalhq/logrank/internal/render"
)

const envPrefix = "LOGRANK"

// Config holds everything a run needs.
type Config struct {
	Pattern      string   `mapstructure:"pattern"`
	Highlight    bool     `mapstructure:"highlight"`
	Bold         bool     `mapstructure:"bold"`
	MatchingOnly bool     `mapstructure:"matching_only"`
	Sort         string   `mapstructure:"sort"`
	Summary      bool     `mapstructure:"summary"`
	Color        string   `mapstructure:"color"`
	Workers      int      `mapstructure:"workers"`
	Inputs       []string `mapstructure:"inputs"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Sort:  filtersort.Original.String(),
		Color: string(render.ColorAuto),
	}
}

// flagKeys maps config keys to the command line flags that override them.
var flagKeys = map[string]string{
	"highlight":     "highlight",
	"bold":          "bold",
	"matching_only": "matching-only",
	"sort":          "sort",
	"summary":       "debug",
	"color":         "color",
	"workers":       "workers",
}

// Load reads configuration from, lowest precedence first: defaults, a
// config file, environment variables and flags. Environment variables use
// the prefix "LOGRANK" with "." replaced by "_", so "matching_only" is
// "LOGRANK_MATCHING_ONLY".
//
// configFile names an explicit file, which must exist. When empty,
// "logrank.yaml" (or any extension viper understands) is looked up in the
// working directory and in $HOME/.config/logrank, and may be absent.
// flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetDefault("sort", cfg.Sort)
	v.SetDefault("color", cfg.Color)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("logrank")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "logrank"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)

	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}

// PatternError reports a pattern that could not be compiled.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// ErrNoPattern is returned by Validate when no pattern was given.
var ErrNoPattern = errors.New("a pattern is required")

// Matcher compiles the configured pattern.
func (c *Config) Matcher() (*classify.Matcher, error) {
	if c.Pattern == "" {
		return nil, ErrNoPattern
	}
	m, err := classify.NewMatcher(c.Pattern)
	if err != nil {
		return nil, &PatternError{Pattern: c.Pattern, Err: err}
	}
	return m, nil
}

// Order parses the configured sort order.
func (c *Config) Order() (filtersort.Order, error) {
	return filtersort.ParseOrder(c.Sort)
}

// ColorMode parses the configured colour mode.
func (c *Config) ColorMode() (render.ColorMode, error) {
	switch m := render.ColorMode(strings.ToLower(c.Color)); m {
	case render.ColorAuto, render.ColorAlways, render.ColorNever:
		return m, nil
	case "":
		return render.ColorAuto, nil
	default:
		return "", fmt.Errorf("unknown color mode %q (want auto, always or never)", c.Color)
	}
}

// Resolved holds the parsed forms of the fields a run uses.
type Resolved struct {
	Matcher   *classify.Matcher
	Order     filtersort.Order
	ColorMode render.ColorMode
}

// Resolve compiles the pattern and parses the sort order and colour mode.
// Every problem is reported at once; on error the result is nil.
func (c *Config) Resolve() (*Resolved, error) {
	var (
		r    Resolved
		err  error
		errs *multierror.Error
	)
	if r.Matcher, err = c.Matcher(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if r.Order, err = c.Order(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if r.ColorMode, err = c.ColorMode(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if c.Workers < 0 {
		errs = multierror.Append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	_, err := c.Resolve()
	return err
}
