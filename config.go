package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
)

// defaultsConfig carries settings loaded from an optional YAML file. Flags
// explicitly set on the command line always win over these.
type defaultsConfig struct {
	LogLevel string `yaml:"log_level"`
	Swapout  struct {
		LimitMB     int64   `yaml:"limit_mb"`
		TargetRSSKB int64   `yaml:"target_rss_kb"`
		Interval    float64 `yaml:"interval"`
		MaxIter     int     `yaml:"max_iter"`
	} `yaml:"swapout"`
}

var defaults defaultsConfig

// loadDefaults reads path if given, otherwise ~/.config/memtools.yaml when
// it exists. A missing implicit file is fine; a missing explicit one is not.
func loadDefaults(path string) error {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".config", "memtools.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read config %s", path)
	}

	defaults = defaultsConfig{}
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}

	if defaults.LogLevel != "" {
		level, err := log.ParseLevel(defaults.LogLevel)
		if err != nil {
			return errors.Wrapf(err, "config %s", path)
		}
		log.SetLevel(level)
	}
	return nil
}

func flagInt64(ctx *cli.Context, name string, fallback int64) int64 {
	if !ctx.IsSet(name) && fallback > 0 {
		return fallback
	}
	return ctx.Int64(name)
}

func flagInt(ctx *cli.Context, name string, fallback int) int {
	if !ctx.IsSet(name) && fallback > 0 {
		return fallback
	}
	return ctx.Int(name)
}

func flagFloat64(ctx *cli.Context, name string, fallback float64) float64 {
	if !ctx.IsSet(name) && fallback > 0 {
		return fallback
	}
	return ctx.Float64(name)
}
