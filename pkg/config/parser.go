package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ashpect/fwdproxy/pkg/cache"
	"github.com/ashpect/fwdproxy/pkg/request"
)

const DefaultServerName = "Tiny Web Server"

func Default() *SystemCfg {
	return &SystemCfg{
		ListenAddr: ":8000",
		Proxy: proxyCfg{
			UserAgent:  request.DefaultUserAgent,
			ServerName: DefaultServerName,
			MaxHeaders: request.DefaultMaxHeaders,
		},
		Cache: cacheCfg{
			MaxCacheSize:  cache.DefaultByteBudget,
			MaxObjectSize: cache.DefaultObjectCeiling,
			Slots:         cache.DefaultCapacity,
		},
		Log: logCfg{
			Level:  "info",
			Format: "console",
		},
		AccessLog: accessLogCfg{
			Capacity: 100,
		},
		Admin: adminCfg{
			ListenAddr: "127.0.0.1:8081",
		},
	}
}

// Load reads the file at path over the defaults. Files ending in .yaml or
// .yml are YAML, anything else is TOML. An empty path returns the defaults.
func Load(path string) (*SystemCfg, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, errors.WithMessagef(err, "load config %s", path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *SystemCfg) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return yaml.Unmarshal(b, cfg)
	default:
		_, err := toml.DecodeFile(path, cfg)
		return err
	}
}

func (c *SystemCfg) Validate() error {
	switch {
	case c.ListenAddr == "":
		return errors.New("listenaddr is required")
	case c.Proxy.MaxHeaders <= 0:
		return errors.New("proxy.maxHeaders must be > 0")
	case c.Proxy.DialTimeout < 0:
		return errors.New("proxy.dialTimeout must be >= 0")
	case c.Cache.Slots <= 0:
		return errors.New("cache.slots must be > 0")
	case c.Cache.MaxCacheSize <= 0:
		return errors.New("cache.maxCacheSize must be > 0")
	case c.Cache.MaxObjectSize <= 0:
		return errors.New("cache.maxObjectSize must be > 0")
	case c.Cache.MaxObjectSize > c.Cache.MaxCacheSize:
		return errors.Errorf("cache.maxObjectSize %d exceeds cache.maxCacheSize %d",
			c.Cache.MaxObjectSize, c.Cache.MaxCacheSize)
	case c.AccessLog.Capacity < 0:
		return errors.New("accesslog.capacity must be >= 0")
	case c.Admin.Enabled && c.Admin.ListenAddr == "":
		return errors.New("admin.listenaddr is required when admin is enabled")
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return errors.Errorf("log.format %q must be console or json", c.Log.Format)
	}
	return nil
}
