package config

import "time"

type proxyCfg struct {
	UserAgent   string        `toml:"userAgent" yaml:"userAgent"`
	ServerName  string        `toml:"serverName" yaml:"serverName"`
	AllowPost   bool          `toml:"allowPost" yaml:"allowPost"`
	MaxHeaders  int           `toml:"maxHeaders" yaml:"maxHeaders"`
	DialTimeout time.Duration `toml:"dialTimeout" yaml:"dialTimeout"`
}

type cacheCfg struct {
	MaxCacheSize  int `toml:"maxCacheSize" yaml:"maxCacheSize"`
	MaxObjectSize int `toml:"maxObjectSize" yaml:"maxObjectSize"`
	Slots         int `toml:"slots" yaml:"slots"`
}

type logCfg struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	File   string `toml:"file" yaml:"file"`
}

type accessLogCfg struct {
	Capacity   int    `toml:"capacity" yaml:"capacity"`
	SQLitePath string `toml:"sqlitePath" yaml:"sqlitePath"`
}

type adminCfg struct {
	Enabled    bool   `toml:"enabled" yaml:"enabled"`
	ListenAddr string `toml:"listenaddr" yaml:"listenaddr"`
}

type SystemCfg struct {
	ListenAddr string       `toml:"listenaddr" yaml:"listenaddr"`
	Proxy      proxyCfg     `toml:"proxy" yaml:"proxy"`
	Cache      cacheCfg     `toml:"cache" yaml:"cache"`
	Log        logCfg       `toml:"log" yaml:"log"`
	AccessLog  accessLogCfg `toml:"accesslog" yaml:"accesslog"`
	Admin      adminCfg     `toml:"admin" yaml:"admin"`
}
