package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Metadata  MetadataConfig  `mapstructure:"metadata"`
	QuickEdit QuickEditConfig `mapstructure:"quickedit"`
	Flash     FlashConfig     `mapstructure:"flash"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
	Path     string `mapstructure:"path"` // directory for SQLite database files
}

// MetadataConfig selects where entity definitions come from.
type MetadataConfig struct {
	Source string `mapstructure:"source"` // "db" or "file"
	File   string `mapstructure:"file"`
	Watch  bool   `mapstructure:"watch"`
}

type QuickEditConfig struct {
	Path              string `mapstructure:"path"`
	BoolAcceptsOne    bool   `mapstructure:"bool_accepts_one"`
	AllowLegacyMarker bool   `mapstructure:"allow_legacy_marker"`
}

type FlashConfig struct {
	Driver     string `mapstructure:"driver"` // "memory" or "redis"
	RedisAddr  string `mapstructure:"redis_addr"`
	RedisDB    int    `mapstructure:"redis_db"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// DSN returns the driver-specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path + "/" + d.Name + ".db"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsSQLite returns true if the driver is sqlite.
func (d DatabaseConfig) IsSQLite() bool {
	return d.Driver == "sqlite"
}

// Load reads app.yaml (or the file at path when given), applies defaults and
// environment overrides such as DATABASE_HOST.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("app")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("../..")
	}

	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "quickedit")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.path", "./data")
	v.SetDefault("metadata.source", "db")
	v.SetDefault("metadata.file", "./entities.yaml")
	v.SetDefault("metadata.watch", false)
	v.SetDefault("quickedit.path", "/api/quick-edit")
	v.SetDefault("quickedit.bool_accepts_one", true)
	v.SetDefault("quickedit.allow_legacy_marker", true)
	v.SetDefault("flash.driver", "memory")
	v.SetDefault("flash.redis_addr", "127.0.0.1:6379")
	v.SetDefault("flash.redis_db", 0)
	v.SetDefault("flash.key_prefix", "quickedit:flash:")
	v.SetDefault("flash.ttl_seconds", 300)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
