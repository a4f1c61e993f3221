// Package config loads the server configuration from an optional YAML file,
// RPG_-prefixed environment variables and command flags, in increasing
// precedence.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-narrator/internal/redis"
	"github.com/KirkDiggler/rpg-narrator/internal/storage"
)

// EnvPrefix is the prefix of every environment variable, e.g. RPG_DATABASE_DSN
const EnvPrefix = "RPG"

// DefaultServerID is the shard used when none is configured
const DefaultServerID = "sv_global"

// Config is the full server configuration
type Config struct {
	ServerID  string          `mapstructure:"server_id"`
	Admins    []string        `mapstructure:"admins"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
	Battle    BattleConfig    `mapstructure:"battle"`
	Game      GameConfig      `mapstructure:"game"`
	Social    SocialConfig    `mapstructure:"social"`
}

// GRPCConfig configures the gRPC listener
type GRPCConfig struct {
	Port int `mapstructure:"port"`
}

// HTTPConfig configures the ops HTTP listener
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig configures the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RedisConfig configures the Redis client
type RedisConfig struct {
	Mode       string   `mapstructure:"mode"`
	Addrs      []string `mapstructure:"addrs"`
	MasterName string   `mapstructure:"master_name"`
	Password   string   `mapstructure:"password"`
	DB         int      `mapstructure:"db"`
	PoolSize   int      `mapstructure:"pool_size"`
	UseTLS     bool     `mapstructure:"use_tls"`
}

// DatabaseConfig configures the SQL store
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
}

// TierConfig is one narrative backend tier, most preferred first
type TierConfig struct {
	Name        string  `mapstructure:"name"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
}

// NarrativeConfig configures the narrative backend router
type NarrativeConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	Tiers    []TierConfig  `mapstructure:"tiers"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// BattleConfig tunes the battle engine
type BattleConfig struct {
	MinDamage      int `mapstructure:"min_damage"`
	PenaltyPercent int `mapstructure:"penalty_percent"`
}

// GameConfig tunes the single-player loop
type GameConfig struct {
	AutosaveDelay time.Duration `mapstructure:"autosave_delay"`
}

// SocialConfig tunes chat and leaderboard
type SocialConfig struct {
	ChatHistory        int           `mapstructure:"chat_history"`
	LeaderboardRefresh time.Duration `mapstructure:"leaderboard_refresh"`
}

// SetDefaults registers every key with its default. Keys must be known to
// viper for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server_id", DefaultServerID)
	v.SetDefault("admins", []string{})
	v.SetDefault("grpc.port", 50051)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("redis.mode", redisclient.ModeSingle)
	v.SetDefault("redis.addrs", []string{})
	v.SetDefault("redis.master_name", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 0)
	v.SetDefault("redis.use_tls", false)

	v.SetDefault("database.driver", storage.DriverPostgres)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.slow_threshold", 200*time.Millisecond)

	v.SetDefault("narrative.api_key", "")
	v.SetDefault("narrative.timeout", 60*time.Second)
	v.SetDefault("narrative.cooldown", 60*time.Second)
	v.SetDefault("narrative.tiers", []map[string]any{
		{
			"name":        "gemini-pro",
			"model":       "gemini-3-pro-preview",
			"base_url":    "https://generativelanguage.googleapis.com/v1beta/openai/",
			"temperature": 1.1,
		},
		{
			"name":        "gemini-flash",
			"model":       "gemini-3-flash-preview",
			"base_url":    "https://generativelanguage.googleapis.com/v1beta/openai/",
			"temperature": 1.0,
		},
	})

	v.SetDefault("battle.min_damage", 250000)
	v.SetDefault("battle.penalty_percent", 30)
	v.SetDefault("game.autosave_delay", 2*time.Second)
	v.SetDefault("social.chat_history", 50)
	v.SetDefault("social.leaderboard_refresh", 30*time.Second)
}

// Load reads the configuration. path may be empty, in which case only
// defaults, environment and bound flags apply.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCodef(err, errors.CodeInvalidArgument, "failed to read config file %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode config")
	}
	return cfg, nil
}

// Validate reports every missing or invalid setting at once
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired("server_id", c.ServerID, vb)
	errors.ValidateRange("grpc.port", c.GRPC.Port, 1, 65535, vb)
	errors.ValidateRequired("http.addr", c.HTTP.Addr, vb)
	errors.ValidateEnum("log.format", c.Log.Format, []string{"json", "text"}, vb)
	errors.ValidateEnum("log.level", strings.ToLower(c.Log.Level), []string{"debug", "info", "warn", "error"}, vb)

	errors.ValidateEnum("redis.mode", c.Redis.Mode,
		[]string{redisclient.ModeSingle, redisclient.ModeCluster, redisclient.ModeSentinel}, vb)
	if len(c.Redis.Addrs) == 0 {
		vb.RequiredField("redis.addrs")
	}
	if c.Redis.Mode == redisclient.ModeSentinel && c.Redis.MasterName == "" {
		vb.Field("redis.master_name", "is required in sentinel mode")
	}

	errors.ValidateEnum("database.driver", c.Database.Driver,
		[]string{storage.DriverPostgres, storage.DriverMySQL}, vb)
	errors.ValidateRequired("database.dsn", c.Database.DSN, vb)

	errors.ValidateRequired("narrative.api_key", c.Narrative.APIKey, vb)
	if len(c.Narrative.Tiers) == 0 {
		vb.RequiredField("narrative.tiers")
	}
	for i, t := range c.Narrative.Tiers {
		if t.Name == "" || t.Model == "" {
			vb.Fieldf("narrative.tiers", "tier %d needs a name and a model", i)
		}
	}
	if c.Narrative.Cooldown < 0 {
		vb.Field("narrative.cooldown", "must not be negative")
	}

	if c.Battle.MinDamage < 0 {
		vb.Field("battle.min_damage", "must not be negative")
	}
	errors.ValidateRange("battle.penalty_percent", c.Battle.PenaltyPercent, 0, 100, vb)
	if c.Game.AutosaveDelay <= 0 {
		vb.Field("game.autosave_delay", "must be positive")
	}

	return vb.Build()
}

// RedisOptions converts the section for the Redis client factory
func (c *Config) RedisOptions() *redisclient.Options {
	return &redisclient.Options{
		Mode:       c.Redis.Mode,
		Addrs:      c.Redis.Addrs,
		MasterName: c.Redis.MasterName,
		Password:   c.Redis.Password,
		DB:         c.Redis.DB,
		PoolSize:   c.Redis.PoolSize,
		UseTLS:     c.Redis.UseTLS,
	}
}

// StorageConfig converts the section for the database opener
func (c *Config) StorageConfig() *storage.Config {
	return &storage.Config{
		Driver:          c.Database.Driver,
		DSN:             c.Database.DSN,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		SlowThreshold:   c.Database.SlowThreshold,
	}
}
