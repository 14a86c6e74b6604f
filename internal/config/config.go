package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Network  NetworkConfig  `toml:"network"`
	Pet      PetConfig      `toml:"pet"`
	Database DatabaseConfig `toml:"database"`
	Data     DataConfig     `toml:"data"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Name             string `toml:"name"`
	MaxClients       int    `toml:"max_clients"`
	MaxEntities      int    `toml:"max_entities"` // fixed size of the entity table, clients included
	Deathmatch       int    `toml:"deathmatch"`   // game mode scale fed to the quota formulas
	Teamplay         bool   `toml:"teamplay"`
	RconPasswordHash string `toml:"rcon_password_hash"` // bcrypt; empty disables rcon
	StartTime        int64  // set at boot, not from config
}

type NetworkConfig struct {
	BindAddress     string        `toml:"bind_address"`
	TickRate        time.Duration `toml:"tick_rate"`
	InQueueSize     int           `toml:"in_queue_size"`
	OutQueueSize    int           `toml:"out_queue_size"`
	MaxLinesPerTick int           `toml:"max_lines_per_tick"`
	MaxLineLength   int           `toml:"max_line_length"`
	ClientCharset   string        `toml:"client_charset"` // WHATWG encoding label, e.g. "utf-8", "big5"
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	KeepAlive       time.Duration `toml:"keep_alive"`
}

// ReleaseAccounting values.
const (
	ReleaseAccountingOff  = "off"
	ReleaseAccountingFull = "full"
)

type PetConfig struct {
	PowerQuota          int     `toml:"power_quota"`            // base cap on summed pet max health
	PowerQuotaModeScale int     `toml:"power_quota_mode_scale"` // added per deathmatch level
	CountQuota          int     `toml:"count_quota"`            // base cap on live pets
	CountQuotaModeScale int     `toml:"count_quota_mode_scale"`
	VanishProbability   float64 `toml:"vanish_probability"`       // chance a pet is removed when its owner dies
	RiotReleaseChance   float64 `toml:"riot_release_probability"` // chance a riot frees someone else's pet
	ReleaseAccounting   string  `toml:"release_accounting"`       // "off" or "full"
	AssistRange         float64 `toml:"assist_range"`
	SearchRadius        float64 `toml:"search_radius"`
	FollowDistance      float64 `toml:"follow_distance"`
	IdlePause           float64 `toml:"idle_pause"` // seconds
	DecoyClass          string  `toml:"decoy_class"`
	AnnounceFailures    bool    `toml:"announce_failures"` // tell the player why a spawn did nothing
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables the pet ledger
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	FlushInterval   int           `toml:"flush_interval"` // ticks between ledger writes
}

type DataConfig struct {
	ClassesPath string `toml:"classes_path"`
	ArenaPath   string `toml:"arena_path"`
	ScriptsDir  string `toml:"scripts_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.MaxClients <= 0 {
		return fmt.Errorf("server.max_clients must be positive, got %d", c.Server.MaxClients)
	}
	if c.Server.MaxEntities <= c.Server.MaxClients {
		return fmt.Errorf("server.max_entities (%d) must exceed max_clients (%d)", c.Server.MaxEntities, c.Server.MaxClients)
	}
	if c.Network.TickRate <= 0 {
		return fmt.Errorf("network.tick_rate must be positive")
	}
	for name, p := range map[string]float64{
		"pet.vanish_probability":       c.Pet.VanishProbability,
		"pet.riot_release_probability": c.Pet.RiotReleaseChance,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", name, p)
		}
	}
	switch c.Pet.ReleaseAccounting {
	case ReleaseAccountingOff, ReleaseAccountingFull:
	default:
		return fmt.Errorf("pet.release_accounting must be %q or %q, got %q",
			ReleaseAccountingOff, ReleaseAccountingFull, c.Pet.ReleaseAccounting)
	}
	return nil
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:        "petd",
			MaxClients:  16,
			MaxEntities: 1024,
			Deathmatch:  1,
		},
		Network: NetworkConfig{
			BindAddress:     "0.0.0.0:27910",
			TickRate:        100 * time.Millisecond,
			InQueueSize:     64,
			OutQueueSize:    256,
			MaxLinesPerTick: 8,
			MaxLineLength:   512,
			ClientCharset:   "utf-8",
			WriteTimeout:    10 * time.Second,
			ReadTimeout:     5 * time.Minute,
			KeepAlive:       30 * time.Second,
		},
		Pet: PetConfig{
			PowerQuota:          200,
			PowerQuotaModeScale: 200,
			CountQuota:          4,
			CountQuotaModeScale: 0,
			VanishProbability:   0.6,
			RiotReleaseChance:   0.5,
			ReleaseAccounting:   ReleaseAccountingOff,
			AssistRange:         400,
			SearchRadius:        500,
			FollowDistance:      100,
			IdlePause:           30,
			DecoyClass:          "monster_decoy",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			FlushInterval:   50,
		},
		Data: DataConfig{
			ClassesPath: "data/yaml/monster_classes.yaml",
			ArenaPath:   "data/yaml/arena.yaml",
			ScriptsDir:  "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
