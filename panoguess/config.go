package panoguess

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	if cfg.Game.DailyMovesLimit == 0 {
		cfg.Game.DailyMovesLimit = DefaultDailyMovesLimit
	}
	return &cfg, nil
}

// DefaultDailyMovesLimit is applied when the config omits game.daily_moves_limit.
const DefaultDailyMovesLimit = 25

type Config struct {
	Log       LogConfig       `toml:"log"`
	Bot       BotConfig       `toml:"bot"`
	DB        DBConfig        `toml:"db"`
	Geocoding GeocodingConfig `toml:"geocoding"`
	Game      GameConfig      `toml:"game"`
}

type BotConfig struct {
	Token string `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

type GeocodingConfig struct {
	APIKey string `toml:"api_key"`
}

type GameConfig struct {
	DailyMovesLimit int `toml:"daily_moves_limit"`
}
