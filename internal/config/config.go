package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/vancomm/minesweeper3d/internal/mines"
)

type App struct {
	Port        string `mapstructure:"port"`
	BasePath    string `mapstructure:"base_path"`
	Development bool   `mapstructure:"development"`
}

type Logging struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type Board struct {
	Width     int `mapstructure:"width"`
	Height    int `mapstructure:"height"`
	MineCount int `mapstructure:"mine_count"`
	MaxCells  int `mapstructure:"max_cells"`
}

type Sessions struct {
	TTL             time.Duration `mapstructure:"ttl"`
	JanitorInterval time.Duration `mapstructure:"janitor_interval"`
}

type Config struct {
	App       App       `mapstructure:"app"`
	Log       Logging   `mapstructure:"log"`
	Board     Board     `mapstructure:"board"`
	Sessions  Sessions  `mapstructure:"session"`
	WebSocket WebSocket `mapstructure:"ws"`
}

// env maps config keys to the environment variables that override them.
var env = map[string]string{
	"app.port":                 "APP_PORT",
	"app.base_path":            "APP_BASE_PATH",
	"app.development":          "DEVELOPMENT",
	"log.level":                "LOG_LEVEL",
	"log.file":                 "LOG_FILE",
	"log.max_size":             "LOG_MAX_SIZE",
	"log.max_backups":          "LOG_MAX_BACKUPS",
	"log.max_age":              "LOG_MAX_AGE",
	"log.compress":             "LOG_COMPRESS",
	"board.width":              "BOARD_WIDTH",
	"board.height":             "BOARD_HEIGHT",
	"board.mine_count":         "BOARD_MINE_COUNT",
	"board.max_cells":          "BOARD_MAX_CELLS",
	"session.ttl":              "SESSION_TTL",
	"session.janitor_interval": "SESSION_JANITOR_INTERVAL",
	"ws.allowed_origins":       "WS_ALLOWED_ORIGINS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.base_path", "")
	v.SetDefault("app.development", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)

	v.SetDefault("board.width", mines.DefaultParams.Width)
	v.SetDefault("board.height", mines.DefaultParams.Height)
	v.SetDefault("board.mine_count", mines.DefaultParams.MineCount)
	v.SetDefault("board.max_cells", 10_000)

	v.SetDefault("session.ttl", time.Hour)
	v.SetDefault("session.janitor_interval", time.Minute)

	v.SetDefault("ws.allowed_origins", []string{})
}

// Load reads configuration from the environment and, when CONFIG_FILE is
// set, from that file. Environment variables win over the file.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("unable to bind %s: %w", name, err)
		}
	}

	if err := v.BindEnv("config_file", "CONFIG_FILE"); err != nil {
		return nil, fmt.Errorf("unable to bind CONFIG_FILE: %w", err)
	}
	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if err := c.Board.Params().Validate(); err != nil {
		return fmt.Errorf("default board: %w", err)
	}
	if c.Board.MaxCells < c.Board.Params().Cells() {
		return fmt.Errorf(
			"BOARD_MAX_CELLS (%d) is smaller than the default board (%d cells)",
			c.Board.MaxCells, c.Board.Params().Cells(),
		)
	}
	return nil
}

func (b Board) Params() mines.Params {
	return mines.Params{Width: b.Width, Height: b.Height, MineCount: b.MineCount}
}
