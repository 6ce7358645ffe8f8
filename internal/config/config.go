package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode          string        `mapstructure:"mode" validate:"oneof=debug release"`
	Port          int           `mapstructure:"port" validate:"gt=0,lte=65535"`
	StaticPath    string        `mapstructure:"static_path" validate:"required"`
	ReadLimit     int64         `mapstructure:"read_limit" validate:"gt=0"`
	SendBuffer    int           `mapstructure:"send_buffer" validate:"gt=0"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	RoomTTL       time.Duration `mapstructure:"room_ttl" validate:"gt=0"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
	Secret        string        `mapstructure:"secret"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 3000)
	v.SetDefault("static_path", "./public")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("send_buffer", 32)
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("room_ttl", "1h")
	v.SetDefault("sweep_interval", "15m")
	v.SetDefault("secret", "rendezvous-dev")

	// The hosting platform hands the port over as PORT.
	_ = v.BindEnv("port", "PORT")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
