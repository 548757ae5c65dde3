// Package config загружает настройки CLI bbtemplar через viper:
// файл .bbtemplar.yaml, переменные окружения BBTEMPLAR_* и флаги.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix — префикс переменных окружения (BBTEMPLAR_RENDER_SEPARATOR и т.п.).
const EnvPrefix = "BBTEMPLAR"

type Config struct {
	Render RenderConfig `mapstructure:"render"`
	Log    LogConfig    `mapstructure:"log"`
	Watch  WatchConfig  `mapstructure:"watch"`
}

type RenderConfig struct {
	// Separator вставляется между итерациями LOOP-блоков
	Separator string `mapstructure:"separator"`
	// HTML — сразу прогонять результат через конвертер BBCode → HTML
	HTML bool `mapstructure:"html"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// SetDefaults регистрирует значения по умолчанию.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("render.separator", "")
	v.SetDefault("render.html", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("watch.debounce", 200*time.Millisecond)
}

// Init настраивает источники: явный файл или .bbtemplar.{yaml,yml} в текущей директории,
// плюс окружение. Отсутствие файла не ошибка.
func Init(v *viper.Viper, file string) error {
	SetDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(".bbtemplar")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && file == "" {
			return nil
		}
		return fmt.Errorf("чтение конфигурации: %w", err)
	}
	return nil
}

// Load собирает и проверяет конфигурацию.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: неизвестный уровень %q", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: неизвестный формат %q", cfg.Log.Format)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce: отрицательное значение %s", cfg.Watch.Debounce)
	}
	return nil
}
