// Package config carga la configuración del proceso: YAML + overrides
// por ENV. Se construye UNA vez en main y se inyecta; ningún otro
// componente lee estado ambiente del proceso.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		DSN             string `yaml:"dsn"`
		MaxOpenConns    int    `yaml:"max_open_conns"`
		MaxIdleConns    int    `yaml:"max_idle_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	} `yaml:"storage"`

	Cache struct {
		Driver   string `yaml:"driver"` // memory | redis
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"cache"`

	Discord struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RedirectURI  string `yaml:"redirect_uri"`
		BotToken     string `yaml:"bot_token"`
		APIBase      string `yaml:"api_base"` // override solo para tests
	} `yaml:"discord"`

	JWT struct {
		Secret string `yaml:"secret"`
	} `yaml:"jwt"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load lee el YAML (si path existe), aplica defaults y overrides ENV,
// y valida lo mínimo indispensable para arrancar.
func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, err
			}
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "botmanage"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.applyEnvOverrides()

	if c.JWT.Secret == "" {
		return nil, errors.New("config: jwt secret is required (JWT_SECRET)")
	}
	if c.Discord.ClientID == "" || c.Discord.ClientSecret == "" {
		return nil, errors.New("config: discord client credentials are required")
	}
	if c.Discord.BotToken == "" {
		return nil, errors.New("config: discord bot token is required")
	}

	return &c, nil
}

func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvStr("DATABASE_URL"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("CACHE_DRIVER"); ok {
		c.Cache.Driver = v
	}
	if v, ok := getEnvStr("REDIS_HOST"); ok {
		c.Cache.Host = v
	}
	if v, ok := getEnvInt("REDIS_PORT"); ok {
		c.Cache.Port = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.DB = v
	}
	if v, ok := getEnvStr("DISCORD_CLIENT_ID"); ok {
		c.Discord.ClientID = v
	}
	if v, ok := getEnvStr("DISCORD_CLIENT_SECRET"); ok {
		c.Discord.ClientSecret = v
	}
	if v, ok := getEnvStr("DISCORD_REDIRECT_URI"); ok {
		c.Discord.RedirectURI = v
	}
	if v, ok := getEnvStr("DISCORD_BOT_TOKEN"); ok {
		c.Discord.BotToken = v
	}
	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}
