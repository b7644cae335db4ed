// Package config carga la configuración del servicio (env FINDMYPET_* + archivo yaml opcional).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "FINDMYPET"

type Config struct {
	Port string

	// DBDSN vacío => store in-memory (modo dev).
	DBDSN string

	LogLevel  string
	LogFormat string
	AppName   string

	AIServiceURL       string
	ScrapingServiceURL string
	WorkerAPIKey       string

	NotifyTimeout  time.Duration
	NotifyPoolSize int

	IdentityBaseURL string
	IdentityAPIKey  string

	CORSOrigins []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_dsn", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("app_name", "findmypet-search")
	v.SetDefault("ai_service_url", "")
	v.SetDefault("scraping_service_url", "")
	v.SetDefault("worker_api_key", "")
	v.SetDefault("notify_timeout", "5s")
	v.SetDefault("notify_pool_size", 16)
	v.SetDefault("identity_base_url", "")
	v.SetDefault("identity_api_key", "")
	v.SetDefault("cors_origins", "http://localhost:19006,exp://localhost:19000")
}

// Load lee defaults, luego el archivo (si file != "") y por último env.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if strings.TrimSpace(file) != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := Config{
		Port:               v.GetString("port"),
		DBDSN:              strings.TrimSpace(v.GetString("db_dsn")),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
		AppName:            v.GetString("app_name"),
		AIServiceURL:       strings.TrimSpace(v.GetString("ai_service_url")),
		ScrapingServiceURL: strings.TrimSpace(v.GetString("scraping_service_url")),
		WorkerAPIKey:       strings.TrimSpace(v.GetString("worker_api_key")),
		NotifyTimeout:      v.GetDuration("notify_timeout"),
		NotifyPoolSize:     v.GetInt("notify_pool_size"),
		IdentityBaseURL:    strings.TrimSpace(v.GetString("identity_base_url")),
		IdentityAPIKey:     strings.TrimSpace(v.GetString("identity_api_key")),
		CORSOrigins:        splitCSV(v.GetString("cors_origins")),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("notify_timeout must be positive"))
	}
	if c.NotifyPoolSize <= 0 {
		errs = append(errs, errors.New("notify_pool_size must be positive"))
	}
	for name, raw := range map[string]string{
		"ai_service_url":       c.AIServiceURL,
		"scraping_service_url": c.ScrapingServiceURL,
		"identity_base_url":    c.IdentityBaseURL,
	} {
		if raw == "" {
			continue
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Addr devuelve el listen address a partir de Port.
func (c Config) Addr() string {
	p := strings.TrimSpace(c.Port)
	if p == "" {
		p = "8080"
	}
	if strings.HasPrefix(p, ":") {
		return p
	}
	return ":" + p
}

func splitCSV(raw string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
