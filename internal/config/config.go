package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DataFile é o caminho fixo do CSV de entrada, relativo ao diretório de trabalho
const DataFile = "DASHBOARD_DATA.csv"

// Config armazena as configurações da aplicação
type Config struct {
	Port                     string
	GinMode                  string
	LogLevel                 string
	LogJSON                  bool
	FigureCacheTTL           time.Duration
	WSMessagesPerSecond      float64
	EfficiencyFilterBySprint bool
}

// Load carrega as configurações do ambiente
func Load() (*Config, error) {
	// Tenta carregar .env de múltiplos locais
	_ = godotenv.Load()          // ./.env
	_ = godotenv.Load("../.env") // diretório pai

	cfg := &Config{
		Port:     os.Getenv("PORT"),
		GinMode:  os.Getenv("GIN_MODE"),
		LogLevel: os.Getenv("LOG_LEVEL"),
	}

	// Defaults
	if cfg.Port == "" {
		cfg.Port = "8050"
	}

	if cfg.GinMode == "" {
		cfg.GinMode = "debug"
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	var err error
	if cfg.LogJSON, err = boolEnv("LOG_JSON", false); err != nil {
		return nil, err
	}

	if cfg.EfficiencyFilterBySprint, err = boolEnv("EFFICIENCY_FILTER_BY_SPRINT", false); err != nil {
		return nil, err
	}

	cfg.FigureCacheTTL = 5 * time.Minute
	if v := os.Getenv("FIGURE_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("FIGURE_CACHE_TTL inválido: %q", v)
		}
		cfg.FigureCacheTTL = ttl
	}

	cfg.WSMessagesPerSecond = 10
	if v := os.Getenv("WS_MESSAGES_PER_SECOND"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return nil, fmt.Errorf("WS_MESSAGES_PER_SECOND inválido: %q", v)
		}
		cfg.WSMessagesPerSecond = rps
	}

	return cfg, nil
}

// boolEnv lê uma variável booleana, usando def quando ausente
func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s inválido: %q", key, v)
	}
	return b, nil
}
