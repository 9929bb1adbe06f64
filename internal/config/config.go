package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds environment- and YAML-driven settings for the simulator.
type Config struct {
	InitialBalance float64  `yaml:"initial_balance"`
	VIPLevel       int      `yaml:"vip_level"`
	HedgeMode      bool     `yaml:"hedge_mode"`
	Symbols        []string `yaml:"symbols"`

	CandleCSVPath  string `yaml:"candle_csv_path"`
	TickIntervalMs int    `yaml:"tick_interval_ms"`

	ChannelCapacity int    `yaml:"channel_capacity"`
	OverflowPolicy  string `yaml:"overflow_policy"` // "block", "drop_oldest", "reject"

	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Load reads environment variables (optionally via .env), then applies a
// YAML override file if yamlPath is non-empty and present on disk.
func Load(yamlPath string) (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	cfg := &Config{
		InitialBalance:  getEnvFloat("SIM_INITIAL_BALANCE", 10000.0),
		VIPLevel:        getEnvInt("SIM_VIP_LEVEL", 0),
		HedgeMode:       getEnv("SIM_HEDGE_MODE", "false") == "true",
		Symbols:         splitAndTrim(getEnv("SIM_SYMBOLS", "BTCUSDT,ETHUSDT")),
		CandleCSVPath:   getEnv("SIM_CANDLE_CSV", "./data/candles.csv"),
		TickIntervalMs:  getEnvInt("SIM_TICK_INTERVAL_MS", 0),
		ChannelCapacity: getEnvInt("SIM_CHANNEL_CAPACITY", 256),
		OverflowPolicy:  strings.ToLower(getEnv("SIM_OVERFLOW_POLICY", "block")),
		MetricsAddr:     getEnv("SIM_METRICS_ADDR", ":9090"),
		LogLevel:        getEnv("SIM_LOG_LEVEL", "info"),
	}

	if yamlPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitAndTrim(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
