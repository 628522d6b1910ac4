package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"swing_bot/internal/models"
	"swing_bot/pkg/logger"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	brokerKeyENV      = "BROKER_API_KEY_ID"
	brokerSecretENV   = "BROKER_API_SECRET_KEY"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB    string `yaml:"db_dsn"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	Broker struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		BaseURL   string `yaml:"base_url"`
	} `yaml:"broker"`
	MarketData struct {
		BaseURL   string `yaml:"base_url"`
		StreamURL string `yaml:"stream_url"`
	} `yaml:"market_data"`
	Model struct {
		ScoreURL string `yaml:"score_url"`
	} `yaml:"model"`
	Service struct {
		HealthAddr string `yaml:"health_addr"`
	} `yaml:"service"`
	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	// Пара инструментов: базовый тикер и два плеча (long / inverse).
	BaseSymbol string `yaml:"base_symbol"`
	UpSymbol   string `yaml:"up_symbol"`
	DownSymbol string `yaml:"down_symbol"`

	DataDir string `yaml:"data_dir"`

	// Дефолты риска
	DefaultSlippageBps        int     `yaml:"slippage_bps"`          // напр. 30 => 0.30%
	DefaultSpreadMaxBps       int     `yaml:"spread_max_bps"`        // жёсткий блок по спреду
	DefaultStopLossPct        float64 `yaml:"stop_loss_pct"`         // 0.025 => 2.5% от средней входа
	DefaultStopLimitOffsetBps int     `yaml:"stop_limit_offset_bps"` // лимит ниже стопа

	// Replace-троттлинг висящей лимитки
	DefaultReplaceBpsThreshold int
	DefaultReplaceMinInterval  time.Duration
	DefaultReplaceMaxCount     int
	DefaultReplaceCooldownMin  time.Duration
	DefaultReplaceCooldownMax  time.Duration

	// FOK-эмуляция на премаркете/афтере
	DefaultFokWindow     time.Duration
	DefaultFokMaxWindows int

	// Гейт и блендинг
	DefaultGateThreshold float64 `yaml:"gate_threshold"`
	DefaultWModel        float64 `yaml:"w_model"`
	DefaultWSent         float64 `yaml:"w_sent"`
	DefaultSpreadWide    float64 `yaml:"spread_wide_bps_hint"`
	DefaultGateBuffer    float64 `yaml:"gate_buffer"`

	// Сессии
	DefaultSessionPre   bool
	DefaultSessionRTH   bool
	DefaultSessionAfter bool

	DefaultInterval string `yaml:"interval"`
}

func NewConfig() (*Config, error) {

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		return nil, errors.Wrap(err, "open config file")
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		BaseSymbol: getenvDefault("BASE_SYMBOL", "TSLA"),
		UpSymbol:   getenvDefault("UP_SYMBOL", "TSLL"),
		DownSymbol: getenvDefault("DOWN_SYMBOL", "TSDD"),

		DataDir: getenvDefault("DATA_DIR", "data"),

		DefaultSlippageBps:        intFromEnv("SLIPPAGE_BPS", 30),
		DefaultSpreadMaxBps:       intFromEnv("SPREAD_MAX_BPS", 75),
		DefaultStopLossPct:        floatFromEnv("STOP_LOSS_PCT", 0.025),
		DefaultStopLimitOffsetBps: intFromEnv("STOP_LIMIT_OFFSET_BPS", 10),

		DefaultReplaceBpsThreshold: intFromEnv("REPLACE_MIN_BPS_MOVE", 15),
		DefaultReplaceMinInterval:  durationFromEnv("REPLACE_MIN_INTERVAL", "2500ms"),
		DefaultReplaceMaxCount:     intFromEnv("REPLACE_MAX_COUNT", 10),
		DefaultReplaceCooldownMin:  durationFromEnv("REPLACE_COOLDOWN_MIN", "10s"),
		DefaultReplaceCooldownMax:  durationFromEnv("REPLACE_COOLDOWN_MAX", "20s"),

		DefaultFokWindow:     durationFromEnv("FOK_WINDOW", "800ms"),
		DefaultFokMaxWindows: intFromEnv("FOK_MAX_WINDOWS", 3),

		DefaultGateThreshold: floatFromEnv("GATE_THRESHOLD", 0.55),
		DefaultWModel:        floatFromEnv("BLEND_W_MODEL", 0.70),
		DefaultWSent:         floatFromEnv("BLEND_W_SENT", 0.30),
		DefaultSpreadWide:    floatFromEnv("SPREAD_WIDE_BPS_HINT", 40),
		DefaultGateBuffer:    floatFromEnv("GATE_BUFFER_NEAR_COINFLIP", 0.02),

		DefaultSessionPre:   boolFromEnv("SESSION_PRE", true),
		DefaultSessionRTH:   boolFromEnv("SESSION_RTH", true),
		DefaultSessionAfter: boolFromEnv("SESSION_AFTER", false),

		DefaultInterval: getenvDefault("MODEL_INTERVAL", "5m"),
	}
	err = decoder.Decode(&config)
	if err != nil {
		logger.Fatal("Failed to decode config file: %v", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	if v := os.Getenv(brokerKeyENV); v != "" {
		config.Broker.APIKey = v
	}
	if v := os.Getenv(brokerSecretENV); v != "" {
		config.Broker.APISecret = v
	}

	if config.Broker.BaseURL == "" {
		// только live; paper-эндпоинт сюда подставлять нельзя
		config.Broker.BaseURL = "https://api.alpaca.markets"
	}
	if config.MarketData.BaseURL == "" {
		config.MarketData.BaseURL = "https://data.alpaca.markets"
	}
	if config.MarketData.StreamURL == "" {
		config.MarketData.StreamURL = "wss://stream.data.alpaca.markets/v2/iex"
	}
	if config.Service.HealthAddr == "" {
		config.Service.HealthAddr = ":8080"
	}

	return &config, nil
}

// DefaultRuntime — стартовый снапшот рантайм-конфига из дефолтов.
func (c *Config) DefaultRuntime() models.Runtime {
	return models.Runtime{
		GateThreshold:     c.DefaultGateThreshold,
		WModel:            c.DefaultWModel,
		WSent:             c.DefaultWSent,
		SpreadWideHintBps: c.DefaultSpreadWide,
		GateBuffer:        c.DefaultGateBuffer,
		Interval:          c.DefaultInterval,
		Risk: models.RiskSettings{
			StopLossPct:         c.DefaultStopLossPct,
			StopLimitOffsetBps:  c.DefaultStopLimitOffsetBps,
			SlippageBps:         c.DefaultSlippageBps,
			SpreadMaxBps:        c.DefaultSpreadMaxBps,
			ReplaceBpsThreshold: c.DefaultReplaceBpsThreshold,
			ReplaceMinInterval:  c.DefaultReplaceMinInterval,
			ReplaceMaxCount:     c.DefaultReplaceMaxCount,
			ReplaceCooldownMin:  c.DefaultReplaceCooldownMin,
			ReplaceCooldownMax:  c.DefaultReplaceCooldownMax,
			FokWindow:           c.DefaultFokWindow,
			FokMaxWindows:       c.DefaultFokMaxWindows,
		},
		Session: models.SessionToggles{
			Pre:   c.DefaultSessionPre,
			RTH:   c.DefaultSessionRTH,
			After: c.DefaultSessionAfter,
		},
	}
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
