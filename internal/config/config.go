package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type CaseConfig struct {
	Env            string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer     `yaml:"http_server"`
	CaseDB         `yaml:"case_db"`
	LogConfig      `yaml:"log_config"`
	Lightning      `yaml:"lightning"`
	KafkaService   `yaml:"kafka-service"`
	Redis          `yaml:"redis"`
	Auth           `yaml:"auth"`
	Market         `yaml:"market"`
	PaymentWatcher `yaml:"payment_watcher"`
}

type HTTPServer struct {
	Host         string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"30s"`
}

type CaseDB struct {
	Dsn            string `yaml:"dsn" env:"CASE_DB_DSN" env-required:"true"`
	MigrationsPath string `yaml:"migrations_path" env:"CASE_DB_MIGRATIONS_PATH" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type Lightning struct {
	Host           string        `yaml:"host" env:"LND_HOST" env-default:"localhost"`
	Port           string        `yaml:"port" env:"LND_PORT" env-default:"10009"`
	TLSCertPath    string        `yaml:"tls_cert_path" env:"LND_TLS_CERT_PATH"`
	MacaroonPath   string        `yaml:"macaroon_path" env:"LND_MACAROON_PATH"`
	InvoiceTimeout time.Duration `yaml:"invoice_timeout" env-default:"10s"`
}

type KafkaService struct {
	Host            string `yaml:"host" env:"KAFKA_HOST" env-default:"localhost"`
	Port            string `yaml:"port" env:"KAFKA_PORT" env-default:"9092"`
	CaseTopic       string `yaml:"case_topic" env-default:"case-events"`
	SettlementTopic string `yaml:"settlement_topic" env-default:"invoice-settlements"`
	GroupID         string `yaml:"group_id" env-default:"case-service"`
}

type Redis struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env-default:"0"`
	DedupTTL time.Duration `yaml:"dedup_ttl" env-default:"24h"`
}

type Auth struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
}

type Market struct {
	MaxUnpaidCases int64         `yaml:"max_unpaid_cases" env:"MARKET_MAX_UNPAID_CASES" env-default:"100"`
	InvoiceExpiry  time.Duration `yaml:"invoice_expiry" env-default:"1h"`
	SweepInterval  time.Duration `yaml:"sweep_interval" env-default:"30s"`
	SweepBatchSize int           `yaml:"sweep_batch_size" env-default:"200"`
}

type PaymentWatcher struct {
	// Source is "lnd" or "kafka".
	Source string `yaml:"source" env:"PAYMENT_WATCHER_SOURCE" env-default:"lnd"`
}

func (c *CaseConfig) HTTPAddr() string {
	return fmt.Sprintf("%s:%s", c.HTTPServer.Host, c.HTTPServer.Port)
}

func (c *CaseConfig) KafkaBrokers() []string {
	return []string{fmt.Sprintf("%s:%s", c.KafkaService.Host, c.KafkaService.Port)}
}

func (c *CaseConfig) LightningAddr() string {
	return fmt.Sprintf("%s:%s", c.Lightning.Host, c.Lightning.Port)
}

func Load(configPath string) (*CaseConfig, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	var cfg CaseConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch cfg.PaymentWatcher.Source {
	case "lnd", "kafka":
	default:
		return nil, fmt.Errorf("unknown payment watcher source %q", cfg.PaymentWatcher.Source)
	}
	if cfg.Market.MaxUnpaidCases <= 0 {
		return nil, fmt.Errorf("market.max_unpaid_cases must be positive")
	}
	if cfg.Market.InvoiceExpiry <= 0 {
		return nil, fmt.Errorf("market.invoice_expiry must be positive")
	}
	if cfg.Market.SweepInterval <= 0 {
		return nil, fmt.Errorf("market.sweep_interval must be positive")
	}
	if cfg.Market.SweepBatchSize <= 0 {
		return nil, fmt.Errorf("market.sweep_batch_size must be positive")
	}

	return &cfg, nil
}

func MustLoad() *CaseConfig {
	configPath := os.Getenv("CASE_CONFIG_PATH")
	if configPath == "" {
		log.Fatalf("CASE_CONFIG_PATH was not found\n")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("%v\n", err)
	}

	return cfg
}
