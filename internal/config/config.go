package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"` // development, production, test
	} `yaml:"server"`

	Database struct {
		Driver       string `yaml:"driver"` // postgres, sqlite
		DSN          string `yaml:"url"`
		MaxOpenConns int    `yaml:"max_open_conns"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		Issuer string `yaml:"issuer"`
	} `yaml:"jwt"`

	Payment struct {
		Provider            string        `yaml:"provider"` // razorpay, stripe
		KeyID               string        `yaml:"key_id"`
		KeySecret           string        `yaml:"key_secret"` // общий секрет для HMAC подписи orderId|paymentId
		WebhookSecret       string        `yaml:"webhook_secret"`
		StripeSecretKey     string        `yaml:"stripe_secret_key"`
		StripeWebhookSecret string        `yaml:"stripe_webhook_secret"`
		Currency            string        `yaml:"currency"`
		Timeout             time.Duration `yaml:"timeout"`
	} `yaml:"payment"`

	Billing BillingConfig `yaml:"billing"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Generation struct {
		Endpoint string        `yaml:"endpoint"`
		APIKey   string        `yaml:"api_key"`
		Model    string        `yaml:"model"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"generation"`

	Workers struct {
		SweepInterval time.Duration `yaml:"sweep_interval"`
	} `yaml:"workers"`
}

// BillingConfig - политика кредитов и цен
type BillingConfig struct {
	StartingCredits     *int             `yaml:"starting_credits"` // nil = по умолчанию 1, явный 0 допустим
	FreeDailyLimit      int              `yaml:"free_daily_limit"`
	Timezone            string           `yaml:"timezone"`
	CreditUnitPrice     map[string]int64 `yaml:"credit_unit_price"` // валюта -> цена одного кредита в минорных единицах
	SubscriptionCredits int              `yaml:"subscription_credits"`
	SubscriptionDays    int              `yaml:"subscription_days"`
	UnlockDays          int              `yaml:"unlock_days"` // 0 = бессрочно
	PendingOrderTTL     time.Duration    `yaml:"pending_order_ttl"`
	ConflictRetries     int              `yaml:"conflict_retries"`
}

// StartingBalance - кредиты, которые получает новый аккаунт
func (b BillingConfig) StartingBalance() int64 {
	if b.StartingCredits == nil {
		return 1
	}
	return int64(*b.StartingCredits)
}

// Location возвращает часовой пояс, в котором считается "календарный день"
func (b BillingConfig) Location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

var AppConfig *Config

// LoadConfig загружает конфиг и завершает процесс при ошибке
func LoadConfig() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Load читает .env, затем yaml (если файл есть), затем переменные окружения
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
		}
	case os.IsNotExist(err) && os.Getenv("DATABASE_URL") != "":
		log.Println("Config file not found, loading from environment")
	default:
		return nil, fmt.Errorf("failed to open config file at %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&cfg.Server.Env, "APP_ENV")
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Payment.Provider, "PAYMENT_PROVIDER")
	setString(&cfg.Payment.KeyID, "RAZORPAY_KEY_ID")
	setString(&cfg.Payment.KeySecret, "RAZORPAY_KEY_SECRET")
	setString(&cfg.Payment.WebhookSecret, "RAZORPAY_WEBHOOK_SECRET")
	setString(&cfg.Payment.StripeSecretKey, "STRIPE_SECRET_KEY")
	setString(&cfg.Payment.StripeWebhookSecret, "STRIPE_WEBHOOK_SECRET")
	setString(&cfg.Generation.APIKey, "GENERATION_API_KEY")

	if port, err := strconv.Atoi(os.Getenv("SERVER_PORT")); err == nil {
		cfg.Server.Port = port
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Payment.Provider == "" {
		cfg.Payment.Provider = "razorpay"
	}
	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = "INR"
	}
	if cfg.Payment.Timeout == 0 {
		cfg.Payment.Timeout = 10 * time.Second
	}
	if cfg.Billing.StartingCredits == nil {
		starting := 1
		cfg.Billing.StartingCredits = &starting
	}
	if cfg.Billing.FreeDailyLimit == 0 {
		cfg.Billing.FreeDailyLimit = 1
	}
	if cfg.Billing.SubscriptionDays == 0 {
		cfg.Billing.SubscriptionDays = 30
	}
	if cfg.Billing.PendingOrderTTL == 0 {
		cfg.Billing.PendingOrderTTL = 24 * time.Hour
	}
	if cfg.Billing.ConflictRetries == 0 {
		cfg.Billing.ConflictRetries = 3
	}
	if len(cfg.Billing.CreditUnitPrice) == 0 {
		cfg.Billing.CreditUnitPrice = map[string]int64{"INR": 900}
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = 60 * time.Second
	}
	if cfg.Workers.SweepInterval == 0 {
		cfg.Workers.SweepInterval = 15 * time.Minute
	}
}

// Validate проверяет то, без чего платежи работать не могут
func (c *Config) Validate() error {
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Payment.Provider {
	case "razorpay":
		if c.Payment.KeySecret == "" {
			return fmt.Errorf("payment.key_secret is required")
		}
	case "stripe":
		if c.Payment.StripeSecretKey == "" || c.Payment.KeySecret == "" {
			return fmt.Errorf("payment.stripe_secret_key and payment.key_secret are required")
		}
		if c.Payment.StripeWebhookSecret == "" {
			return fmt.Errorf("payment.stripe_webhook_secret is required")
		}
	default:
		return fmt.Errorf("unknown payment provider %q", c.Payment.Provider)
	}
	if c.Billing.StartingBalance() < 0 {
		return fmt.Errorf("billing.starting_credits must not be negative")
	}
	for currency, price := range c.Billing.CreditUnitPrice {
		if price <= 0 {
			return fmt.Errorf("billing.credit_unit_price[%s] must be positive", currency)
		}
	}
	if _, err := time.LoadLocation(c.Billing.Timezone); err != nil {
		return fmt.Errorf("invalid billing.timezone: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
