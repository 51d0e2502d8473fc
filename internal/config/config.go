package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あればPOSTGRES_*より優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int

	JWTSecret string // Supabaseの JWT secret

	StripeSecretKey     string
	StripeWebhookSecret string
	StoreCurrency       string // brl

	RedisAddr       string // 空ならカートはメモリ
	KafkaBrokers    string // 空ならイベントはログのみ
	KafkaOrderTopic string

	GoEnv    string // dev/prod
	FEURL    string // フロントURL（CORS）
	LogLevel string

	PaymentRatePerSec float64
	PaymentRateBurst  int
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod" || c.GoEnv == "production"
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),

		JWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StoreCurrency:       strings.ToLower(getenv("STORE_CURRENCY", "brl")),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		KafkaBrokers:    os.Getenv("KAFKA_BROKERS"),
		KafkaOrderTopic: getenv("KAFKA_ORDER_TOPIC", "oifit-orders"),

		GoEnv:    os.Getenv("GO_ENV"),
		FEURL:    os.Getenv("FE_URL"),
		LogLevel: getenv("LOG_LEVEL", "info"),
	}

	//DATABASE_URLが無い時だけPOSTGRES_*を見る
	if cfg.DatabaseURL == "" {
		pgPort, err := mustAtoi("POSTGRES_PORT")
		if err != nil {
			return Config{}, err
		}
		cfg.PostgresPort = pgPort
		for key, v := range map[string]string{
			"POSTGRES_USER":     cfg.PostgresUser,
			"POSTGRES_PASSWORD": cfg.PostgresPassword,
			"POSTGRES_DB":       cfg.PostgresDB,
			"POSTGRES_HOST":     cfg.PostgresHost,
		} {
			if v == "" {
				return Config{}, fmt.Errorf("%s is required", key)
			}
		}
	}

	rps, err := atofDefault("PAYMENT_RATE_PER_SEC", 1)
	if err != nil {
		return Config{}, err
	}
	cfg.PaymentRatePerSec = rps

	burst, err := atoiDefault("PAYMENT_RATE_BURST", 3)
	if err != nil {
		return Config{}, err
	}
	cfg.PaymentRateBurst = burst

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if cfg.StripeSecretKey == "" {
		return Config{}, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if cfg.StripeWebhookSecret == "" {
		return Config{}, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.FEURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
	}

	return cfg, nil
}

// DSNはgorm用の接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, getenv("POSTGRES_SSLMODE", "disable"),
	)
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func atoiDefault(key string, def int) (int, error) {
	if os.Getenv(key) == "" {
		return def, nil
	}
	return mustAtoi(key)
}

func atofDefault(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return f, nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
