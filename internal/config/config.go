package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	AppName     string
	DatabaseURL string
	DBPool      PoolConfig
	JWTSecret   string
	JWTTTL      time.Duration
	WebURL      string

	AdminEmail    string
	AdminPassword string

	Midtrans MidtransConfig
	SMTP     SMTPConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Webhook  WebhookConfig
	Sweep    SweepConfig
}

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type MidtransConfig struct {
	ServerKey       string
	SnapURL         string
	BaseURL         string
	Timeout         time.Duration
	VerifySignature bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseSSL   bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type WebhookConfig struct {
	DedupTTL time.Duration
}

type SweepConfig struct {
	Interval time.Duration // 0 disables the in-process sweeper
	MaxAge   time.Duration
}

var defaults = map[string]interface{}{
	"port":                      "3000",
	"app_name":                  "Course Commerce API",
	"web_url":                   "http://localhost:5173",
	"jwt_ttl":                   "24h",
	"admin_email":               "admin@example.com",
	"admin_password":            "admin123",
	"db_port":                   "5432",
	"db_max_open_conns":         25,
	"db_max_idle_conns":         10,
	"db_conn_max_lifetime":      "1h",
	"midtrans_url":              "https://app.sandbox.midtrans.com/snap/v1/transactions",
	"midtrans_base_url":         "https://api.sandbox.midtrans.com",
	"midtrans_timeout":          "10s",
	"midtrans_verify_signature": false,
	"smtp_port":                 587,
	"smtp_from_name":            "Jadipraktisi",
	"redis_db":                  0,
	"kafka_topic":               "course-commerce.transactions",
	"webhook_dedup_ttl":         "24h",
	"sweep_interval":            "0s",
	"sweep_max_age":             "12h",
}

// Load reads .env (if present), the process environment and an optional
// YAML file named by CONFIG_FILE. Environment wins over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Port:        v.GetString("port"),
		AppName:     v.GetString("app_name"),
		DatabaseURL: v.GetString("database_url"),
		DBPool: PoolConfig{
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
		},
		JWTSecret:   v.GetString("jwt_secret"),
		JWTTTL:      v.GetDuration("jwt_ttl"),
		WebURL:      strings.TrimRight(v.GetString("web_url"), "/"),

		AdminEmail:    v.GetString("admin_email"),
		AdminPassword: v.GetString("admin_password"),
		Midtrans: MidtransConfig{
			ServerKey:       v.GetString("midtrans_server_key"),
			SnapURL:         v.GetString("midtrans_url"),
			BaseURL:         strings.TrimRight(v.GetString("midtrans_base_url"), "/"),
			Timeout:         v.GetDuration("midtrans_timeout"),
			VerifySignature: v.GetBool("midtrans_verify_signature"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("smtp_host"),
			Port:     v.GetInt("smtp_port"),
			Username: v.GetString("smtp_username"),
			Password: v.GetString("smtp_password"),
			From:     v.GetString("smtp_from"),
			FromName: v.GetString("smtp_from_name"),
			UseSSL:   v.GetBool("smtp_use_ssl"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("kafka_brokers")),
			Topic:   v.GetString("kafka_topic"),
		},
		Webhook: WebhookConfig{
			DedupTTL: v.GetDuration("webhook_dedup_ttl"),
		},
		Sweep: SweepConfig{
			Interval: v.GetDuration("sweep_interval"),
			MaxAge:   v.GetDuration("sweep_max_age"),
		},
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Jakarta",
			v.GetString("db_host"),
			v.GetString("db_user"),
			v.GetString("db_password"),
			v.GetString("db_name"),
			v.GetString("db_port"),
		)
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
