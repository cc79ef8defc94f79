package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env  string `mapstructure:"app_env"`
	Port string `mapstructure:"port"`

	DBHost     string `mapstructure:"db_host"`
	DBPort     string `mapstructure:"db_port"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name"`
	DBSSLMode  string `mapstructure:"db_sslmode"`

	JWTSecret string `mapstructure:"jwt_secret"`

	PublicBaseURL string        `mapstructure:"public_base_url"`
	AppBaseURL    string        `mapstructure:"app_base_url"`
	TokenValidity time.Duration `mapstructure:"payment_token_validity"`
	Currency      string        `mapstructure:"payment_currency"`

	RazorpayKeyID         string `mapstructure:"razorpay_key_id"`
	RazorpayKeySecret     string `mapstructure:"razorpay_key_secret"`
	RazorpayWebhookSecret string `mapstructure:"razorpay_webhook_secret"`

	XenditSecretKey     string `mapstructure:"xendit_secret_key"`
	XenditCallbackToken string `mapstructure:"xendit_callback_token"`

	DirectProvider  string `mapstructure:"gateway_direct_provider"`
	GatewayProvider string `mapstructure:"gateway_razorpay_provider"`

	MailDriver        string `mapstructure:"mail_driver"`
	MailSender        string `mapstructure:"mail_sender"`
	GraphTenantID     string `mapstructure:"graph_tenant_id"`
	GraphClientID     string `mapstructure:"graph_client_id"`
	GraphClientSecret string `mapstructure:"graph_client_secret"`
	SMTPHost          string `mapstructure:"smtp_host"`
	SMTPPort          int    `mapstructure:"smtp_port"`
	SMTPUsername      string `mapstructure:"smtp_username"`
	SMTPPassword      string `mapstructure:"smtp_password"`
	SupportEmail      string `mapstructure:"support_email"`
	InstituteName     string `mapstructure:"institute_name"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	PayRateLimit   int `mapstructure:"pay_rate_limit"`
	LoginRateLimit int `mapstructure:"login_rate_limit"`
}

var defaults = map[string]interface{}{
	"app_env":                   "development",
	"port":                      "8080",
	"db_host":                   "localhost",
	"db_port":                   "5432",
	"db_sslmode":                "disable",
	"public_base_url":           "http://localhost:8080",
	"app_base_url":              "http://localhost:3000",
	"payment_token_validity":    "168h",
	"payment_currency":          "INR",
	"gateway_direct_provider":   "razorpay",
	"gateway_razorpay_provider": "razorpay",
	"mail_driver":               "graph",
	"smtp_port":                 587,
	"institute_name":            "Admissions Office",
	"redis_db":                  0,
	"pay_rate_limit":            30,
	"login_rate_limit":          10,
}

// LoadConfig reads the environment, optionally layered over a YAML file.
// Keys are the lower-cased environment variable names.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// AutomaticEnv only covers keys viper already knows about.
	for _, key := range configKeys() {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate reports settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	var missing []string
	for name, value := range map[string]string{
		"JWT_SECRET":              c.JWTSecret,
		"DB_NAME":                 c.DBName,
		"RAZORPAY_WEBHOOK_SECRET": c.RazorpayWebhookSecret,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func configKeys() []string {
	keys := []string{
		"db_user", "db_password", "db_name", "jwt_secret",
		"razorpay_key_id", "razorpay_key_secret", "razorpay_webhook_secret",
		"xendit_secret_key", "xendit_callback_token",
		"mail_sender", "graph_tenant_id", "graph_client_id", "graph_client_secret",
		"smtp_host", "smtp_username", "smtp_password", "support_email",
		"redis_addr", "redis_password",
	}
	for key := range defaults {
		keys = append(keys, key)
	}
	return keys
}
