package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is empty because every binding carries the full LOVEPAGE_ prefix.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Storage      StorageConfig
	Stripe       StripeConfig
	PayPal       PayPalConfig
	MercadoPago  MercadoPagoConfig
	Retention    RetentionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LOVEPAGE_APP_ENV" required:"true"`
	Port         string `envconfig:"LOVEPAGE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOVEPAGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOVEPAGE_LOG_WARN_STACK" default:"false"`
	PublicOrigin string `envconfig:"LOVEPAGE_PUBLIC_ORIGIN" default:"https://lovepage.app"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LOVEPAGE_DB_DSN"`
	Driver string `envconfig:"LOVEPAGE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"LOVEPAGE_DB_HOST"`
	Port     int    `envconfig:"LOVEPAGE_DB_PORT" default:"5432"`
	User     string `envconfig:"LOVEPAGE_DB_USER"`
	Password string `envconfig:"LOVEPAGE_DB_PASSWORD"`
	Name     string `envconfig:"LOVEPAGE_DB_NAME"`
	SSLMode  string `envconfig:"LOVEPAGE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOVEPAGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOVEPAGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOVEPAGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOVEPAGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either LOVEPAGE_DB_DSN or host/user/name settings are required")
	}
	userInfo := url.User(d.User)
	if d.Password != "" {
		userInfo = url.UserPassword(d.User, d.Password)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"LOVEPAGE_REDIS_URL" required:"true"`
	Password     string        `envconfig:"LOVEPAGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOVEPAGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOVEPAGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOVEPAGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOVEPAGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOVEPAGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOVEPAGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LOVEPAGE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LOVEPAGE_JWT_ISSUER" default:"lovepage"`
	ExpirationMinutes int    `envconfig:"LOVEPAGE_JWT_EXPIRATION_MINUTES" default:"10080"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LOVEPAGE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"LOVEPAGE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"LOVEPAGE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"LOVEPAGE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"LOVEPAGE_GCS_BUCKET_NAME" required:"true"`
}

// StorageConfig names the temporary and permanent object roots. A media path
// under TempRoot has not been promoted yet.
type StorageConfig struct {
	TempRoot      string `envconfig:"LOVEPAGE_STORAGE_TEMP_ROOT" default:"temp"`
	PermanentRoot string `envconfig:"LOVEPAGE_STORAGE_PERMANENT_ROOT" default:"perm"`
}

type StripeConfig struct {
	APIKey   string `envconfig:"LOVEPAGE_STRIPE_API_KEY"`
	Secret   string `envconfig:"LOVEPAGE_STRIPE_WEBHOOK_SECRET"`
	Env      string `envconfig:"LOVEPAGE_STRIPE_ENV" default:"test"`
	Currency string `envconfig:"LOVEPAGE_STRIPE_CURRENCY" default:"USD"`
}

func (s StripeConfig) Environment() string {
	return s.Env
}

type PayPalConfig struct {
	ClientID  string `envconfig:"LOVEPAGE_PAYPAL_CLIENT_ID"`
	Secret    string `envconfig:"LOVEPAGE_PAYPAL_SECRET"`
	Env       string `envconfig:"LOVEPAGE_PAYPAL_ENV" default:"sandbox"`
	Currency  string `envconfig:"LOVEPAGE_PAYPAL_CURRENCY" default:"USD"`
	BrandName string `envconfig:"LOVEPAGE_PAYPAL_BRAND_NAME" default:"LovePage"`
}

type MercadoPagoConfig struct {
	AccessToken   string `envconfig:"LOVEPAGE_MERCADOPAGO_ACCESS_TOKEN"`
	WebhookSecret string `envconfig:"LOVEPAGE_MERCADOPAGO_WEBHOOK_SECRET"`
	Currency      string `envconfig:"LOVEPAGE_MERCADOPAGO_CURRENCY" default:"BRL"`
}

type RetentionConfig struct {
	StaleDraftMediaDays int           `envconfig:"LOVEPAGE_RETENTION_STALE_DRAFT_MEDIA_DAYS" default:"14"`
	SweepInterval       time.Duration `envconfig:"LOVEPAGE_RETENTION_SWEEP_INTERVAL" default:"24h"`
}
