package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Cart          CartConfig
	Checkout      CheckoutConfig
	Storage       StorageConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"AREPABUELAS_APP_ENV" required:"true"`
	Port         string `envconfig:"AREPABUELAS_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"AREPABUELAS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AREPABUELAS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AREPABUELAS_DB_DSN"`
	Driver string `envconfig:"AREPABUELAS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AREPABUELAS_DB_HOST"`
	LegacyPort     int    `envconfig:"AREPABUELAS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AREPABUELAS_DB_USER"`
	LegacyPassword string `envconfig:"AREPABUELAS_DB_PASSWORD"`
	LegacyName     string `envconfig:"AREPABUELAS_DB_NAME"`
	LegacySSLMode  string `envconfig:"AREPABUELAS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AREPABUELAS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AREPABUELAS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AREPABUELAS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AREPABUELAS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AREPABUELAS_REDIS_URL"`
	Address      string        `envconfig:"AREPABUELAS_REDIS_ADDR"`
	Password     string        `envconfig:"AREPABUELAS_REDIS_PASSWORD"`
	DB           int           `envconfig:"AREPABUELAS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AREPABUELAS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AREPABUELAS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AREPABUELAS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AREPABUELAS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AREPABUELAS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig drives session token minting. The 20 minute default matches the
// fixed session window the storefront enforces client-side.
type JWTConfig struct {
	Secret            string `envconfig:"AREPABUELAS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AREPABUELAS_JWT_ISSUER" default:"arepabuelas"`
	ExpirationMinutes int    `envconfig:"AREPABUELAS_JWT_EXPIRATION_MINUTES" default:"20"`
}

func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AREPABUELAS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AREPABUELAS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AREPABUELAS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AREPABUELAS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AREPABUELAS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"AREPABUELAS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"AREPABUELAS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"AREPABUELAS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"AREPABUELAS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"AREPABUELAS_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"AREPABUELAS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// CartConfig holds the cart time-to-live; an unpurchased cart older than TTL
// is treated as empty.
type CartConfig struct {
	TTLMinutes int `envconfig:"AREPABUELAS_CART_TTL_MINUTES" default:"20"`
	MaxQty     int `envconfig:"AREPABUELAS_CART_MAX_QTY" default:"10"`
}

func (c CartConfig) TTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

type CheckoutConfig struct {
	IdempotencyTTL time.Duration `envconfig:"AREPABUELAS_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type StorageConfig struct {
	Endpoint  string `envconfig:"AREPABUELAS_STORAGE_ENDPOINT" required:"true"`
	AccessKey string `envconfig:"AREPABUELAS_STORAGE_ACCESS_KEY"`
	SecretKey string `envconfig:"AREPABUELAS_STORAGE_SECRET_KEY"`
	Bucket    string `envconfig:"AREPABUELAS_STORAGE_BUCKET" default:"arepabuelas-users"`
	UseSSL    bool   `envconfig:"AREPABUELAS_STORAGE_USE_SSL" default:"false"`
	PublicURL string `envconfig:"AREPABUELAS_STORAGE_PUBLIC_URL"`

	MaxUploadMB int `envconfig:"AREPABUELAS_STORAGE_MAX_UPLOAD_MB" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AREPABUELAS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		"AREPABUELAS_DB_HOST": db.LegacyHost,
		"AREPABUELAS_DB_USER": db.LegacyUser,
		"AREPABUELAS_DB_NAME": db.LegacyName,
	}
	for _, key := range []string{"AREPABUELAS_DB_HOST", "AREPABUELAS_DB_USER", "AREPABUELAS_DB_NAME"} {
		if legacyValues[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either AREPABUELAS_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
