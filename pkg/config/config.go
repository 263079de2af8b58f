package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "PARKLY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PARKLY_DB_DSN"
	EnvDBHost = "PARKLY_DB_HOST"
	EnvDBUser = "PARKLY_DB_USER"
	EnvDBName = "PARKLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Booking       BookingConfig
	Notifier      NotifierConfig
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
	Env          string `envconfig:"PARKLY_APP_ENV" required:"true"`
	Port         string `envconfig:"PARKLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PARKLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PARKLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PARKLY_DB_DSN"`
	Driver string `envconfig:"PARKLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PARKLY_DB_HOST"`
	LegacyPort     int    `envconfig:"PARKLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PARKLY_DB_USER"`
	LegacyPassword string `envconfig:"PARKLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"PARKLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"PARKLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PARKLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PARKLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PARKLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PARKLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PARKLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PARKLY_REDIS_ADDR"`
	Password     string        `envconfig:"PARKLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"PARKLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PARKLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PARKLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PARKLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PARKLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PARKLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PARKLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PARKLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PARKLY_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"PARKLY_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session lifetime configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PARKLY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PARKLY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PARKLY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PARKLY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PARKLY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PARKLY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"PARKLY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PARKLY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"PARKLY_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"PARKLY_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"PARKLY_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PARKLY_AUTO_MIGRATE" default:"false"`
}

type BookingConfig struct {
	// EarlyStartGrace is how long before a booking's start time a session
	// against it may begin.
	EarlyStartGrace time.Duration `envconfig:"PARKLY_BOOKING_EARLY_START_GRACE" default:"5m"`
}

type NotifierConfig struct {
	SendgridAPIKey string `envconfig:"PARKLY_SENDGRID_API_KEY"`
	FromEmail      string `envconfig:"PARKLY_NOTIFIER_FROM_EMAIL" default:"no-reply@parkly.app"`
	FromName       string `envconfig:"PARKLY_NOTIFIER_FROM_NAME" default:"Parkly"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
