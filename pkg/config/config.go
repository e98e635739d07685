package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Reconciler    ReconcilerConfig
	Leaderboard   LeaderboardConfig
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
	Env          string `envconfig:"MEALBRIDGE_APP_ENV" required:"true"`
	Port         string `envconfig:"MEALBRIDGE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEALBRIDGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEALBRIDGE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MEALBRIDGE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MEALBRIDGE_DB_DSN"`
	Driver string `envconfig:"MEALBRIDGE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEALBRIDGE_DB_HOST"`
	LegacyPort     int    `envconfig:"MEALBRIDGE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEALBRIDGE_DB_USER"`
	LegacyPassword string `envconfig:"MEALBRIDGE_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEALBRIDGE_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEALBRIDGE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEALBRIDGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEALBRIDGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEALBRIDGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEALBRIDGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEALBRIDGE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEALBRIDGE_REDIS_ADDR"`
	Password     string        `envconfig:"MEALBRIDGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEALBRIDGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEALBRIDGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEALBRIDGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEALBRIDGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEALBRIDGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEALBRIDGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MEALBRIDGE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEALBRIDGE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MEALBRIDGE_JWT_EXPIRATION_MINUTES" required:"true"`
	RememberMeDays    int    `envconfig:"MEALBRIDGE_JWT_REMEMBER_ME_DAYS" default:"7"`
	SessionTTLMinutes int    `envconfig:"MEALBRIDGE_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns how long a session record stays valid in the session store.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

// RememberMeTTL returns the extended access-token lifetime for remember-me logins.
func (j JWTConfig) RememberMeTTL() time.Duration {
	if j.RememberMeDays <= 0 {
		return 0
	}
	return time.Duration(j.RememberMeDays) * 24 * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MEALBRIDGE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MEALBRIDGE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MEALBRIDGE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MEALBRIDGE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MEALBRIDGE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MEALBRIDGE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MEALBRIDGE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MEALBRIDGE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MEALBRIDGE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MEALBRIDGE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MEALBRIDGE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MEALBRIDGE_AUTO_MIGRATE" default:"false"`
}

type ReconcilerConfig struct {
	Interval    time.Duration `envconfig:"MEALBRIDGE_RECONCILER_INTERVAL" default:"1h"`
	LockTTL     time.Duration `envconfig:"MEALBRIDGE_RECONCILER_LOCK_TTL" default:"2h"`
	MetricsPort string        `envconfig:"MEALBRIDGE_RECONCILER_METRICS_PORT" default:"9091"`
}

type LeaderboardConfig struct {
	DefaultLimit int `envconfig:"MEALBRIDGE_LEADERBOARD_DEFAULT_LIMIT" default:"10"`
	MaxLimit     int `envconfig:"MEALBRIDGE_LEADERBOARD_MAX_LIMIT" default:"100"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	if db.LegacyHost == "" {
		missing = append(missing, "MEALBRIDGE_DB_HOST")
	}
	if db.LegacyUser == "" {
		missing = append(missing, "MEALBRIDGE_DB_USER")
	}
	if db.LegacyName == "" {
		missing = append(missing, "MEALBRIDGE_DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("database config incomplete: set MEALBRIDGE_DB_DSN or %s", strings.Join(missing, ", "))
	}

	var userInfo *url.Userinfo
	if db.LegacyPassword == "" {
		userInfo = url.User(db.LegacyUser)
	} else {
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
