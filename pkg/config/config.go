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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Cart          CartConfig
	Catalog       CatalogConfig
	Notify        NotifyConfig
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
	Env          string `envconfig:"VOLTLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"VOLTLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VOLTLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VOLTLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VOLTLINE_DB_DSN"`
	Driver string `envconfig:"VOLTLINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VOLTLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"VOLTLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VOLTLINE_DB_USER"`
	LegacyPassword string `envconfig:"VOLTLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"VOLTLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"VOLTLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VOLTLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VOLTLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VOLTLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VOLTLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VOLTLINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VOLTLINE_REDIS_ADDR"`
	Password     string        `envconfig:"VOLTLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"VOLTLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VOLTLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VOLTLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VOLTLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VOLTLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VOLTLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"VOLTLINE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"VOLTLINE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"VOLTLINE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"VOLTLINE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VOLTLINE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VOLTLINE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VOLTLINE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VOLTLINE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VOLTLINE_ARGON_KEY_LEN" default:"32"`
	MinLength        int `envconfig:"VOLTLINE_PASSWORD_MIN_LENGTH" default:"8"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"VOLTLINE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"VOLTLINE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"VOLTLINE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"VOLTLINE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"VOLTLINE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"VOLTLINE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CartConfig struct {
	SnapshotTTL time.Duration `envconfig:"VOLTLINE_CART_SNAPSHOT_TTL" default:"720h"`
}

type CatalogConfig struct {
	ListCacheTTL time.Duration `envconfig:"VOLTLINE_CATALOG_LIST_CACHE_TTL" default:"60s"`
}

type NotifyConfig struct {
	BaseURL string        `envconfig:"VOLTLINE_NOTIFY_BASE_URL"`
	Token   string        `envconfig:"VOLTLINE_NOTIFY_TOKEN"`
	Timeout time.Duration `envconfig:"VOLTLINE_NOTIFY_TIMEOUT" default:"10s"`
}

// Enabled reports whether the notification functions are configured at all.
// An unset base URL turns every dispatch into a logged no-op.
func (n NotifyConfig) Enabled() bool {
	return strings.TrimSpace(n.BaseURL) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VOLTLINE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VOLTLINE_AUTO_MIGRATE" default:"false"`
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
