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
	Networks      NetworksConfig
	Cron          CronConfig
	Settings      SettingsConfig
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
	Env          string `envconfig:"ADLEDGER_APP_ENV" required:"true"`
	Port         string `envconfig:"ADLEDGER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ADLEDGER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ADLEDGER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ADLEDGER_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ADLEDGER_DB_DSN"`
	Driver string `envconfig:"ADLEDGER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ADLEDGER_DB_HOST"`
	LegacyPort     int    `envconfig:"ADLEDGER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ADLEDGER_DB_USER"`
	LegacyPassword string `envconfig:"ADLEDGER_DB_PASSWORD"`
	LegacyName     string `envconfig:"ADLEDGER_DB_NAME"`
	LegacySSLMode  string `envconfig:"ADLEDGER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ADLEDGER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ADLEDGER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ADLEDGER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ADLEDGER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ADLEDGER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ADLEDGER_REDIS_ADDR"`
	Password     string        `envconfig:"ADLEDGER_REDIS_PASSWORD"`
	DB           int           `envconfig:"ADLEDGER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ADLEDGER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ADLEDGER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ADLEDGER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ADLEDGER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ADLEDGER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ADLEDGER_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ADLEDGER_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ADLEDGER_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ADLEDGER_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ADLEDGER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ADLEDGER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ADLEDGER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ADLEDGER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ADLEDGER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ADLEDGER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ADLEDGER_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ADLEDGER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ADLEDGER_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ADLEDGER_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ADLEDGER_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ADLEDGER_AUTO_MIGRATE" default:"false"`
}

// NetworksConfig carries OAuth client settings shared by ad/CPA network integrations.
type NetworksConfig struct {
	OAuthClientID     string        `envconfig:"ADLEDGER_NETWORKS_OAUTH_CLIENT_ID"`
	OAuthClientSecret string        `envconfig:"ADLEDGER_NETWORKS_OAUTH_CLIENT_SECRET"`
	OAuthAuthURL      string        `envconfig:"ADLEDGER_NETWORKS_OAUTH_AUTH_URL"`
	OAuthTokenURL     string        `envconfig:"ADLEDGER_NETWORKS_OAUTH_TOKEN_URL"`
	OAuthRedirectURL  string        `envconfig:"ADLEDGER_NETWORKS_OAUTH_REDIRECT_URL"`
	CheckTimeout      time.Duration `envconfig:"ADLEDGER_NETWORKS_CHECK_TIMEOUT" default:"10s"`
	RefreshLeeway     time.Duration `envconfig:"ADLEDGER_NETWORKS_REFRESH_LEEWAY" default:"1h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"ADLEDGER_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"ADLEDGER_CRON_LOCK_TTL" default:"55m"`
}

// SettingsConfig tunes the debounced preference auto-save writer.
type SettingsConfig struct {
	AutoSaveDelay time.Duration `envconfig:"ADLEDGER_SETTINGS_AUTOSAVE_DELAY" default:"2s"`
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
