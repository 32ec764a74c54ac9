package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Admin        AdminConfig
	Gate         GateConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Admin.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ZULAL_APP_ENV" required:"true"`
	Port         string `envconfig:"ZULAL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ZULAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ZULAL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ZULAL_DB_DSN"`
	Driver string `envconfig:"ZULAL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ZULAL_DB_HOST"`
	LegacyPort     int    `envconfig:"ZULAL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ZULAL_DB_USER"`
	LegacyPassword string `envconfig:"ZULAL_DB_PASSWORD"`
	LegacyName     string `envconfig:"ZULAL_DB_NAME"`
	LegacySSLMode  string `envconfig:"ZULAL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ZULAL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ZULAL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ZULAL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ZULAL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ZULAL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ZULAL_REDIS_ADDR"`
	Password     string        `envconfig:"ZULAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"ZULAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ZULAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ZULAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ZULAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ZULAL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ZULAL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ZULAL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ZULAL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ZULAL_JWT_EXPIRATION_MINUTES" required:"true"`
}

// SessionTTL returns the lifetime of a minted session token.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// AdminConfig designates the single platform-administrator identity.
type AdminConfig struct {
	Email      string `envconfig:"ZULAL_ADMIN_EMAIL" required:"true"`
	TenantName string `envconfig:"ZULAL_ADMIN_TENANT_NAME" default:"Zulal Admin"`
	TenantSlug string `envconfig:"ZULAL_ADMIN_TENANT_SLUG" default:"zulal-admin"`
}

func (a AdminConfig) validate() error {
	if !strings.Contains(a.Email, "@") {
		return fmt.Errorf("%s must be an email address", EnvAdminEmail)
	}
	return nil
}

// IsAdminEmail reports whether the email belongs to the platform administrator.
func (a AdminConfig) IsAdminEmail(email string) bool {
	return strings.EqualFold(strings.TrimSpace(email), a.Email)
}

// GateConfig holds the redirect targets used by the access gate.
type GateConfig struct {
	SignInPath string `envconfig:"ZULAL_GATE_SIGNIN_PATH" default:"/signin"`
	HomePath   string `envconfig:"ZULAL_GATE_HOME_PATH" default:"/"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ZULAL_AUTO_MIGRATE" default:"false"`
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
