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
	Sales        SalesConfig
	FeatureFlags FeatureFlagsConfig
	Projection   ProjectionConfig
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
	Env          string `envconfig:"GARAGEPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"GARAGEPOS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GARAGEPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GARAGEPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GARAGEPOS_DB_DSN"`
	Driver string `envconfig:"GARAGEPOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GARAGEPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"GARAGEPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GARAGEPOS_DB_USER"`
	LegacyPassword string `envconfig:"GARAGEPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"GARAGEPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"GARAGEPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GARAGEPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GARAGEPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GARAGEPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GARAGEPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GARAGEPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GARAGEPOS_REDIS_ADDR"`
	Password     string        `envconfig:"GARAGEPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"GARAGEPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GARAGEPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GARAGEPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GARAGEPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GARAGEPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GARAGEPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GARAGEPOS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GARAGEPOS_JWT_ISSUER" default:"garagepos"`
	ExpirationMinutes int    `envconfig:"GARAGEPOS_JWT_EXPIRATION_MINUTES" default:"480"`
}

// TokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type SalesConfig struct {
	DefaultTaxPercent   float64 `envconfig:"GARAGEPOS_SALES_DEFAULT_TAX_PERCENT" default:"8.25"`
	InvoiceDueDays      int     `envconfig:"GARAGEPOS_SALES_INVOICE_DUE_DAYS" default:"30"`
	NumberPrefixSale    string  `envconfig:"GARAGEPOS_SALES_NUMBER_PREFIX" default:"SALE"`
	NumberPrefixInvoice string  `envconfig:"GARAGEPOS_INVOICE_NUMBER_PREFIX" default:"INV"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GARAGEPOS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GARAGEPOS_AUTO_MIGRATE" default:"false"`
}

type ProjectionConfig struct {
	Channel         string `envconfig:"GARAGEPOS_PROJECTION_CHANNEL" default:"garagepos-events"`
	RecentSalesSize int    `envconfig:"GARAGEPOS_PROJECTION_RECENT_SALES" default:"10"`
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
