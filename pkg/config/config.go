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
	FeatureFlags FeatureFlagsConfig
	Orders       OrdersConfig
	PlanLimit    PlanLimitConfig
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
	Env          string `envconfig:"IXASALES_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"IXASALES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"IXASALES_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"IXASALES_DB_DSN"`
	Driver string `envconfig:"IXASALES_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"IXASALES_DB_HOST"`
	LegacyPort     int    `envconfig:"IXASALES_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"IXASALES_DB_USER"`
	LegacyPassword string `envconfig:"IXASALES_DB_PASSWORD"`
	LegacyName     string `envconfig:"IXASALES_DB_NAME"`
	LegacySSLMode  string `envconfig:"IXASALES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"IXASALES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"IXASALES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"IXASALES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"IXASALES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"IXASALES_REDIS_URL"`
	Address      string        `envconfig:"IXASALES_REDIS_ADDR"`
	Password     string        `envconfig:"IXASALES_REDIS_PASSWORD"`
	DB           int           `envconfig:"IXASALES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"IXASALES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"IXASALES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"IXASALES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"IXASALES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"IXASALES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"IXASALES_AUTO_MIGRATE" default:"false"`
}

type OrdersConfig struct {
	// MaxLineQty caps a single order line; larger requests are rejected
	// during stock validation.
	MaxLineQty int `envconfig:"IXASALES_ORDERS_MAX_LINE_QTY" default:"1000"`
	// PriceEpsilon is the tolerance used when comparing a caller's price
	// snapshot against the current product price.
	PriceEpsilon string `envconfig:"IXASALES_ORDERS_PRICE_EPSILON" default:"0.01"`
}

type PlanLimitConfig struct {
	// MonthlyOrders of zero means unlimited.
	MonthlyOrders int64         `envconfig:"IXASALES_PLAN_LIMIT_MONTHLY_ORDERS" default:"0"`
	CounterTTL    time.Duration `envconfig:"IXASALES_PLAN_LIMIT_COUNTER_TTL" default:"1080h"`
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
