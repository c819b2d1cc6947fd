package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix  = "TAVOLA"
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TAVOLA_DB_DSN"
	EnvDBHost = "TAVOLA_DB_HOST"
	EnvDBUser = "TAVOLA_DB_USER"
	EnvDBName = "TAVOLA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Throttle     ThrottleConfig
	Catalog      CatalogConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TAVOLA_APP_ENV" required:"true"`
	Port         string `envconfig:"TAVOLA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TAVOLA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TAVOLA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TAVOLA_DB_DSN"`
	Driver string `envconfig:"TAVOLA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TAVOLA_DB_HOST"`
	LegacyPort     int    `envconfig:"TAVOLA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TAVOLA_DB_USER"`
	LegacyPassword string `envconfig:"TAVOLA_DB_PASSWORD"`
	LegacyName     string `envconfig:"TAVOLA_DB_NAME"`
	LegacySSLMode  string `envconfig:"TAVOLA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TAVOLA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TAVOLA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TAVOLA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TAVOLA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TAVOLA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TAVOLA_REDIS_ADDR"`
	Password     string        `envconfig:"TAVOLA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TAVOLA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TAVOLA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TAVOLA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TAVOLA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TAVOLA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TAVOLA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TAVOLA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TAVOLA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TAVOLA_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"TAVOLA_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TAVOLA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TAVOLA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TAVOLA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TAVOLA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TAVOLA_ARGON_KEY_LEN" default:"32"`
}

// ThrottleConfig tunes the per-user fixed-window request limiter.
type ThrottleConfig struct {
	Window      time.Duration `envconfig:"TAVOLA_THROTTLE_WINDOW" default:"1m"`
	UserLimit   int           `envconfig:"TAVOLA_THROTTLE_USER_LIMIT" default:"120"`
	AnonIPLimit int           `envconfig:"TAVOLA_THROTTLE_ANON_IP_LIMIT" default:"30"`
}

type CatalogConfig struct {
	// OpenCategoryCreate lets any authenticated caller create categories;
	// when false, category creation is manager/admin only.
	OpenCategoryCreate bool `envconfig:"TAVOLA_CATALOG_OPEN_CATEGORY_CREATE" default:"false"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TAVOLA_AUTO_MIGRATE" default:"false"`
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
