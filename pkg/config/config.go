package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "CAMPUSTRADE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Uploads  UploadsConfig
	Catalog  CatalogConfig
	Features FeatureFlagsConfig
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
	Env      string `envconfig:"CAMPUSTRADE_APP_ENV" required:"true"`
	Port     string `envconfig:"CAMPUSTRADE_APP_PORT" default:"8080"`
	LogLevel string `envconfig:"CAMPUSTRADE_LOG_LEVEL" default:"info"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CAMPUSTRADE_DB_DSN"`
	Driver string `envconfig:"CAMPUSTRADE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CAMPUSTRADE_DB_HOST"`
	Port     int    `envconfig:"CAMPUSTRADE_DB_PORT" default:"5432"`
	User     string `envconfig:"CAMPUSTRADE_DB_USER"`
	Password string `envconfig:"CAMPUSTRADE_DB_PASSWORD"`
	Name     string `envconfig:"CAMPUSTRADE_DB_NAME"`
	SSLMode  string `envconfig:"CAMPUSTRADE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAMPUSTRADE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAMPUSTRADE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAMPUSTRADE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAMPUSTRADE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CAMPUSTRADE_REDIS_URL"`
	Address      string        `envconfig:"CAMPUSTRADE_REDIS_ADDR"`
	Password     string        `envconfig:"CAMPUSTRADE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAMPUSTRADE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAMPUSTRADE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAMPUSTRADE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAMPUSTRADE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAMPUSTRADE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAMPUSTRADE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CAMPUSTRADE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CAMPUSTRADE_JWT_ISSUER" default:"campustrade"`
	ExpirationMinutes int    `envconfig:"CAMPUSTRADE_JWT_EXPIRATION_MINUTES" default:"30"`

	// Session lifetime without and with the "remember me" flag.
	SessionTTLMinutes  int `envconfig:"CAMPUSTRADE_SESSION_TTL_MINUTES" default:"720"`
	RememberTTLMinutes int `envconfig:"CAMPUSTRADE_SESSION_REMEMBER_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the refresh session lifetime for the remember choice.
func (j JWTConfig) SessionTTL(remember bool) time.Duration {
	minutes := j.SessionTTLMinutes
	if remember {
		minutes = j.RememberTTLMinutes
	}
	if minutes <= 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CAMPUSTRADE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CAMPUSTRADE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CAMPUSTRADE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CAMPUSTRADE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CAMPUSTRADE_ARGON_KEY_LEN" default:"32"`
}

type UploadsConfig struct {
	Dir               string `envconfig:"CAMPUSTRADE_UPLOADS_DIR" default:"uploads"`
	MaxUploadMB       int    `envconfig:"CAMPUSTRADE_MAX_UPLOAD_MB" default:"16"`
	AllowedExtensions string `envconfig:"CAMPUSTRADE_UPLOAD_EXTENSIONS" default:"png,jpg,jpeg,gif"`
}

// MaxUploadBytes converts the configured megabyte cap to bytes.
func (u UploadsConfig) MaxUploadBytes() int64 {
	return int64(u.MaxUploadMB) << 20
}

// Extensions returns the normalized allow-list of image extensions.
func (u UploadsConfig) Extensions() []string {
	parts := strings.Split(u.AllowedExtensions, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

type CatalogConfig struct {
	PageSize int `envconfig:"CAMPUSTRADE_CATALOG_PAGE_SIZE" default:"12"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CAMPUSTRADE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CAMPUSTRADE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		return fmt.Errorf("CAMPUSTRADE_DB_DSN is required for the sqlite driver")
	}

	missing := []string{}
	for name, value := range map[string]string{
		"CAMPUSTRADE_DB_HOST": db.Host,
		"CAMPUSTRADE_DB_USER": db.User,
		"CAMPUSTRADE_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either CAMPUSTRADE_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
