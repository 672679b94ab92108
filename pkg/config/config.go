package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Uploads UploadConfig
	Images  ImageConfig
	Mailer  MailerConfig
	Flags   FeatureFlagsConfig
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
	Env          string `envconfig:"WL_APP_ENV" required:"true"`
	Port         string `envconfig:"WL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WL_DB_DSN"`
	Driver string `envconfig:"WL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WL_DB_HOST"`
	LegacyPort     int    `envconfig:"WL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WL_DB_USER"`
	LegacyPassword string `envconfig:"WL_DB_PASSWORD"`
	LegacyName     string `envconfig:"WL_DB_NAME"`
	LegacySSLMode  string `envconfig:"WL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WL_REDIS_URL"`
	Address      string        `envconfig:"WL_REDIS_ADDR"`
	Password     string        `envconfig:"WL_REDIS_PASSWORD"`
	DB           int           `envconfig:"WL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"WL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"WL_JWT_EXPIRATION_MINUTES" default:"60"`
}

type UploadConfig struct {
	Dir           string `envconfig:"WL_UPLOAD_DIR" default:"uploads"`
	MaxFileSizeMB int    `envconfig:"WL_MAX_FILE_SIZE_MB" default:"5"`
	MaxImages     int    `envconfig:"WL_MAX_IMAGES" default:"5"`
}

// MaxFileSizeBytes converts the configured megabyte cap into bytes.
func (u UploadConfig) MaxFileSizeBytes() int64 {
	return int64(u.MaxFileSizeMB) << 20
}

type ImageConfig struct {
	BaseURL string `envconfig:"WL_IMAGE_BASE_URL" required:"true"`
}

type MailerConfig struct {
	Endpoint    string        `envconfig:"WL_MAILER_ENDPOINT"`
	APIKey      string        `envconfig:"WL_MAILER_API_KEY"`
	DefaultFrom string        `envconfig:"WL_MAILER_FROM_EMAIL" default:"noreply@warehouse-listing.local"`
	Timeout     time.Duration `envconfig:"WL_MAILER_TIMEOUT" default:"10s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate   bool          `envconfig:"WL_AUTO_MIGRATE" default:"false"`
	StatsCacheTTL time.Duration `envconfig:"WL_STATS_CACHE_TTL" default:"5m"`
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
