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
	FeatureFlags  FeatureFlagsConfig
	Verification  VerificationConfig
	Mail          MailConfig
	GCS           GCSConfig
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
	Env          string `envconfig:"MART_APP_ENV" required:"true"`
	Port         string `envconfig:"MART_APP_PORT" required:"true"`
	FrontendURL  string `envconfig:"MART_FRONTEND_URL" default:"http://localhost:5173"`
	LogLevel     string `envconfig:"MART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MART_DB_DSN"`
	Driver string `envconfig:"MART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MART_DB_HOST"`
	LegacyPort     int    `envconfig:"MART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MART_DB_USER"`
	LegacyPassword string `envconfig:"MART_DB_PASSWORD"`
	LegacyName     string `envconfig:"MART_DB_NAME"`
	LegacySSLMode  string `envconfig:"MART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MART_REDIS_ADDR"`
	Password     string        `envconfig:"MART_REDIS_PASSWORD"`
	DB           int           `envconfig:"MART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MART_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenDays  int    `envconfig:"MART_REFRESH_TOKEN_DAYS" default:"14"`
}

// RefreshTokenTTL returns the refresh token TTL configured in days.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenDays <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenDays) * 24 * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MART_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MART_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MART_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MART_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MART_AUTO_MIGRATE" default:"false"`
}

type VerificationConfig struct {
	TokenTTL    time.Duration `envconfig:"MART_VERIFICATION_TOKEN_TTL" default:"5m"`
	MaxAttempts int           `envconfig:"MART_VERIFICATION_MAX_ATTEMPTS" default:"3"`
}

type MailConfig struct {
	SendgridAPIKey string `envconfig:"MART_SENDGRID_API_KEY"`
	DefaultFrom    string `envconfig:"MART_MAIL_FROM" default:"no-reply@mart.ng"`
	BaseURL        string `envconfig:"MART_SENDGRID_BASE_URL" default:"https://api.sendgrid.com"`
}

type GCSConfig struct {
	BucketName      string `envconfig:"MART_GCS_BUCKET_NAME"`
	CredentialsJSON string `envconfig:"MART_GCS_CREDENTIALS_JSON"`
	CredentialsFile string `envconfig:"MART_GCS_CREDENTIALS_FILE"`
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
