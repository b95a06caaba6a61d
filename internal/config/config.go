package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	CartBackendSQL   = "sql"
	CartBackendMongo = "mongo"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" env-default:"stoom"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`

	ServerPort      int           `env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`

	DBDriver    string `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`

	JWTAccessSecret  string        `env:"JWT_SECRET"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL" env-default:"168h"`

	CartBackend string `env:"CART_BACKEND" env-default:"sql"`
	MongoURI    string `env:"MONGO_URI"`
	MongoDB     string `env:"MONGO_DB" env-default:"stoom"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" env-default:"0"`
	CartCacheTTL  time.Duration `env:"CART_CACHE_TTL" env-default:"15m"`

	KafkaBrokersRaw string `env:"KAFKA_BROKERS"`
	KafkaBrokers    []string

	ESURL      string `env:"ES_URL"`
	ESUser     string `env:"ES_USER"`
	ESPassword string `env:"ES_PASSWORD"`
	ESIndex    string `env:"ES_INDEX" env-default:"games"`

	AuthRatePerSec float64 `env:"AUTH_RATE_PER_SEC" env-default:"5"`
	AuthRateBurst  int     `env:"AUTH_RATE_BURST" env-default:"10"`

	CSRFEnabled bool `env:"CSRF_ENABLED" env-default:"true"`
	CSRFSecure  bool `env:"CSRF_SECURE" env-default:"false"`

	CORSOriginsRaw string `env:"CORS_ORIGINS"`
	CORSOrigins    []string

	SeedCatalog bool `env:"SEED_CATALOG" env-default:"false"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	cfg.KafkaBrokers = CSV(cfg.KafkaBrokersRaw)
	cfg.CORSOrigins = CSV(cfg.CORSOriginsRaw)
	cfg.DBDriver = strings.ToLower(cfg.DBDriver)
	cfg.CartBackend = strings.ToLower(cfg.CartBackend)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.DBDriver != DriverPostgres && c.DBDriver != DriverSQLite {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q", DriverPostgres, DriverSQLite))
	}
	if c.DatabaseURL == "" && c.DBDriver == DriverPostgres {
		errs = append(errs, errors.New("missing required env DATABASE_URL"))
	}
	if c.JWTAccessSecret == "" {
		errs = append(errs, errors.New("missing required env JWT_SECRET"))
	}
	if c.JWTRefreshSecret == "" {
		errs = append(errs, errors.New("missing required env JWT_REFRESH_SECRET"))
	} else if c.JWTRefreshSecret == c.JWTAccessSecret {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET must differ from JWT_SECRET"))
	}
	switch c.CartBackend {
	case CartBackendSQL:
	case CartBackendMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("CART_BACKEND=mongo requires MONGO_URI"))
		}
	default:
		errs = append(errs, fmt.Errorf("CART_BACKEND must be %q or %q", CartBackendSQL, CartBackendMongo))
	}
	return errors.Join(errs...)
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
