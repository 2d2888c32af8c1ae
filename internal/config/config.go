package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Logging      LoggingConfig
	Session      SessionConfig
	Catalog      CatalogConfig
	FormulaStore FormulaStoreConfig
	Composer     ComposerConfig
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr string
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	UseMock         bool
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level string
}

// SessionConfig controls the browser session that holds comparison sets and formula drafts.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// CatalogConfig locates the JSON datasets.
type CatalogConfig struct {
	DataDir      string
	BaseURL      string
	ManifestPath string
	FetchTimeout time.Duration
	Concurrency  int
	Watch        bool
}

// FormulaStoreConfig selects where user-authored formulas are persisted.
type FormulaStoreConfig struct {
	Driver string
	Key    string
	FSRoot string
	S3     S3Config
}

// S3Config addresses an S3 or MinIO bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// ComposerConfig holds formula pricing constants.
type ComposerConfig struct {
	Markup float64
}

const (
	defaultAddr             = ":8080"
	defaultDataDir          = "./data"
	defaultFetchTimeout     = 10 * time.Second
	defaultFetchConcurrency = 4
	defaultStoreDriver      = "fs"
	defaultStoreKey         = "myFormulas"
	defaultStoreRoot        = "./blobdata"
	defaultMarkup           = 6.5
)

// Load inspects the environment and builds a Config value.
func Load() (Config, error) {
	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			defaultAddr,
		),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"",
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), 0),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), 0),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), 0),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), 0),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), false),
	}

	cfg.Logging = LoggingConfig{
		Level: strings.TrimSpace(os.Getenv("LOG_LEVEL")),
	}

	cfg.Session = SessionConfig{
		Lifetime:     parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), 12*time.Hour),
		CookieName:   firstNonEmpty(os.Getenv("SESSION_COOKIE_NAME"), "flaromlab_session"),
		CookieDomain: strings.TrimSpace(os.Getenv("SESSION_COOKIE_DOMAIN")),
		CookieSecure: parseBoolWithDefault(os.Getenv("SESSION_COOKIE_SECURE"), true),
	}

	cfg.Catalog = CatalogConfig{
		DataDir:      firstNonEmpty(os.Getenv("CATALOG_DATA_DIR"), defaultDataDir),
		BaseURL:      strings.TrimSpace(os.Getenv("CATALOG_BASE_URL")),
		ManifestPath: strings.TrimSpace(os.Getenv("CATALOG_MANIFEST")),
		FetchTimeout: parseDurationWithDefault(os.Getenv("CATALOG_FETCH_TIMEOUT"), defaultFetchTimeout),
		Concurrency:  parseIntWithDefault(os.Getenv("CATALOG_FETCH_CONCURRENCY"), defaultFetchConcurrency),
		Watch:        parseBoolWithDefault(os.Getenv("CATALOG_WATCH"), false),
	}

	cfg.FormulaStore = FormulaStoreConfig{
		Driver: strings.ToLower(firstNonEmpty(os.Getenv("FORMULA_STORE_DRIVER"), defaultStoreDriver)),
		Key:    firstNonEmpty(os.Getenv("FORMULA_STORE_KEY"), defaultStoreKey),
		FSRoot: firstNonEmpty(os.Getenv("FORMULA_STORE_FS_ROOT"), defaultStoreRoot),
		S3: S3Config{
			Bucket:    strings.TrimSpace(os.Getenv("FORMULA_STORE_S3_BUCKET")),
			Region:    strings.TrimSpace(os.Getenv("FORMULA_STORE_S3_REGION")),
			Endpoint:  strings.TrimSpace(os.Getenv("FORMULA_STORE_S3_ENDPOINT")),
			PathStyle: parseBoolWithDefault(os.Getenv("FORMULA_STORE_S3_PATH_STYLE"), false),
		},
	}

	cfg.Composer = ComposerConfig{
		Markup: parseFloatWithDefault(os.Getenv("COMPOSER_MARKUP"), defaultMarkup),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports configuration combinations that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server address must not be empty")
	}
	if c.Catalog.Concurrency <= 0 {
		return fmt.Errorf("catalog fetch concurrency must be positive, got %d", c.Catalog.Concurrency)
	}
	if c.Composer.Markup <= 0 {
		return fmt.Errorf("composer markup must be positive, got %v", c.Composer.Markup)
	}
	switch c.FormulaStore.Driver {
	case "fs", "memory", "db":
	case "s3":
		if c.FormulaStore.S3.Bucket == "" {
			return fmt.Errorf("FORMULA_STORE_S3_BUCKET required for s3 driver")
		}
	default:
		return fmt.Errorf("unknown formula store driver %q", c.FormulaStore.Driver)
	}
	if c.FormulaStore.Driver == "db" && !c.Database.UseMock && strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("DATABASE_URL required for db formula store")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	if strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseFloatWithDefault(value string, def float64) float64 {
	if strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	if strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	if strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}
