package config

import (
	"testing"
	"time"
)

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"all empty", []string{"", "   "}, ""},
		{"first non empty", []string{"foo", "bar"}, "foo"},
		{"skips whitespace", []string{"   ", "bar"}, "bar"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := firstNonEmpty(tt.values...); got != tt.want {
				t.Fatalf("firstNonEmpty(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestParseIntWithDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		def   int
		want  int
	}{
		{"blank returns default", "", 7, 7},
		{"invalid returns default", "abc", 3, 3},
		{"valid parses value", "42", 0, 42},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseIntWithDefault(tt.value, tt.def); got != tt.want {
				t.Fatalf("parseIntWithDefault(%q, %d) = %d, want %d", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestParseDurationWithDefault(t *testing.T) {
	t.Parallel()

	def := 5 * time.Second
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"blank returns default", "", def},
		{"invalid returns default", "nonsense", def},
		{"valid parses", "2m", 2 * time.Minute},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseDurationWithDefault(tt.value, def); got != tt.want {
				t.Fatalf("parseDurationWithDefault(%q) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseBoolWithDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		def   bool
		want  bool
	}{
		{"blank returns default", "", true, true},
		{"invalid returns default", "nope", false, false},
		{"valid parses", "true", false, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseBoolWithDefault(tt.value, tt.def); got != tt.want {
				t.Fatalf("parseBoolWithDefault(%q, %t) = %t, want %t", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestParseFloatWithDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		def   float64
		want  float64
	}{
		{"blank returns default", "", 6.5, 6.5},
		{"invalid returns default", "six", 6.5, 6.5},
		{"valid parses", " 4.25 ", 6.5, 4.25},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseFloatWithDefault(tt.value, tt.def); got != tt.want {
				t.Fatalf("parseFloatWithDefault(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_ADDR", "ADDR", "DATABASE_URL", "DB_URL", "DATABASE_MAX_IDLE_CONNS", "DATABASE_MAX_OPEN_CONNS",
		"DATABASE_CONN_MAX_LIFETIME", "DATABASE_CONN_MAX_IDLE_TIME", "DATABASE_USE_MOCK", "LOG_LEVEL",
		"SESSION_LIFETIME", "SESSION_COOKIE_NAME", "SESSION_COOKIE_DOMAIN", "SESSION_COOKIE_SECURE",
		"CATALOG_DATA_DIR", "CATALOG_BASE_URL", "CATALOG_MANIFEST", "CATALOG_FETCH_TIMEOUT",
		"CATALOG_FETCH_CONCURRENCY", "CATALOG_WATCH", "FORMULA_STORE_DRIVER", "FORMULA_STORE_KEY",
		"FORMULA_STORE_FS_ROOT", "FORMULA_STORE_S3_BUCKET", "FORMULA_STORE_S3_REGION",
		"FORMULA_STORE_S3_ENDPOINT", "FORMULA_STORE_S3_PATH_STYLE", "COMPOSER_MARKUP",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadUsesEnvironmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Catalog.DataDir != "./data" {
		t.Fatalf("Catalog.DataDir = %q", cfg.Catalog.DataDir)
	}
	if cfg.Catalog.FetchTimeout != 10*time.Second {
		t.Fatalf("Catalog.FetchTimeout = %s", cfg.Catalog.FetchTimeout)
	}
	if cfg.Catalog.Concurrency != 4 {
		t.Fatalf("Catalog.Concurrency = %d", cfg.Catalog.Concurrency)
	}
	if cfg.FormulaStore.Driver != "fs" || cfg.FormulaStore.Key != "myFormulas" {
		t.Fatalf("FormulaStore = %+v", cfg.FormulaStore)
	}
	if cfg.Composer.Markup != 6.5 {
		t.Fatalf("Composer.Markup = %v, want 6.5", cfg.Composer.Markup)
	}
	if cfg.Session.CookieName != "flaromlab_session" || !cfg.Session.CookieSecure {
		t.Fatalf("Session = %+v", cfg.Session)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "10")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "100")
	t.Setenv("DATABASE_CONN_MAX_LIFETIME", "1h")
	t.Setenv("DATABASE_CONN_MAX_IDLE_TIME", "30m")
	t.Setenv("DATABASE_USE_MOCK", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_LIFETIME", "45m")
	t.Setenv("SESSION_COOKIE_NAME", "custom_session")
	t.Setenv("SESSION_COOKIE_DOMAIN", "example.com")
	t.Setenv("SESSION_COOKIE_SECURE", "false")
	t.Setenv("CATALOG_BASE_URL", "https://cdn.example.com/data")
	t.Setenv("CATALOG_FETCH_TIMEOUT", "3s")
	t.Setenv("CATALOG_WATCH", "true")
	t.Setenv("FORMULA_STORE_DRIVER", "S3")
	t.Setenv("FORMULA_STORE_S3_BUCKET", "formulas")
	t.Setenv("FORMULA_STORE_S3_PATH_STYLE", "true")
	t.Setenv("COMPOSER_MARKUP", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.URL != "postgres://example" {
		t.Fatalf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Database.MaxIdleConns != 10 || cfg.Database.MaxOpenConns != 100 {
		t.Fatalf("Database pool = %+v", cfg.Database)
	}
	if cfg.Database.ConnMaxLifetime != time.Hour || cfg.Database.ConnMaxIdleTime != 30*time.Minute {
		t.Fatalf("Database lifetimes = %+v", cfg.Database)
	}
	if !cfg.Database.UseMock {
		t.Fatalf("Database.UseMock = %t, want true", cfg.Database.UseMock)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Session.Lifetime != 45*time.Minute || cfg.Session.CookieName != "custom_session" {
		t.Fatalf("Session = %+v", cfg.Session)
	}
	if cfg.Session.CookieDomain != "example.com" || cfg.Session.CookieSecure {
		t.Fatalf("Session cookie = %+v", cfg.Session)
	}
	if cfg.Catalog.BaseURL != "https://cdn.example.com/data" || cfg.Catalog.FetchTimeout != 3*time.Second || !cfg.Catalog.Watch {
		t.Fatalf("Catalog = %+v", cfg.Catalog)
	}
	if cfg.FormulaStore.Driver != "s3" || cfg.FormulaStore.S3.Bucket != "formulas" || !cfg.FormulaStore.S3.PathStyle {
		t.Fatalf("FormulaStore = %+v", cfg.FormulaStore)
	}
	if cfg.Composer.Markup != 5 {
		t.Fatalf("Composer.Markup = %v", cfg.Composer.Markup)
	}
}

func TestLoadPrefersServerAddr(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("ADDR", ":7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:9000")
	}
}

func TestLoadRejectsInvalidCombinations(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"FORMULA_STORE_DRIVER": "redis"}},
		{"s3 without bucket", map[string]string{"FORMULA_STORE_DRIVER": "s3"}},
		{"db without url", map[string]string{"FORMULA_STORE_DRIVER": "db"}},
		{"non positive markup", map[string]string{"COMPOSER_MARKUP": "-1"}},
		{"zero concurrency", map[string]string{"CATALOG_FETCH_CONCURRENCY": "0"}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected Load() to fail for %s", tt.name)
			}
		})
	}
}

func TestValidateAllowsMockDatabaseStore(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Server:       ServerConfig{Addr: ":8080"},
		Database:     DatabaseConfig{UseMock: true},
		Catalog:      CatalogConfig{Concurrency: 1},
		FormulaStore: FormulaStoreConfig{Driver: "db"},
		Composer:     ComposerConfig{Markup: 6.5},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
