package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"gorm.io/gorm"

	"flaromlab/internal/blob"
	"flaromlab/internal/config"
	"flaromlab/internal/server"
	"flaromlab/models"
)

type stubServer struct {
	startErr       error
	stopErr        error
	blockUntilStop bool

	startCalled bool
	stopCalled  bool

	startGate   chan struct{}
	startNotify chan struct{}
}

func newStubServer(startErr, stopErr error, block bool) *stubServer {
	s := &stubServer{
		startErr:       startErr,
		stopErr:        stopErr,
		blockUntilStop: block,
		startNotify:    make(chan struct{}),
	}
	if block {
		s.startGate = make(chan struct{})
	}
	return s
}

func (s *stubServer) Start() error {
	s.startCalled = true
	close(s.startNotify)
	if s.blockUntilStop {
		<-s.startGate
	}
	return s.startErr
}

func (s *stubServer) Stop() error {
	s.stopCalled = true
	if s.blockUntilStop {
		close(s.startGate)
	}
	return s.stopErr
}

// restoreHooks resets every injectable dependency after the test.
func restoreHooks(t *testing.T) {
	t.Helper()
	originalLoadConfig := loadConfigFunc
	originalSetLogLevel := setLogLevelFunc
	originalMock := newMockDatabaseFunc
	originalConfigure := configureDatabase
	originalOpenBlob := openBlobStore
	originalNewServer := newServerFunc
	originalSubscribe := subscribeShutdownSig

	t.Cleanup(func() {
		loadConfigFunc = originalLoadConfig
		setLogLevelFunc = originalSetLogLevel
		newMockDatabaseFunc = originalMock
		configureDatabase = originalConfigure
		openBlobStore = originalOpenBlob
		newServerFunc = originalNewServer
		subscribeShutdownSig = originalSubscribe
	})
}

func baseConfig(t *testing.T) config.Config {
	return config.Config{
		Server:  config.ServerConfig{Addr: ":8080"},
		Logging: config.LoggingConfig{Level: "info"},
		Session: config.SessionConfig{Lifetime: time.Hour, CookieName: "test", CookieSecure: true},
		Catalog: config.CatalogConfig{
			DataDir:      t.TempDir(),
			FetchTimeout: time.Second,
			Concurrency:  2,
		},
		FormulaStore: config.FormulaStoreConfig{Driver: "memory", Key: "myFormulas"},
		Composer:     config.ComposerConfig{Markup: 6.5},
	}
}

func TestRunUsesMockDatabaseWhenConfigured(t *testing.T) {
	restoreHooks(t)

	cfg := baseConfig(t)
	cfg.Logging.Level = "debug"
	cfg.Database.UseMock = true
	cfg.FormulaStore.Driver = "db"

	var mockCalled bool
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(level string) error { return nil }
	newMockDatabaseFunc = func(ctx context.Context) (*gorm.DB, error) {
		mockCalled = true
		return &gorm.DB{}, nil
	}
	configureDatabase = func(config.DatabaseConfig) (*gorm.DB, error) {
		t.Fatal("configureDatabase should not be called when mock is enabled")
		return nil, nil
	}
	openBlobStore = func(_ context.Context, storeCfg config.FormulaStoreConfig, database *gorm.DB) (blob.Store, error) {
		if database == nil {
			t.Fatal("expected db driver to receive the database handle")
		}
		return blob.NewMemory(), nil
	}

	serverStub := newStubServer(http.ErrServerClosed, nil, true)
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		return serverStub, nil
	}

	shutdownCh := make(chan os.Signal, 1)
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return shutdownCh, func() {}
	}

	go func() {
		<-serverStub.startNotify
		shutdownCh <- syscall.SIGTERM
	}()

	code := run(context.Background())
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !mockCalled {
		t.Fatal("expected mock database to be used")
	}
	if !serverStub.startCalled || !serverStub.stopCalled {
		t.Fatal("expected server start and stop to be invoked")
	}
}

func TestRunSkipsDatabaseForOtherDrivers(t *testing.T) {
	restoreHooks(t)

	cfg := baseConfig(t)
	cfg.Database.UseMock = true
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(string) error { return nil }
	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) {
		t.Fatal("mock database should not be opened for the memory driver")
		return nil, nil
	}

	serverStub := newStubServer(http.ErrServerClosed, nil, false)
	newServerFunc = func(server.Config) (serverLifecycle, error) { return serverStub, nil }
	subscribeShutdownSig = func() (<-chan os.Signal, func()) { return make(chan os.Signal), func() {} }

	if code := run(context.Background()); code != 0 {
		t.Fatalf("expected exit code 0 when server closes cleanly, got %d", code)
	}
}

func TestRunLoadsCatalogFromDataDir(t *testing.T) {
	restoreHooks(t)

	cfg := baseConfig(t)
	oils := `{"oils": {"Rose Otto": {"family": "ROSACEAE"}, "Lavender": {"family": "LAMIACEAE"}}}`
	if err := os.WriteFile(filepath.Join(cfg.Catalog.DataDir, "oils.json"), []byte(oils), 0o644); err != nil {
		t.Fatalf("write oils: %v", err)
	}

	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(string) error { return nil }

	var got server.Config
	serverStub := newStubServer(http.ErrServerClosed, nil, false)
	newServerFunc = func(c server.Config) (serverLifecycle, error) {
		got = c
		return serverStub, nil
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) { return make(chan os.Signal), func() {} }

	if code := run(context.Background()); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if got.Catalog == nil || got.Formulas == nil || got.Metrics == nil {
		t.Fatalf("expected catalog, formula store and metrics to be wired, got %+v", got)
	}
	snap := got.Catalog.Snapshot()
	if len(snap.Oils) != 2 || snap.StatusOf(models.EntityOils).Unavailable {
		t.Fatalf("expected two oils loaded, got %d (%+v)", len(snap.Oils), snap.StatusOf(models.EntityOils))
	}
	if !snap.StatusOf(models.EntityMolecules).Unavailable {
		t.Fatal("expected molecules to be unavailable without shards")
	}
	if got.Markup != 6.5 || got.Session.CookieName != "test" {
		t.Fatalf("expected config to be forwarded, got markup=%v cookie=%q", got.Markup, got.Session.CookieName)
	}
}

func TestRunReturnsErrorWhenServerStartFails(t *testing.T) {
	restoreHooks(t)

	cfg := baseConfig(t)
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(string) error { return nil }

	serverStub := newStubServer(errors.New("listener failure"), nil, false)
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		return serverStub, nil
	}

	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return make(chan os.Signal), func() {}
	}

	code := run(context.Background())
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if serverStub.stopCalled {
		t.Fatal("server stop should not be called on start error")
	}
}

func TestRunHandlesDatabaseConfigurationError(t *testing.T) {
	restoreHooks(t)

	cfg := baseConfig(t)
	cfg.Database = config.DatabaseConfig{URL: "postgres://example", UseMock: false}
	cfg.FormulaStore.Driver = "db"

	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(string) error { return nil }
	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) {
		t.Fatal("mock database should not be used when URL is configured")
		return nil, nil
	}
	configureDatabase = func(config.DatabaseConfig) (*gorm.DB, error) {
		return nil, errors.New("db connection refused")
	}

	code := run(context.Background())
	if code != 1 {
		t.Fatalf("expected exit code 1 on database configuration failure, got %d", code)
	}
}

func TestRunHandlesFormulaStoreError(t *testing.T) {
	restoreHooks(t)

	cfg := baseConfig(t)
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(string) error { return nil }
	openBlobStore = func(context.Context, config.FormulaStoreConfig, *gorm.DB) (blob.Store, error) {
		return nil, errors.New("bucket missing")
	}
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		t.Fatal("server should not be built without a formula store")
		return nil, nil
	}

	if code := run(context.Background()); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunReturnsErrorWhenLogLevelInvalid(t *testing.T) {
	restoreHooks(t)

	cfg := config.Config{Logging: config.LoggingConfig{Level: "invalid"}}
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(string) error { return errors.New("invalid level") }

	code := run(context.Background())
	if code != 1 {
		t.Fatalf("expected exit code 1 for invalid log level, got %d", code)
	}
}
