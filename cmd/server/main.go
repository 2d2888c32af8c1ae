package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"flaromlab/internal/blob"
	"flaromlab/internal/config"
	"flaromlab/internal/db"
	"flaromlab/internal/db/mock"
	"flaromlab/internal/formulastore"
	applog "flaromlab/internal/log"
	"flaromlab/internal/metrics"
	"flaromlab/internal/server"
)

type serverLifecycle interface {
	Start() error
	Stop() error
}

var (
	loadConfigFunc      = config.Load
	setLogLevelFunc     = applog.SetLevel
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	openBlobStore       = blob.Open
	newServerFunc       = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}
	if err := setLogLevelFunc(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Logging.Level, "error", err)
		return 1
	}

	var database *gorm.DB
	if cfg.FormulaStore.Driver == string(blob.DriverDatabase) {
		if cfg.Database.UseMock {
			applog.Info(ctx, "using in-memory mock database")
			database, err = newMockDatabaseFunc(ctx)
		} else {
			database, err = configureDatabase(cfg.Database)
		}
		if err != nil {
			applog.Error(ctx, "failed to configure database", "error", err)
			return 1
		}
	}

	store, err := openBlobStore(ctx, cfg.FormulaStore, database)
	if err != nil {
		applog.Error(ctx, "failed to open formula store", "driver", cfg.FormulaStore.Driver, "error", err)
		return 1
	}
	applog.Info(ctx, "formula store ready", "driver", store.Driver(), "key", cfg.FormulaStore.Key)

	recorder := metrics.New()
	cat, stopWatch, err := loadCatalog(ctx, cfg.Catalog, recorder)
	if err != nil {
		applog.Error(ctx, "failed to prepare catalog", "error", err)
		return 1
	}
	defer stopWatch()

	srv, err := newServerFunc(server.Config{
		Addr: cfg.Server.Addr,
		Session: server.SessionConfig{
			Lifetime:     cfg.Session.Lifetime,
			CookieName:   cfg.Session.CookieName,
			CookieDomain: cfg.Session.CookieDomain,
			CookieSecure: cfg.Session.CookieSecure,
		},
		Catalog:  cat,
		Formulas: formulastore.New(store, cfg.FormulaStore.Key),
		Metrics:  recorder,
		Markup:   cfg.Composer.Markup,
	})
	if err != nil {
		applog.Error(ctx, "failed to build server", "error", err)
		return 1
	}

	signals, unsubscribe := subscribeShutdownSig()
	defer unsubscribe()

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
		return 0
	case sig := <-signals:
		applog.Info(ctx, "shutting down http server", "signal", sig.String())
	case <-ctx.Done():
		applog.Info(ctx, "shutting down http server", "reason", ctx.Err())
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error(ctx, "server exited with error", "error", err)
		return 1
	}
	return 0
}
