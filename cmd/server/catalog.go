package main

import (
	"context"
	"net/http"
	"strings"

	"flaromlab/internal/catalog"
	"flaromlab/internal/config"
	applog "flaromlab/internal/log"
	"flaromlab/internal/metrics"
	"flaromlab/models"
)

// loadCatalog performs the first load and, for local data directories with
// watching enabled, keeps the catalog in sync with the files. The returned
// func stops the watcher.
func loadCatalog(ctx context.Context, cfg config.CatalogConfig, recorder *metrics.Recorder) (*catalog.Catalog, func(), error) {
	manifest, err := catalog.LoadManifest(cfg.ManifestPath)
	if err != nil {
		return nil, nil, err
	}

	var fetcher catalog.Fetcher
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		fetcher = catalog.HTTPFetcher{BaseURL: base, Client: &http.Client{Timeout: cfg.FetchTimeout}}
		applog.Info(ctx, "loading catalog over http", "base_url", base)
	} else {
		fetcher = catalog.NewDirFetcher(cfg.DataDir)
		applog.Info(ctx, "loading catalog from directory", "dir", cfg.DataDir)
	}

	loader := &catalog.Loader{
		Fetcher:     fetcher,
		Timeout:     cfg.FetchTimeout,
		Concurrency: cfg.Concurrency,
		OnShard:     recorder.ObserveShard,
	}
	cat := catalog.New(loader, manifest)
	logStatus(ctx, cat.Reload(ctx))

	noop := func() {}
	if !cfg.Watch || strings.TrimSpace(cfg.BaseURL) != "" {
		return cat, noop, nil
	}
	watcher, err := catalog.NewWatcher(cat, cfg.DataDir, 0)
	if err != nil {
		applog.Warn(ctx, "catalog watching disabled", "error", err)
		return cat, noop, nil
	}
	watcher.OnReload = func(snap *catalog.Snapshot) { logStatus(ctx, snap) }
	if err := watcher.Start(ctx); err != nil {
		applog.Warn(ctx, "catalog watching disabled", "dir", cfg.DataDir, "error", err)
		_ = watcher.Stop()
		return cat, noop, nil
	}
	return cat, func() {
		if err := watcher.Stop(); err != nil {
			applog.Warn(ctx, "failed to stop catalog watcher", "error", err)
		}
	}, nil
}

func logStatus(ctx context.Context, snap *catalog.Snapshot) {
	for _, entity := range models.Entities() {
		status := snap.StatusOf(entity)
		if status.Unavailable {
			applog.Warn(ctx, "catalog entity unavailable", "entity", entity, "reason", status.Reason)
			continue
		}
		applog.Info(ctx, "catalog entity loaded", "entity", entity, "records", status.Records, "sources", status.Sources, "failed", len(status.Failed))
	}
}
