// Command catalog inspects, exports and extends the perfumery catalog from
// the command line.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"flaromlab/internal/blob"
	"flaromlab/internal/catalog"
	"flaromlab/internal/config"
	"flaromlab/internal/db"
	"flaromlab/internal/db/mock"
	"flaromlab/internal/formulastore"
	applog "flaromlab/internal/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := newRootCmd(cfg).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		os.Exit(1)
	}
}

// options are the flags shared by every subcommand.
type options struct {
	cfg config.Config

	dataDir     string
	baseURL     string
	manifest    string
	logLevel    string
	timeout     time.Duration
	concurrency int

	storeDriver string
	storeRoot   string
	storeKey    string
}

func newRootCmd(cfg config.Config) *cobra.Command {
	opts := &options{cfg: cfg}

	root := &cobra.Command{
		Use:           "catalog",
		Short:         "Inspect and export the perfumery catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.logLevel) == "" {
				return nil
			}
			return applog.SetLevel(opts.logLevel)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.dataDir, "data-dir", cfg.Catalog.DataDir, "directory holding the JSON datasets")
	flags.StringVar(&opts.baseURL, "base-url", cfg.Catalog.BaseURL, "fetch datasets over HTTP from this base URL instead of --data-dir")
	flags.StringVar(&opts.manifest, "manifest", cfg.Catalog.ManifestPath, "YAML manifest listing dataset shards")
	flags.StringVar(&opts.logLevel, "log-level", cfg.Logging.Level, "log level (debug, info, warn, error)")
	flags.DurationVar(&opts.timeout, "timeout", cfg.Catalog.FetchTimeout, "per-shard fetch timeout")
	flags.IntVar(&opts.concurrency, "concurrency", cfg.Catalog.Concurrency, "shards fetched in parallel")
	flags.StringVar(&opts.storeDriver, "store-driver", cfg.FormulaStore.Driver, "saved formula store driver (fs, s3, memory, db)")
	flags.StringVar(&opts.storeRoot, "store-root", cfg.FormulaStore.FSRoot, "root directory for the fs store driver")
	flags.StringVar(&opts.storeKey, "store-key", cfg.FormulaStore.Key, "key holding the saved formula list")

	root.AddCommand(newStatsCmd(opts), newExportCmd(opts), newImportFormulasCmd(opts))
	return root
}

// loadCatalog fetches every shard once.
func (o *options) loadCatalog(ctx context.Context) (*catalog.Snapshot, error) {
	manifest, err := catalog.LoadManifest(o.manifest)
	if err != nil {
		return nil, err
	}
	var fetcher catalog.Fetcher = catalog.NewDirFetcher(o.dataDir)
	if base := strings.TrimSpace(o.baseURL); base != "" {
		fetcher = catalog.HTTPFetcher{BaseURL: base, Client: &http.Client{Timeout: o.timeout}}
	}
	loader := &catalog.Loader{Fetcher: fetcher, Timeout: o.timeout, Concurrency: o.concurrency}
	return catalog.New(loader, manifest).Reload(ctx), nil
}

// openStore opens the saved formula list with the configured driver.
func (o *options) openStore(ctx context.Context) (*formulastore.Store, error) {
	storeCfg := o.cfg.FormulaStore
	storeCfg.Driver = strings.ToLower(strings.TrimSpace(o.storeDriver))
	storeCfg.FSRoot = o.storeRoot
	storeCfg.Key = o.storeKey

	var database *gorm.DB
	if storeCfg.Driver == string(blob.DriverDatabase) {
		var err error
		if o.cfg.Database.UseMock {
			database, err = mock.New(ctx)
		} else {
			database, err = db.Configure(o.cfg.Database)
		}
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
	}

	store, err := blob.Open(ctx, storeCfg, database)
	if err != nil {
		return nil, fmt.Errorf("open formula store: %w", err)
	}
	return formulastore.New(store, storeCfg.Key), nil
}
