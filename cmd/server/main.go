package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soaringjerry/mindscope/internal/analysis"
	"github.com/soaringjerry/mindscope/internal/api"
	"github.com/soaringjerry/mindscope/internal/catalog"
	"github.com/soaringjerry/mindscope/internal/config"
	dbstore "github.com/soaringjerry/mindscope/internal/db"
	"github.com/soaringjerry/mindscope/internal/logger"
	"github.com/soaringjerry/mindscope/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	tables, err := analysis.LoadTables(cfg.InstrumentsYAML)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			log.Warn("close store", "error", cerr)
		}
	}()

	if cfg.SeedCatalog {
		n, err := catalog.Seed(store, log.Zap())
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		if n > 0 {
			log.Info("catalog seeded", "assessments", n)
		}
	}

	auth := middleware.NewTokenAuth(cfg.JWTSecret)
	mux := http.NewServeMux()
	api.NewRouter(store, api.Options{
		Analyzer:  analysis.NewAnalyzer(tables),
		Auth:      auth,
		TokenTTL:  cfg.TokenTTL,
		Logger:    log,
		Commit:    cfg.Commit,
		BuildTime: cfg.BuildTime,
	}).Register(mux)
	mountFrontend(mux, cfg, log)

	var handler http.Handler = mux
	handler = middleware.LocaleMiddleware(handler)
	handler = middleware.RequestLog(log)(handler)
	handler = auth.WithAuth(handler)
	handler = middleware.CORS(cfg.CORSOrigins)(middleware.SecureHeaders(middleware.NoStore(handler)))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("MindScope server listening", "addr", cfg.Addr, "store", string(cfg.Store), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore returns the configured store and a function that releases it. The memory store is
// written back to MINDSCOPE_SNAPSHOT_PATH on close when that path is set.
func openStore(cfg *config.Config, log *logger.Logger) (api.Store, func() error, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		if err := MigrateIfNeeded(cfg.SnapshotPath, cfg.SQLitePath, cfg.MigrationsDir, log); err != nil {
			return nil, nil, fmt.Errorf("snapshot migration: %w", err)
		}
		conn, err := dbstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := dbstore.RunMigrations(conn, cfg.MigrationsDir); err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		st, err := dbstore.NewStore(conn)
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return st, conn.Close, nil

	case config.StorePostgres:
		gdb, err := dbstore.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, err
		}
		st, err := dbstore.NewGormStore(gdb)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return st, sqlDB.Close, nil

	default:
		if cfg.SnapshotPath == "" {
			return api.NewMemoryStore(), func() error { return nil }, nil
		}
		st, err := api.NewMemoryStoreFromPath(cfg.SnapshotPath)
		if errors.Is(err, os.ErrNotExist) {
			st, err = api.NewMemoryStore(), nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("load snapshot: %w", err)
		}
		return st, func() error {
			log.Info("saving snapshot", "path", cfg.SnapshotPath)
			return api.SaveMemoryStore(st, cfg.SnapshotPath)
		}, nil
	}
}

// mountFrontend serves static files when MINDSCOPE_STATIC_DIR is set, or proxies / to a
// dev server when MINDSCOPE_DEV_FRONTEND_URL is set.
func mountFrontend(mux *http.ServeMux, cfg *config.Config, log *logger.Logger) {
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
		return
	}
	if cfg.DevFrontendURL == "" {
		return
	}
	u, err := url.Parse(cfg.DevFrontendURL)
	if err != nil {
		log.Warn("invalid dev frontend url", "url", cfg.DevFrontendURL, "error", err)
		return
	}
	rp := httputil.NewSingleHostReverseProxy(u)
	rp.ModifyResponse = func(res *http.Response) error {
		res.Header.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		res.Header.Set("Pragma", "no-cache")
		res.Header.Set("Expires", "0")
		return nil
	}
	mux.Handle("/", rp)
}
