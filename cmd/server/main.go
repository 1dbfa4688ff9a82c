package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/DoyleJ11/arena-lobby/internal/config"
	"github.com/DoyleJ11/arena-lobby/internal/gameconfig"
	"github.com/DoyleJ11/arena-lobby/internal/httpapi"
	"github.com/DoyleJ11/arena-lobby/internal/hub"
	"github.com/DoyleJ11/arena-lobby/internal/logging"
	"github.com/DoyleJ11/arena-lobby/internal/profile"
	"github.com/DoyleJ11/arena-lobby/internal/startlog"
	"github.com/DoyleJ11/arena-lobby/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Dev)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		profiles  profile.Store = profile.NewMemoryStore()
		consumers []startlog.Consumer
		db        *gorm.DB
	)
	if cfg.DatabaseURL != "" {
		db, err = storage.Open(cfg.DatabaseURL, cfg.Dev, logger)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, storage.Close(db)) }()

		store, err := profile.NewGormStore(db)
		if err != nil {
			return err
		}
		profiles = store
		recorder, err := startlog.NewGormRecorder(db)
		if err != nil {
			return err
		}
		consumers = append(consumers, recorder)
	} else {
		logger.Warn("DATABASE_URL not set, profiles and start records are kept in memory")
		consumers = append(consumers, startlog.NewMemoryRecorder())
	}
	if cfg.GameServerURL != "" {
		consumers = append(consumers, startlog.NewForwarder(cfg.GameServerURL, nil, logger))
	}

	options := gameconfig.WithFallback(gameconfig.NewFileSource(cfg.OptionsDir), logger)
	web, err := options.Web(ctx)
	if err != nil {
		return err
	}
	if n, err := profile.SeedNames(ctx, profiles, web.Portraits); err != nil {
		logger.Warn("seeding profile names", zap.Error(err))
	} else if n > 0 {
		logger.Info("profile names seeded", zap.Int("count", n))
	}

	h := hub.NewHub(ctx, logger)

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(httpapi.Deps{
		Hub:        h,
		Options:    options,
		Profiles:   profiles,
		Consumer:   startlog.Multi(consumers...),
		RosterSize: cfg.RosterSize,
		Log:        logger,
	})
	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		select {
		case h.Inbox() <- hub.ShutdownHub{}:
		case <-h.Done():
		}
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
