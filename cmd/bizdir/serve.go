package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bizdir/internal/db"
	"bizdir/internal/server"
	"bizdir/internal/session"
	"bizdir/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	if config.Debug {
		logger.SetLevel(logrus.DebugLevel)
		pp.Println(config)
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	sessionStore := store.NewSessionStore(pool)
	sessions, err := session.NewManager(config, sessionStore)
	if err != nil {
		return err
	}

	stores := server.Stores{
		Users:         store.NewUserRepository(pool),
		Roles:         store.NewRoleRepository(pool),
		Categories:    store.NewCategoryRepository(pool),
		Locations:     store.NewLocationRepository(pool),
		Listings:      store.NewListingRepository(pool),
		Suggestions:   store.NewSuggestionRepository(pool),
		Subscriptions: store.NewSubscriptionRepository(pool),
	}

	srv, err := server.New(config, logger, sessions, stores)
	if err != nil {
		return err
	}

	go reapExpiredSessions(ctx, logger, sessionStore)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

// reapExpiredSessions deletes stale session rows once an hour until ctx
// is cancelled.
func reapExpiredSessions(ctx context.Context, logger *logrus.Logger, sessions *store.SessionStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := sessions.DeleteExpired(ctx)
			if err != nil {
				logger.WithError(err).Error("failed to reap expired sessions")
				continue
			}
			if count > 0 {
				logger.WithField("count", count).Info("reaped expired sessions")
			}
		}
	}
}
