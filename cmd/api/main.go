package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookrack.org/internal/auth"
	"bookrack.org/internal/catalog"
	"bookrack.org/internal/httpapi"
	"bookrack.org/internal/obs"
	"bookrack.org/internal/store/pg"
)

var version = "dev"

func main() {
	logger := obs.Logger()
	obs.Init()

	addr := envOr("BOOKRACK_ADDR", ":8080")
	dsn := os.Getenv("BOOKRACK_PG_DSN")

	var (
		cat   catalog.Service
		users auth.UserStore
		db    *sql.DB
	)
	if dsn != "" {
		store, err := pg.Open(dsn)
		if err != nil {
			logger.Fatalf("open postgres: %v", err)
		}
		db = store.DB()
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := pg.RunMigrations(ctx, db); err != nil {
			cancel()
			logger.Fatalf("run migrations: %v", err)
		}
		cancel()

		cat = store
		users = store.Users()
		logger.Printf("storage: postgres")
	} else {
		cat = catalog.NewInMemory()
		users = auth.NewInMemoryUsers()
		logger.Printf("storage: in-memory (set BOOKRACK_PG_DSN for postgres)")
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, cat, auth.NewService(users))

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s (version %s)", addr, version)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("serve: %v", err)
		}
	case sig := <-stop:
		logger.Printf("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
