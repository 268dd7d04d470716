package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/kurbeln/internal/api"
	"github.com/banshee-data/kurbeln/internal/config"
	"github.com/banshee-data/kurbeln/internal/db"
	"github.com/banshee-data/kurbeln/internal/flights"
	"github.com/banshee-data/kurbeln/internal/fsutil"
	"github.com/banshee-data/kurbeln/internal/monitoring"
)

func handleServe(args []string, stdout, stderr io.Writer) error {
	fset := newFlagSet("serve", stderr)
	dbPath := fset.String("db", "kurbeln.db", "Result database")
	flightsPath := fset.String("flights", "", "Contest flight catalogue, for pilot names")
	configPath := fset.String("config", "", "Tuning config JSON shown at /api/config")
	listen := fset.String("listen", "localhost:8080", "HTTP listen address")
	if err := parseFlags(fset, args); err != nil {
		return err
	}

	tuning, err := loadTuning(*configPath)
	if err != nil {
		return err
	}
	var cat *flights.Catalogue
	if *flightsPath != "" {
		if cat, err = flights.Load(fsutil.OSFileSystem{}, *flightsPath); err != nil {
			return err
		}
	}

	store, err := db.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	handler, err := newServeHandler(store, cat, tuning)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              *listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()
	fmt.Fprintf(stdout, "serving %s on http://%s (debug console at /debug/)\n", *dbPath, *listen)

	select {
	case err := <-errc:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}
	return nil
}

// newServeHandler mounts the results API and the database debug routes.
func newServeHandler(store *db.DB, cat *flights.Catalogue, tuning *config.TuningConfig) (http.Handler, error) {
	mux := api.NewServer(store, cat, tuning).ServeMux()
	if err := store.AttachAdminRoutes(mux); err != nil {
		return nil, err
	}
	return api.LoggingMiddleware(mux), nil
}
