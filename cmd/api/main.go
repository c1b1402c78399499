// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ps-vitor/salgspriser/internal/api/handlers"
	"github.com/ps-vitor/salgspriser/internal/app"
	"github.com/ps-vitor/salgspriser/internal/config"
	"github.com/ps-vitor/salgspriser/pkg/logger"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "api:", err)
		os.Exit(1)
	}
}

func run() error {
	configDir := flag.String("config", "configs", "directory holding app.yaml and scraping.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Level: cfg.App.LogLevel, Console: cfg.App.LogConsole, Component: "api"}, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log, version)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           newRouter(a, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.API.Addr).Msg("server running")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func newRouter(a *app.App, log zerolog.Logger) *mux.Router {
	loc := a.Config.Location()
	scrapingHandler := handlers.NewScrapingHandler(a.Scraper, a.DefaultType, func() time.Time {
		return time.Now().In(loc)
	}, log)
	apiHandler := handlers.NewAPIHandler(a.Property, a.Metrics.Handler(), log)

	r := mux.NewRouter()
	r.HandleFunc("/api/scrape", scrapingHandler.HandleScrape).Methods(http.MethodPost)
	apiHandler.RegisterRoutes(r)
	return r
}
