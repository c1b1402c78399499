// cmd/salgspriser/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ps-vitor/salgspriser/internal/app"
	"github.com/ps-vitor/salgspriser/internal/config"
	"github.com/ps-vitor/salgspriser/internal/domain"
	"github.com/ps-vitor/salgspriser/internal/export"
	"github.com/ps-vitor/salgspriser/internal/input"
	"github.com/ps-vitor/salgspriser/pkg/logger"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "salgspriser:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configDir   = flag.String("config", "configs", "directory holding app.yaml and scraping.yaml")
		start       = flag.Int("start", 0, "first sale year; prompts when omitted")
		end         = flag.String("end", "", "last sale year or \"today\"")
		typ         = flag.String("type", "", "property type: "+typeList())
		out         = flag.String("out", "", "output file (default from config)")
		format      = flag.String("format", "", "csv, geojson or shp (default from config or -out extension)")
		metricsAddr = flag.String("metrics-addr", "", "serve /metrics on this address while running")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Level: cfg.App.LogLevel, Console: cfg.App.LogConsole, Component: "cli"}, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log, version)
	if err != nil {
		return err
	}
	defer a.Close()

	t := a.DefaultType
	if *typ != "" {
		if t, err = domain.ParsePropertyType(*typ); err != nil {
			return err
		}
	}

	q, err := query(ctx, *start, *end, t, time.Now().In(cfg.Location()))
	if err != nil {
		return err
	}
	fmt.Println(input.Confirmation(q))

	if *metricsAddr != "" {
		serveMetrics(*metricsAddr, a, log)
	}

	ds, err := a.Scraper.Run(ctx, q)
	if err != nil {
		return err
	}

	path, f := outputTarget(cfg.Export, *out, *format)
	if err := export.Write(f, path, ds.Records()); err != nil {
		return err
	}
	log.Info().
		Str("path", path).
		Str("format", f).
		Int("records", ds.Len()).
		Int("unresolved", len(ds.Unresolved())).
		Msg("dataset written")
	return nil
}

// query takes the years from flags, or asks for them on a terminal.
func query(ctx context.Context, start int, end string, t domain.PropertyType, now time.Time) (domain.Query, error) {
	if start != 0 {
		q, coerced, err := input.BuildQuery(strconv.Itoa(start), end, t, now.Year())
		if err != nil {
			return domain.Query{}, err
		}
		if coerced {
			fmt.Println(input.FutureYearWarning)
		}
		return q, nil
	}
	if !input.Interactive(os.Stdin) {
		return domain.Query{}, errors.New("stdin is not a terminal; pass -start")
	}
	p := &input.Prompter{In: os.Stdin, Out: os.Stdout, Now: func() time.Time { return now }}
	return p.Prompt(ctx, t)
}

func typeList() string {
	names := make([]string, 0, len(domain.PropertyTypes()))
	for _, t := range domain.PropertyTypes() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func outputTarget(cfg config.ExportConfig, out, format string) (string, string) {
	path := cfg.Path
	if out != "" {
		path = out
	}
	if format != "" {
		return path, format
	}
	if out != "" {
		if f, ok := export.FormatFromPath(out); ok {
			return path, f
		}
	}
	return path, cfg.Format
}

func serveMetrics(addr string, a *app.App, log zerolog.Logger) {
	r := mux.NewRouter()
	r.Handle("/metrics", a.Metrics.Handler()).Methods(http.MethodGet)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")
}
