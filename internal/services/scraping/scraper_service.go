package scraping

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ps-vitor/salgspriser/internal/dataset"
	"github.com/ps-vitor/salgspriser/internal/domain"
	"github.com/ps-vitor/salgspriser/internal/geocoding"
	"github.com/ps-vitor/salgspriser/internal/repositories"
	"github.com/ps-vitor/salgspriser/pkg/logger"
)

// Lister is the listing side of the pipeline.
type Lister interface {
	PageCount(ctx context.Context, q domain.Query) (pages, total int, err error)
	// FetchAll hands pages 1..pages to fn in order and stops at the first error.
	FetchAll(ctx context.Context, q domain.Query, pages int, fn func(page int, listings []domain.Listing) error) error
}

type Options struct {
	Lister   Lister
	Geocoder geocoding.Geocoder
	// Repo is only needed by ScrapeAndStore.
	Repo repositories.PropertyRepository
	// Workers bounds concurrent geocoder calls; 1 is strictly sequential.
	Workers int
	Logger  zerolog.Logger
}

type ScraperService struct {
	lister   Lister
	geocoder geocoding.Geocoder
	repo     repositories.PropertyRepository
	workers  int
	log      zerolog.Logger
}

func NewScraperService(opts Options) *ScraperService {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &ScraperService{
		lister:   opts.Lister,
		geocoder: opts.Geocoder,
		repo:     opts.Repo,
		workers:  workers,
		log:      logger.Component(opts.Logger, "pipeline"),
	}
}

// Run counts the pages, fetches them in order and geocodes every row.
// Transport and parse errors end the run; geocoding misses are recorded as
// unresolved and the run goes on.
func (s *ScraperService) Run(ctx context.Context, q domain.Query) (*dataset.Dataset, error) {
	log, _ := logger.WithRun(s.log, "")
	started := time.Now()

	pages, total, err := s.lister.PageCount(ctx, q)
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("query", q).Int("total", total).Int("pages", pages).Msg("run started")

	asm := dataset.NewAssembler(nil)
	err = s.lister.FetchAll(ctx, q, pages, func(page int, listings []domain.Listing) error {
		if err := s.geocodePage(ctx, log, asm, listings); err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ds := asm.Dataset()
	log.Info().
		Int("records", ds.Len()).
		Int("unresolved", len(ds.Unresolved())).
		Dur("elapsed", time.Since(started)).
		Msg("run finished")
	return ds, nil
}

// ScrapeAndStore runs the pipeline and replaces the stored records.
func (s *ScraperService) ScrapeAndStore(ctx context.Context, q domain.Query) (*dataset.Dataset, error) {
	if s.repo == nil {
		return nil, errors.New("scraper service has no repository")
	}
	ds, err := s.Run(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, ds.Records()); err != nil {
		return nil, fmt.Errorf("save records: %w", err)
	}
	return ds, nil
}

type geocoded struct {
	coord domain.GeoCoordinate
	err   error
}

// geocodePage looks up a page's rows with at most s.workers calls in flight
// and feeds the assembler in row order.
func (s *ScraperService) geocodePage(ctx context.Context, log zerolog.Logger, asm *dataset.Assembler, listings []domain.Listing) error {
	results := make([]geocoded, len(listings))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		fatalErr error
	)
	jobs := make(chan int)
	for w := 0; w < min(s.workers, len(listings)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				c, err := s.geocoder.Geocode(ctx, listings[i].Address)
				results[i] = geocoded{coord: c, err: err}
				if err != nil && !domain.IsGeocodeMiss(err) {
					once.Do(func() {
						fatalErr = err
						cancel()
					})
				}
			}
		}()
	}

feed:
	for i := range listings {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if fatalErr != nil {
		return fatalErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, l := range listings {
		r := results[i]
		if r.err != nil {
			log.Warn().Err(r.err).
				Int("page", l.Page).
				Int("row", l.Index).
				Str("address", l.Address.String()).
				Msg("listing skipped")
			asm.Skip(l, r.err.Error())
			continue
		}
		asm.Add(l, r.coord)
	}
	return nil
}
