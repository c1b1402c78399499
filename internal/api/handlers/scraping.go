// internal/api/handlers/scraping.go

package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ps-vitor/salgspriser/internal/api/models"
	"github.com/ps-vitor/salgspriser/internal/dataset"
	"github.com/ps-vitor/salgspriser/internal/domain"
	"github.com/ps-vitor/salgspriser/internal/input"
)

// Scraper runs one pipeline and keeps its records.
type Scraper interface {
	ScrapeAndStore(ctx context.Context, q domain.Query) (*dataset.Dataset, error)
}

type ScrapingHandler struct {
	scraper     Scraper
	defaultType domain.PropertyType
	now         func() time.Time
	log         zerolog.Logger
}

func NewScrapingHandler(svc Scraper, defaultType domain.PropertyType, now func() time.Time, log zerolog.Logger) *ScrapingHandler {
	if now == nil {
		now = time.Now
	}
	return &ScrapingHandler{scraper: svc, defaultType: defaultType, now: now, log: log}
}

// HandleScrape runs a scrape for ?start=&end=&type=. The years go through the
// same validation as the interactive prompt.
func (h *ScrapingHandler) HandleScrape(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	t := h.defaultType
	if raw := params.Get("type"); raw != "" {
		parsed, err := domain.ParsePropertyType(raw)
		if err != nil {
			h.fail(w, err)
			return
		}
		t = parsed
	}

	q, coerced, err := input.BuildQuery(params.Get("start"), params.Get("end"), t, h.now().Year())
	if err != nil {
		h.fail(w, err)
		return
	}

	ds, err := h.scraper.ScrapeAndStore(r.Context(), q)
	if err != nil {
		h.fail(w, err)
		return
	}

	resp := models.ScrapeResponse{
		Message:    input.Confirmation(q),
		StartYear:  q.StartYear,
		EndYear:    q.EndYear.String(),
		Type:       string(q.Type),
		Records:    ds.Len(),
		Unresolved: models.FromUnresolved(ds.Unresolved()),
	}
	if coerced {
		resp.Warning = input.FutureYearWarning
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ScrapingHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Int("status", status).Msg("scrape failed")
	}
	writeJSON(w, status, models.Error{Error: err.Error()})
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	var (
		ve *domain.ValidationError
		se *domain.StatusError
		pe *domain.ParseError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &se), errors.As(err, &pe):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
