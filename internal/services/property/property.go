package property

import (
	"context"
	"math"

	"github.com/ps-vitor/salgspriser/internal/domain"
	"github.com/ps-vitor/salgspriser/internal/repositories"
)

type PropertyService struct {
	repo repositories.PropertyRepository
}

func NewPropertyService(repo repositories.PropertyRepository) *PropertyService {
	return &PropertyService{repo: repo}
}

func (s *PropertyService) FindAll(ctx context.Context) ([]domain.EnrichedRecord, error) {
	return s.repo.FindAll(ctx)
}

// Summary describes the price per square metre over the stored records.
type Summary struct {
	Count        int     `json:"count"`
	AveragePrice float64 `json:"average_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
}

func (s *PropertyService) Summary(ctx context.Context) (Summary, error) {
	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(records), nil
}

func Summarize(records []domain.EnrichedRecord) Summary {
	if len(records) == 0 {
		return Summary{}
	}
	sum := Summary{Count: len(records), MinPrice: math.Inf(1), MaxPrice: math.Inf(-1)}
	var total float64
	for _, r := range records {
		total += r.Price
		sum.MinPrice = math.Min(sum.MinPrice, r.Price)
		sum.MaxPrice = math.Max(sum.MaxPrice, r.Price)
	}
	sum.AveragePrice = total / float64(len(records))
	return sum
}
