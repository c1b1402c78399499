package property

import (
	"context"
	"testing"

	"github.com/ps-vitor/salgspriser/internal/domain"
	"github.com/ps-vitor/salgspriser/internal/repositories"
)

func TestSummary(t *testing.T) {
	repo := repositories.NewMemoryPropertyRepository()
	svc := NewPropertyService(repo)
	ctx := context.Background()

	got, err := svc.Summary(ctx)
	if err != nil || got != (Summary{}) {
		t.Fatalf("empty summary: %+v, %v", got, err)
	}

	_ = repo.Save(ctx, []domain.EnrichedRecord{{Price: 10000}, {Price: 30000}, {Price: 20000}})
	got, err = svc.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := Summary{Count: 3, AveragePrice: 20000, MinPrice: 10000, MaxPrice: 30000}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}
