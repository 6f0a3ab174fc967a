package fetch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gyeh/vitalrisk/internal/model"
)

// PageFetcher fetches one page. *Fetcher satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, req model.PageRequest) (*model.PageResponse, error)
}

// WalkStats describes a pagination walk, complete or aborted.
type WalkStats struct {
	Pages    int
	Records  int
	Attempts int
}

// Paginator drives a PageFetcher across every page of the collection.
type Paginator struct {
	fetcher PageFetcher
	log     zerolog.Logger
}

// NewPaginator returns a Paginator over fetcher.
func NewPaginator(fetcher PageFetcher, log zerolog.Logger) *Paginator {
	return &Paginator{fetcher: fetcher, log: log}
}

// FetchAll fetches pages 1, 2, ... in order, calling consume with each page's
// records before requesting the next page. It stops after the first page whose
// pagination reports no next page. A fetch or consume error aborts the walk;
// pages consumed before it are not rolled back.
func (p *Paginator) FetchAll(ctx context.Context, consume func([]json.RawMessage) error, pageSize int) (*WalkStats, error) {
	stats := &WalkStats{}

	for page := 1; ; page++ {
		resp, err := p.fetcher.Fetch(ctx, model.PageRequest{Page: page, Limit: pageSize})
		if err != nil {
			return stats, err
		}
		stats.Pages++
		stats.Records += len(resp.Records)
		stats.Attempts += resp.Attempts

		if err := consume(resp.Records); err != nil {
			return stats, fmt.Errorf("page %d: %w", page, err)
		}

		p.log.Info().
			Int("page", page).
			Int("records", len(resp.Records)).
			Int("total_pages", resp.Pagination.TotalPages).
			Bool("has_next", resp.Pagination.HasNext).
			Msg("page consumed")

		if !resp.Pagination.HasNext {
			return stats, nil
		}
	}
}
