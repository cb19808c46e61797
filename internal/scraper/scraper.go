package scraper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stayfind/internal/config"
	"stayfind/internal/model"
)

// Pipeline retrieves listings for a results-page URL through tiered
// fetching: a plain HTTP fetch first, a headless browser when that yields
// nothing, and a degraded placeholder when both fail or the time budget
// runs out. Retrieve never returns an empty slice; a conversational turn
// always has something to present.
type Pipeline struct {
	cfg      *config.ScraperConfig
	sessions *SessionPool
	logger   *zap.Logger
}

func NewPipeline(cfg *config.ScraperConfig, sessions *SessionPool, logger *zap.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, sessions: sessions, logger: logger}
}

// Minimum time worth starting a browser fetch with. Below this the tier
// would be cancelled mid-navigation anyway.
const renderedTierMinimum = 3 * time.Second

// Retrieve runs the tier sequence under the configured total budget.
func (p *Pipeline) Retrieve(ctx context.Context, searchURL string, maxResults int) []model.Listing {
	if maxResults <= 0 {
		maxResults = p.cfg.MaxListings
	}

	budget := time.Duration(p.cfg.TotalBudget) * time.Second
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	deadline, _ := ctx.Deadline()

	started := time.Now()
	listings, err := p.fastFetch(ctx, searchURL, time.Duration(p.cfg.FastTimeout)*time.Second, maxResults)
	if err != nil {
		p.logger.Debug("fast tier failed", zap.Error(err))
	}
	if len(listings) > 0 {
		p.logger.Info("listings retrieved",
			zap.String("tier", string(model.TierFastFetch)),
			zap.Int("count", len(listings)),
			zap.Duration("took", time.Since(started)))
		return listings
	}

	if time.Until(deadline) >= renderedTierMinimum {
		listings, err = p.renderedFetch(ctx, searchURL, maxResults)
		if err != nil {
			p.logger.Warn("rendered tier failed", zap.Error(err))
		}
		if len(listings) > 0 {
			p.logger.Info("listings retrieved",
				zap.String("tier", string(model.TierRenderedFetch)),
				zap.Int("count", len(listings)),
				zap.Duration("took", time.Since(started)))
			return listings
		}
	} else {
		p.logger.Debug("skipping rendered tier, budget nearly exhausted",
			zap.Duration("remaining", time.Until(deadline)))
	}

	p.logger.Info("all fetch tiers empty, returning placeholder",
		zap.String("url", searchURL),
		zap.Duration("took", time.Since(started)))
	return []model.Listing{degradedListing(searchURL)}
}

// degradedListing points the user at the live results page when no
// listing data could be fetched in time.
func degradedListing(searchURL string) model.Listing {
	return model.Listing{
		Title:  "Places to stay in " + locationFromSearchURL(searchURL),
		Price:  "Visit site for current pricing",
		Rating: "See reviews on site",
		Link:   searchURL,
		Source: model.TierDegraded,
	}
}
