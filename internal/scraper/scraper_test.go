package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stayfind/internal/config"
	"stayfind/internal/model"
)

func testPipeline(totalBudget int) *Pipeline {
	cfg := &config.ScraperConfig{
		TotalBudget: totalBudget,
		FastTimeout: 2,
		RenderWait:  1,
		MaxListings: 3,
		UserAgent:   "test-agent",
	}
	return NewPipeline(cfg, NewSessionPool(cfg, zap.NewNop()), zap.NewNop())
}

func TestRetrieveFastTier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(resultsFixture))
	}))
	defer srv.Close()

	p := testPipeline(15)
	listings := p.Retrieve(context.Background(), srv.URL+"/s/Tokyo/homes", 3)

	require.Len(t, listings, 3)
	for _, l := range listings {
		assert.Equal(t, model.TierFastFetch, l.Source)
	}
	assert.Equal(t, "Cozy loft in Shibuya", listings[0].Title)
}

func TestRetrieveDegradedWhenBudgetTooTightForBrowser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	// One second total: after the failed fast fetch there is not enough
	// budget left to start a browser, so the placeholder comes back.
	p := testPipeline(1)
	listings := p.Retrieve(context.Background(), srv.URL+"/s/Tokyo/homes", 3)

	require.Len(t, listings, 1)
	assert.Equal(t, model.TierDegraded, listings[0].Source)
	assert.Equal(t, "Places to stay in Tokyo", listings[0].Title)
	assert.Equal(t, srv.URL+"/s/Tokyo/homes", listings[0].Link)
}

func TestRetrieveNeverReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>no cards at all</body></html>"))
	}))
	defer srv.Close()

	p := testPipeline(1)
	listings := p.Retrieve(context.Background(), srv.URL+"/s/Oslo/homes", 0)
	require.NotEmpty(t, listings)
}

func TestRetrieveRespectsMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(resultsFixture))
	}))
	defer srv.Close()

	p := testPipeline(15)
	listings := p.Retrieve(context.Background(), srv.URL+"/s/Tokyo/homes", 1)
	assert.Len(t, listings, 1)
}
