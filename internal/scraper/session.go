package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"stayfind/internal/config"
)

// SessionPool owns the headless browser behind the rendered fetch tier.
// Browser startup costs seconds, so one browser process is kept warm and
// handed out serially; each fetch gets a fresh tab. A dead browser is
// detected on acquire and replaced.
type SessionPool struct {
	cfg    *config.ScraperConfig
	logger *zap.Logger

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func NewSessionPool(cfg *config.ScraperConfig, logger *zap.Logger) *SessionPool {
	return &SessionPool{cfg: cfg, logger: logger}
}

// Acquire returns a live browser context and a release function. The pool
// is held exclusively until release is called.
func (p *SessionPool) Acquire() (context.Context, func(), error) {
	p.mu.Lock()

	if p.cfg.ReuseSessions && p.browserCtx != nil && p.alive() {
		return p.browserCtx, p.releaseLocked(), nil
	}

	p.teardownLocked()
	if err := p.startLocked(); err != nil {
		p.mu.Unlock()
		return nil, nil, err
	}
	return p.browserCtx, p.releaseLocked(), nil
}

// releaseLocked builds the release function handed to the caller. Without
// session reuse the browser is closed on release instead of lingering until
// the next acquire. Must hold mu.
func (p *SessionPool) releaseLocked() func() {
	if p.cfg.ReuseSessions {
		return p.mu.Unlock
	}
	return func() {
		p.teardownLocked()
		p.mu.Unlock()
	}
}

// alive probes the cached browser with a trivial script. Must hold mu.
func (p *SessionPool) alive() bool {
	probeCtx, cancel := context.WithTimeout(p.browserCtx, 2*time.Second)
	defer cancel()
	var one int
	if err := chromedp.Run(probeCtx, chromedp.Evaluate("1", &one)); err != nil {
		p.logger.Debug("cached browser session is dead", zap.Error(err))
		return false
	}
	return true
}

func (p *SessionPool) startLocked() error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1024, 768),
		chromedp.UserAgent(p.cfg.UserAgent),
	)
	if p.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(p.cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run the blank page through so the browser process actually starts and
	// a broken Chrome install surfaces here instead of mid-fetch.
	startCtx, cancel := context.WithTimeout(browserCtx, 15*time.Second)
	defer cancel()
	if err := chromedp.Run(startCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	p.allocCancel = allocCancel
	p.browserCtx = browserCtx
	p.browserCancel = browserCancel
	p.logger.Info("started headless browser session")
	return nil
}

// teardownLocked releases the current browser if any. Must hold mu.
func (p *SessionPool) teardownLocked() {
	if p.browserCancel != nil {
		p.browserCancel()
		p.browserCancel = nil
	}
	if p.allocCancel != nil {
		p.allocCancel()
		p.allocCancel = nil
	}
	p.browserCtx = nil
}

// Shutdown closes the cached browser. Safe to call more than once.
func (p *SessionPool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardownLocked()
}
