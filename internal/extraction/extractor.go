package extraction

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/contact-finder/internal/entity"
	"github.com/octobees/contact-finder/internal/heuristics"
)

const (
	defaultPrimaryTimeout  = 30 * time.Second
	defaultFallbackTimeout = 15 * time.Second
	defaultSettleDelay     = 3 * time.Second
	defaultMaxFallback     = 7
	overlayLabel           = "Close"
)

// Result carries the extraction-derived fields of a contact record.
type Result struct {
	URL     string
	Phones  []string
	Socials entity.Socials
	Address *string
	Coords  *entity.Coords
	Success bool
	Error   string
}

// ApplyTo overwrites the extraction-derived fields of c.
func (r Result) ApplyTo(c *entity.Contact) {
	c.Phones = r.Phones
	c.Socials = r.Socials
	c.Address = r.Address
	c.Coords = r.Coords
	c.Success = r.Success
	c.Error = r.Error
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithTimeouts sets the document-load timeouts for the primary and fallback pages.
func WithTimeouts(primary, fallback time.Duration) Option {
	return func(e *Extractor) {
		if primary > 0 {
			e.primaryTimeout = primary
		}
		if fallback > 0 {
			e.fallbackTimeout = fallback
		}
	}
}

// WithSettleDelay sets the pause after each load that lets client-side rendering finish.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Extractor) {
		if d >= 0 {
			e.settleDelay = d
		}
	}
}

// WithPhoneRegion sets the region used for numbers written without a country code.
func WithPhoneRegion(region string) Option {
	return func(e *Extractor) {
		if region != "" {
			e.region = region
		}
	}
}

// WithMaxFallbackPages caps how many secondary pages are visited.
func WithMaxFallbackPages(n int) Option {
	return func(e *Extractor) {
		if n >= 0 {
			e.maxFallback = n
		}
	}
}

// Extractor recovers contact signals from a website.
type Extractor struct {
	browser         Browser
	logger          *zap.Logger
	primaryTimeout  time.Duration
	fallbackTimeout time.Duration
	settleDelay     time.Duration
	region          string
	maxFallback     int
}

// NewExtractor wires an extractor on top of a browser.
func NewExtractor(browser Browser, logger *zap.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Extractor{
		browser:         browser,
		logger:          logger,
		primaryTimeout:  defaultPrimaryTimeout,
		fallbackTimeout: defaultFallbackTimeout,
		settleDelay:     defaultSettleDelay,
		region:          heuristics.DefaultPhoneRegion,
		maxFallback:     defaultMaxFallback,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract visits target and, when address or coordinates are still missing,
// up to maxFallback contact-like pages of the same site. Success is false only
// when the browser session cannot be opened or the primary page cannot be loaded.
func (e *Extractor) Extract(ctx context.Context, target string) Result {
	log := e.logger.With(zap.String("url", target))

	session, err := e.browser.NewSession(ctx)
	if err != nil {
		log.Warn("browser session failed", zap.Error(err))
		return failedResult(target, fmt.Errorf("open browser session: %w", err))
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Debug("close browser session", zap.Error(err))
		}
	}()

	primary, err := e.visit(ctx, session, target, e.primaryTimeout)
	if err != nil {
		log.Warn("primary page failed", zap.Error(err))
		return failedResult(target, err)
	}

	agg := &aggregate{}
	agg.merge(e.analyze(primary))

	if !agg.located() {
		for _, link := range fallbackLinks(primary, e.maxFallback) {
			if ctx.Err() != nil {
				break
			}
			p, err := e.visit(ctx, session, link, e.fallbackTimeout)
			if err != nil {
				log.Warn("fallback page failed", zap.String("page", link), zap.Error(err))
				continue
			}
			agg.merge(e.analyze(p))
			if agg.located() {
				break
			}
		}
	}

	res := agg.result(target)
	log.Info("extraction finished",
		zap.Int("phones", len(res.Phones)),
		zap.Bool("address", res.Address != nil),
		zap.Bool("coords", res.Coords != nil))
	return res
}

// visit loads a page, lets it settle, tries to close a consent overlay and
// captures the rendered document.
func (e *Extractor) visit(ctx context.Context, s Session, target string, timeout time.Duration) (*page, error) {
	if err := s.Navigate(ctx, target, timeout); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", target, err)
	}
	if err := sleepCtx(ctx, e.settleDelay); err != nil {
		return nil, err
	}
	if _, err := s.DismissOverlay(ctx, overlayLabel); err != nil {
		e.logger.Debug("overlay dismiss failed", zap.String("url", target), zap.Error(err))
	}
	snap, err := TakeSnapshot(ctx, s)
	if err != nil {
		return nil, err
	}
	return parsePage(snap, target)
}

type pageFindings struct {
	phones  []string
	socials entity.Socials
	address string
	coords  *entity.Coords
}

func (e *Extractor) analyze(p *page) pageFindings {
	var f pageFindings

	if c, ok := firstOf(e.logger, p, coordStrategies); ok {
		f.coords = &c
	}

	address, ok := firstOf(e.logger, p, addressStrategies)
	if !ok {
		address, _ = heuristics.ExtractAddressFromText(p.text)
	}
	f.address = address

	f.phones = telPhones(p, e.region)
	if address != "" {
		f.phones = heuristics.MergePhones(f.phones, heuristics.ExtractPhoneNumbers(address, e.region)...)
	}
	f.phones = heuristics.MergePhones(f.phones, heuristics.ExtractPhoneNumbers(p.text, e.region)...)

	f.socials = socialLinks(p)
	return f
}

// aggregate accumulates findings across pages; earlier pages take priority.
type aggregate struct {
	phones  []string
	socials entity.Socials
	address *string
	coords  *entity.Coords
}

func (a *aggregate) merge(f pageFindings) {
	a.phones = heuristics.MergePhones(a.phones, f.phones...)
	for _, platform := range entity.Platforms {
		a.socials.SetIfEmpty(platform, f.socials.Get(platform))
	}
	if a.address == nil && f.address != "" {
		addr := f.address
		a.address = &addr
	}
	if a.coords == nil && f.coords != nil {
		a.coords = f.coords
	}
}

func (a *aggregate) located() bool {
	return a.address != nil && a.coords != nil
}

func (a *aggregate) result(target string) Result {
	phones := a.phones
	if phones == nil {
		phones = []string{}
	}
	return Result{
		URL:     target,
		Phones:  phones,
		Socials: a.socials,
		Address: a.address,
		Coords:  a.coords,
		Success: true,
	}
}

func failedResult(target string, err error) Result {
	return Result{
		URL:    target,
		Phones: []string{},
		Error:  err.Error(),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
