package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/octobees/contact-finder/internal/config"
	"github.com/octobees/contact-finder/internal/database"
	"github.com/octobees/contact-finder/internal/extraction"
	"github.com/octobees/contact-finder/internal/logging"
	"github.com/octobees/contact-finder/internal/repository"
	"github.com/octobees/contact-finder/internal/service"
)

// deps holds what a single command needs. The store is dialled once; the CLI
// does not wait for an unreachable database.
type deps struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *database.Handle
	repo   *repository.PGXContactsRepository
}

func loadDeps(ctx context.Context, withStore bool) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = logging.New(cfg.AppMode); err != nil {
			return nil, err
		}
	}

	d := &deps{cfg: cfg, logger: logger}
	if !withStore {
		return d, nil
	}

	d.store = database.NewHandle(cfg.Database.URL, cfg.Database.RetryDelay, logger.Named("database"), nil)
	if st := d.store.Connect(ctx); st.State != database.StateConnected {
		return nil, fmt.Errorf("connect database: %w", st.Err)
	}
	d.repo = repository.NewPGXContactsRepository(d.store)
	if err := d.repo.EnsureSchema(ctx); err != nil {
		d.store.Close()
		return nil, err
	}
	return d, nil
}

func (d *deps) close() {
	if d.store != nil {
		d.store.Close()
	}
	_ = d.logger.Sync()
}

func (d *deps) extractor() *extraction.Extractor {
	browser := extraction.NewChromeBrowser(extraction.ChromeConfig{
		Headless:  d.cfg.Browser.Headless,
		UserAgent: d.cfg.Browser.UserAgent,
		ExecPath:  d.cfg.Browser.ExecPath,
	}, d.logger.Named("browser"))
	return extraction.NewExtractor(browser, d.logger.Named("extraction"),
		extraction.WithTimeouts(d.cfg.Browser.PageLoadTimeout, d.cfg.Browser.FallbackLoadTimeout),
		extraction.WithSettleDelay(d.cfg.Browser.SettleDelay),
		extraction.WithPhoneRegion(d.cfg.Browser.PhoneRegion),
	)
}

func (d *deps) ingestService() *service.IngestService {
	prober := service.NewHTTPProber(&http.Client{}, d.cfg.Ingest.LivenessTimeout, d.logger.Named("liveness"))
	return service.NewIngestService(d.repo, d.extractor(), prober, d.logger.Named("ingest"))
}

func (d *deps) searchService() *service.SearchService {
	return service.NewSearchService(d.repo, service.SearchOptions{
		CandidateLimit: d.cfg.Search.CandidateLimit,
		Threshold:      d.cfg.Search.FuzzyThreshold,
	}, d.logger.Named("search"))
}
