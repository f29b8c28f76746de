package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/octobees/contact-finder/internal/dto"
	"github.com/octobees/contact-finder/internal/entity"
	"github.com/octobees/contact-finder/internal/extraction"
	"github.com/octobees/contact-finder/internal/heuristics"
	"github.com/octobees/contact-finder/internal/repository"
)

// ErrPassInProgress is returned when an ingestion pass is already running.
var ErrPassInProgress = errors.New("ingestion pass already in progress")

// CSVValidationError indicates that the provided source CSV is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

// ContactExtractor resolves the contact signals of a website.
type ContactExtractor interface {
	Extract(ctx context.Context, target string) extraction.Result
}

// LivenessProber reports whether a website answers.
type LivenessProber interface {
	Live(ctx context.Context, target string) bool
}

// IngestService runs sequential ingestion passes over a source list.
type IngestService struct {
	repo      repository.ContactsRepository
	extractor ContactExtractor
	prober    LivenessProber
	logger    *zap.Logger

	running sync.Mutex
}

// NewIngestService wires an IngestService.
func NewIngestService(repo repository.ContactsRepository, extractor ContactExtractor, prober LivenessProber, logger *zap.Logger) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{repo: repo, extractor: extractor, prober: prober, logger: logger}
}

const (
	colDomain         = "domain"
	colCommercialName = "company_commercial_name"
	colLegalName      = "company_legal_name"
	colAllNames       = "company_all_available_names"
)

var requiredSourceHeaders = []string{colDomain}

// ParseSources reads the source CSV. Columns are located by header name and
// rows whose domain has no dot are skipped.
func ParseSources(r io.Reader) ([]dto.Source, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, CSVValidationError{Message: "csv file is empty"}
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index, err := buildHeaderIndex(header)
	if err != nil {
		return nil, err
	}

	var sources []dto.Source
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		domain := column(row, index, colDomain)
		if !strings.Contains(domain, ".") {
			continue
		}
		sources = append(sources, dto.Source{
			Domain:                   domain,
			CompanyCommercialName:    column(row, index, colCommercialName),
			CompanyLegalName:         column(row, index, colLegalName),
			CompanyAllAvailableNames: splitNames(column(row, index, colAllNames)),
		})
	}
	return sources, nil
}

// RunFromFile parses the source file at path and runs a pass over it.
func (s *IngestService) RunFromFile(ctx context.Context, path string) (dto.IngestSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return dto.IngestSummary{}, fmt.Errorf("open sources: %w", err)
	}
	defer f.Close()

	sources, err := ParseSources(f)
	if err != nil {
		return dto.IngestSummary{}, err
	}
	return s.RunPass(ctx, sources)
}

// RunPass extracts and stores every live source, one at a time. Only one
// pass may run at once; a concurrent call returns ErrPassInProgress.
func (s *IngestService) RunPass(ctx context.Context, sources []dto.Source) (dto.IngestSummary, error) {
	if !s.running.TryLock() {
		return dto.IngestSummary{}, ErrPassInProgress
	}
	defer s.running.Unlock()
	return s.run(ctx, sources)
}

// Start claims the pass slot and runs the pass in the background, reporting
// the outcome to done when it is non-nil.
func (s *IngestService) Start(ctx context.Context, sources []dto.Source, done func(dto.IngestSummary, error)) error {
	if !s.running.TryLock() {
		return ErrPassInProgress
	}
	go func() {
		defer s.running.Unlock()
		summary, err := s.run(ctx, sources)
		if done != nil {
			done(summary, err)
		}
	}()
	return nil
}

func (s *IngestService) run(ctx context.Context, sources []dto.Source) (dto.IngestSummary, error) {
	summary := dto.IngestSummary{Total: len(sources)}
	s.logger.Info("ingestion pass started", zap.Int("sources", len(sources)))

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("ingestion pass cancelled", zap.Int("stored", summary.Stored))
			return summary, err
		}
		s.ingest(ctx, src, &summary)
	}

	s.logger.Info("ingestion pass finished",
		zap.Int("total", summary.Total),
		zap.Int("stored", summary.Stored),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed_extractions", summary.FailedExtractions),
		zap.Int("store_errors", summary.StoreErrors),
	)
	return summary, nil
}

func (s *IngestService) ingest(ctx context.Context, src dto.Source, summary *dto.IngestSummary) {
	target, err := heuristics.CanonicalURL(src.Domain)
	if err != nil {
		summary.Skipped++
		s.logger.Debug("source skipped", zap.String("domain", src.Domain), zap.Error(err))
		return
	}

	if !s.prober.Live(ctx, target) {
		summary.Skipped++
		s.logger.Info("website offline", zap.String("url", target))
		return
	}

	result := s.extractor.Extract(ctx, target)
	if !result.Success {
		summary.FailedExtractions++
	}

	contact := &entity.Contact{
		URL:                      target,
		CompanyCommercialName:    src.CompanyCommercialName,
		CompanyLegalName:         src.CompanyLegalName,
		CompanyAllAvailableNames: src.CompanyAllAvailableNames,
	}
	result.ApplyTo(contact)

	stored, err := s.repo.Upsert(ctx, contact)
	if err != nil {
		summary.StoreErrors++
		s.logger.Error("store contact failed", zap.String("url", target), zap.Error(err))
		return
	}
	summary.Stored++
	s.logger.Debug("contact stored",
		zap.Int64("id", stored.ID),
		zap.String("url", stored.URL),
		zap.Bool("success", stored.Success),
		zap.Int("phones", len(stored.Phones)),
	)
}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}

	missing := make([]string, 0)
	for _, required := range requiredSourceHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, CSVValidationError{Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return index, nil
}

func column(row []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func splitNames(value string) []string {
	if value == "" {
		return []string{}
	}
	names := make([]string, 0)
	for _, name := range strings.Split(value, "|") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
