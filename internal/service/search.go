package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/octobees/contact-finder/internal/dto"
	"github.com/octobees/contact-finder/internal/entity"
	"github.com/octobees/contact-finder/internal/repository"
	"github.com/octobees/contact-finder/internal/service/ranking"
)

// ErrEmptyQuery is returned when a search is issued with a blank query.
var ErrEmptyQuery = errors.New("query must not be empty")

const (
	defaultSearchLimit    = 20
	maxSearchLimit        = 100
	defaultCandidateLimit = 200
	statusSuccess         = "success"
	directHitScore        = "1.000"
)

// SearchOptions tunes candidate retrieval and fuzzy filtering.
type SearchOptions struct {
	CandidateLimit int
	Threshold      float64
}

// SearchService answers read-only queries against the contact store.
type SearchService struct {
	repo           repository.ContactsRepository
	scorer         ranking.FuzzyScorer
	candidateLimit int
	logger         *zap.Logger
}

// NewSearchService creates a SearchService.
func NewSearchService(repo repository.ContactsRepository, opts SearchOptions, logger *zap.Logger) *SearchService {
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = defaultCandidateLimit
	}
	if opts.Threshold <= 0 {
		opts.Threshold = ranking.DefaultThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		repo:           repo,
		scorer:         ranking.FuzzyScorer{Threshold: opts.Threshold},
		candidateLimit: opts.CandidateLimit,
		logger:         logger,
	}
}

// Search retrieves candidates tier by tier, filters them by distance and
// fuzzy score, then sorts and paginates the survivors.
func (s *SearchService) Search(ctx context.Context, params dto.SearchParams) (dto.SearchResult, error) {
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return dto.SearchResult{}, ErrEmptyQuery
	}
	params = normalizeSearchParams(params)

	candidates, direct, err := s.retrieve(ctx, query)
	if err != nil {
		return dto.SearchResult{}, err
	}
	if direct != nil {
		return dto.SearchResult{
			Status:  statusSuccess,
			Total:   1,
			Page:    params.Page,
			Pages:   1,
			Results: []dto.ScoredContact{{Contact: *direct, Score: directHitScore}},
		}, nil
	}

	if params.Near != nil {
		origin := entity.Coords{Lat: params.Near.Lat, Lng: params.Near.Lng}
		candidates = ranking.WithinDistance(candidates, origin, params.Near.MaxDistance)
	}

	scored := make([]ranking.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if score, ok := s.scorer.Score(query, c); ok {
			scored = append(scored, ranking.Candidate{Contact: c, Score: score})
		}
	}
	ranking.Sort(scored, params.SortBy, params.Order)

	start, end, pages := ranking.Page(len(scored), params.Page, params.Limit)
	results := make([]dto.ScoredContact, 0, end-start)
	for _, c := range scored[start:end] {
		results = append(results, dto.ScoredContact{
			Contact: c.Contact,
			Score:   strconv.FormatFloat(c.Relevance(), 'f', 3, 64),
		})
	}

	return dto.SearchResult{
		Status:  statusSuccess,
		Total:   len(scored),
		Page:    params.Page,
		Pages:   pages,
		Results: results,
	}, nil
}

// GetByID returns the contact with the given id or repository.ErrContactNotFound.
func (s *SearchService) GetByID(ctx context.Context, id int64) (*entity.Contact, error) {
	return s.repo.FindByID(ctx, id)
}

// retrieve runs the candidate tiers in order; the first non-empty tier wins.
// A direct id hit is returned separately.
func (s *SearchService) retrieve(ctx context.Context, query string) ([]entity.Contact, *entity.Contact, error) {
	found, err := s.repo.TextSearch(ctx, query, s.candidateLimit)
	if err != nil {
		s.logger.Warn("text search failed", zap.String("query", query), zap.Error(err))
	} else if len(found) > 0 {
		return found, nil, nil
	}

	if id, perr := strconv.ParseInt(query, 10, 64); perr == nil && id > 0 {
		contact, err := s.repo.FindByID(ctx, id)
		switch {
		case err == nil:
			return nil, contact, nil
		case !errors.Is(err, repository.ErrContactNotFound):
			s.logger.Warn("id lookup failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	found, err = s.repo.SubstringSearch(ctx, query, s.candidateLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("search contacts: %w", err)
	}
	return found, nil, nil
}

func normalizeSearchParams(p dto.SearchParams) dto.SearchParams {
	if p.Limit <= 0 {
		p.Limit = defaultSearchLimit
	}
	if p.Limit > maxSearchLimit {
		p.Limit = maxSearchLimit
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	if strings.TrimSpace(p.SortBy) == "" {
		p.SortBy = ranking.SortByScore
	}
	p.Order = strings.ToLower(strings.TrimSpace(p.Order))
	if p.Order != ranking.OrderAsc {
		p.Order = ranking.OrderDesc
	}
	if p.Near != nil && p.Near.MaxDistance <= 0 {
		near := *p.Near
		near.MaxDistance = ranking.DefaultMaxDistance
		p.Near = &near
	}
	return p
}
