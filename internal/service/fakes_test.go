package service

import (
	"context"
	"errors"
	"sync"

	"github.com/octobees/contact-finder/internal/entity"
	"github.com/octobees/contact-finder/internal/extraction"
	"github.com/octobees/contact-finder/internal/repository"
)

type fakeRepo struct {
	mu        sync.Mutex
	text      []entity.Contact
	textErr   error
	substr    []entity.Contact
	substrErr error
	byID      map[int64]entity.Contact
	byIDErr   error
	upsertErr map[string]error

	upserted    []entity.Contact
	upsertCalls int
	nextID      int64
	textCalls   int
	idCalls     int
	substrCalls int
}

func (f *fakeRepo) EnsureSchema(ctx context.Context) error { return nil }

func (f *fakeRepo) Upsert(ctx context.Context, c *entity.Contact) (*entity.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.upsertErr[c.URL]; err != nil {
		return nil, err
	}
	f.upsertCalls++
	stored := *c
	for i, existing := range f.upserted {
		if existing.URL == c.URL {
			stored.ID = existing.ID
			stored.CreatedAt = existing.CreatedAt
			f.upserted[i] = stored
			return &stored, nil
		}
	}
	f.nextID++
	stored.ID = f.nextID
	f.upserted = append(f.upserted, stored)
	return &stored, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id int64) (*entity.Contact, error) {
	f.idCalls++
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	c, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrContactNotFound
	}
	return &c, nil
}

func (f *fakeRepo) FindByURL(ctx context.Context, url string) (*entity.Contact, error) {
	return nil, repository.ErrContactNotFound
}

func (f *fakeRepo) TextSearch(ctx context.Context, query string, limit int) ([]entity.Contact, error) {
	f.textCalls++
	return f.text, f.textErr
}

func (f *fakeRepo) SubstringSearch(ctx context.Context, query string, limit int) ([]entity.Contact, error) {
	f.substrCalls++
	return f.substr, f.substrErr
}

type fakeExtractor struct {
	mu      sync.Mutex
	results map[string]extraction.Result
	calls   []string
	started chan struct{}
	block   chan struct{}
}

func (f *fakeExtractor) Extract(ctx context.Context, target string) extraction.Result {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.calls = append(f.calls, target)
	f.mu.Unlock()
	if r, ok := f.results[target]; ok {
		return r
	}
	return extraction.Result{URL: target, Success: true, Phones: []string{}}
}

type fakeProber struct {
	offline map[string]bool
}

func (f fakeProber) Live(ctx context.Context, target string) bool {
	return !f.offline[target]
}

var errStoreDown = errors.New("database not connected")
