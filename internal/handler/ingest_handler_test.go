package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-finder/internal/dto"
	"github.com/octobees/contact-finder/internal/service"
)

type stubStarter struct {
	err     error
	sources []dto.Source
	ctx     context.Context
}

func (s *stubStarter) Start(ctx context.Context, sources []dto.Source, done func(dto.IngestSummary, error)) error {
	if s.err != nil {
		return s.err
	}
	s.ctx = ctx
	s.sources = sources
	if done != nil {
		done(dto.IngestSummary{Total: len(sources), Stored: len(sources)}, nil)
	}
	return nil
}

func multipartRequest(t *testing.T, field, filename, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/ingest/upload", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req, httptest.NewRecorder()
}

const validSourcesCSV = "domain,company_commercial_name,company_legal_name,company_all_available_names\nacme.com,Acme,Acme LLC,Acme|Acme LLC\nbeta.io,Beta,,\n"

func TestIngestHandler_Upload(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/admin/ingest/upload", nil)
		rec := httptest.NewRecorder()

		h := NewIngestHandler(context.Background(), &stubStarter{}, "", nil)
		_ = h.Upload(e.NewContext(req, rec))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("invalid csv", func(t *testing.T) {
		e := echo.New()
		req, rec := multipartRequest(t, "file", "sources.csv", "name,address\nAcme,Main St\n")

		h := NewIngestHandler(context.Background(), &stubStarter{}, "", nil)
		_ = h.Upload(e.NewContext(req, rec))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid csv, got %d", rec.Code)
		}
	})

	t.Run("pass already running", func(t *testing.T) {
		e := echo.New()
		req, rec := multipartRequest(t, "file", "sources.csv", validSourcesCSV)

		h := NewIngestHandler(context.Background(), &stubStarter{err: service.ErrPassInProgress}, "", nil)
		_ = h.Upload(e.NewContext(req, rec))
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("accepted", func(t *testing.T) {
		e := echo.New()
		req, rec := multipartRequest(t, "file", "sources.csv", validSourcesCSV)

		type ctxKey struct{}
		base := context.WithValue(context.Background(), ctxKey{}, "app")
		starter := &stubStarter{}
		h := NewIngestHandler(base, starter, "", nil)
		if err := h.Upload(e.NewContext(req, rec)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", rec.Code)
		}
		if len(starter.sources) != 2 || starter.sources[0].Domain != "acme.com" {
			t.Fatalf("unexpected sources: %+v", starter.sources)
		}
		if starter.ctx.Value(ctxKey{}) != "app" {
			t.Fatalf("expected pass to run under the base context")
		}
	})
}

func TestIngestHandler_Run(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.csv")
	if err := os.WriteFile(path, []byte(validSourcesCSV), 0o600); err != nil {
		t.Fatalf("write sources: %v", err)
	}

	tests := map[string]struct {
		path       string
		starter    *stubStarter
		expectCode int
	}{
		"missing file": {path: filepath.Join(dir, "nope.csv"), starter: &stubStarter{}, expectCode: http.StatusInternalServerError},
		"busy":         {path: path, starter: &stubStarter{err: service.ErrPassInProgress}, expectCode: http.StatusConflict},
		"accepted":     {path: path, starter: &stubStarter{}, expectCode: http.StatusAccepted},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/admin/ingest/run", nil)
			rec := httptest.NewRecorder()

			h := NewIngestHandler(context.Background(), tt.starter, tt.path, nil)
			if err := h.Run(e.NewContext(req, rec)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d", tt.expectCode, rec.Code)
			}
		})
	}
}
