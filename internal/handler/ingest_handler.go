package handler

import (
	"context"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/contact-finder/internal/dto"
	"github.com/octobees/contact-finder/internal/middleware"
	"github.com/octobees/contact-finder/internal/service"
)

// PassStarter launches background ingestion passes.
type PassStarter interface {
	Start(ctx context.Context, sources []dto.Source, done func(dto.IngestSummary, error)) error
}

// IngestHandler lets operators trigger ingestion passes.
type IngestHandler struct {
	ingest      PassStarter
	sourcesPath string
	baseCtx     context.Context
	logger      *zap.Logger
}

// NewIngestHandler wires the handler. Passes run under baseCtx so they stop
// with the process rather than with the triggering request.
func NewIngestHandler(baseCtx context.Context, ingest PassStarter, sourcesPath string, logger *zap.Logger) *IngestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestHandler{ingest: ingest, sourcesPath: sourcesPath, baseCtx: baseCtx, logger: logger}
}

// Upload handles POST /admin/ingest/upload with a multipart "file" CSV.
func (h *IngestHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	sources, err := service.ParseSources(file)
	if err != nil {
		return FromError(c, err, "failed to process csv")
	}
	return h.start(c, sources)
}

// Run handles POST /admin/ingest/run using the configured source file.
func (h *IngestHandler) Run(c echo.Context) error {
	file, err := os.Open(h.sourcesPath)
	if err != nil {
		h.logger.Error("open sources failed", zap.String("path", h.sourcesPath), zap.Error(err))
		return Error(c, http.StatusInternalServerError, "sources file unavailable")
	}
	defer file.Close()

	sources, err := service.ParseSources(file)
	if err != nil {
		return FromError(c, err, "failed to read sources")
	}
	return h.start(c, sources)
}

func (h *IngestHandler) start(c echo.Context, sources []dto.Source) error {
	rid := middleware.RequestIDFromContext(c)
	operator, _ := c.Get(middleware.ContextKeyOperatorEmail).(string)

	err := h.ingest.Start(h.baseCtx, sources, func(summary dto.IngestSummary, err error) {
		if err != nil {
			h.logger.Warn("triggered pass ended early", zap.String("request_id", rid), zap.Error(err))
			return
		}
		h.logger.Info("triggered pass finished",
			zap.String("request_id", rid),
			zap.String("operator", operator),
			zap.Int("stored", summary.Stored),
			zap.Int("total", summary.Total),
		)
	})
	if err != nil {
		return FromError(c, err, "unable to start ingestion")
	}

	return Success(c, http.StatusAccepted, "ingestion started", dto.IngestAccepted{Sources: len(sources)})
}
