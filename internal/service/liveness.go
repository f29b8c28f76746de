package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultLivenessTimeout = 10 * time.Second

// HTTPProber reports a host as live when a HEAD request answers 200.
type HTTPProber struct {
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewHTTPProber builds a prober; a nil client means http.Client defaults.
func NewHTTPProber(client *http.Client, timeout time.Duration, logger *zap.Logger) *HTTPProber {
	if timeout <= 0 {
		timeout = defaultLivenessTimeout
	}
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPProber{client: client, timeout: timeout, logger: logger}
}

// Live issues a HEAD request to target within the probe timeout.
func (p *HTTPProber) Live(ctx context.Context, target string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		p.logger.Debug("liveness request rejected", zap.String("url", target), zap.Error(err))
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("liveness probe failed", zap.String("url", target), zap.Error(err))
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
