package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ChromeConfig tunes the local Chrome instance used for extraction.
type ChromeConfig struct {
	Headless  bool
	UserAgent string
	ExecPath  string
}

// ChromeBrowser is a Browser backed by a local Chrome driven through chromedp.
// Every session gets its own browser process so state never leaks between sites.
type ChromeBrowser struct {
	logger  *zap.Logger
	options []chromedp.ExecAllocatorOption
}

// NewChromeBrowser builds the allocator options once; processes are started lazily per session.
func NewChromeBrowser(cfg ChromeConfig, logger *zap.Logger) *ChromeBrowser {
	if logger == nil {
		logger = zap.NewNop()
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.UserAgent(ua),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
	)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	return &ChromeBrowser{logger: logger, options: opts}
}

// NewSession starts a browser process and opens a tab in it.
func (b *ChromeBrowser) NewSession(ctx context.Context) (Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, b.options...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			b.logger.Debug("chromedp", zap.String("detail", fmt.Sprintf(format, args...)))
		}),
	)

	cancel := func() {
		tabCancel()
		allocCancel()
	}

	// The first Run starts the browser.
	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &chromeSession{ctx: tabCtx, cancel: cancel}, nil
}

type chromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// actionTimeout bounds in-page script evaluation.
const actionTimeout = 10 * time.Second

func (s *chromeSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
}

func (s *chromeSession) DismissOverlay(ctx context.Context, label string) (bool, error) {
	var items []clickable
	if err := s.run(ctx, actionTimeout, chromedp.Evaluate(listClickablesScript, &items)); err != nil {
		return false, err
	}
	i := pickDismissTarget(items, label)
	if i < 0 {
		return false, nil
	}

	text, err := json.Marshal(items[i].Text)
	if err != nil {
		return false, err
	}
	var clicked bool
	if err := s.run(ctx, actionTimeout, chromedp.Evaluate(fmt.Sprintf(clickScript, i, text), &clicked)); err != nil {
		return false, err
	}
	return clicked, nil
}

func (s *chromeSession) Evaluate(ctx context.Context, expr string, out any) error {
	return s.run(ctx, actionTimeout, chromedp.Evaluate(expr, out))
}

func (s *chromeSession) Close() error {
	defer s.cancel()
	return chromedp.Cancel(s.ctx)
}

// run executes actions on the tab bounded by timeout and by the caller's ctx.
func (s *chromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}
