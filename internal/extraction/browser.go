package extraction

import (
	"context"
	"fmt"
	"time"
)

// Browser opens isolated browsing sessions. Each extraction owns exactly one
// session for its whole lifetime.
type Browser interface {
	NewSession(ctx context.Context) (Session, error)
}

// Session drives a single page.
type Session interface {
	// Navigate loads url and waits until the document body is ready.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// DismissOverlay clicks a button-like element labelled with the word
	// label, never a link that navigates. It reports whether anything was
	// clicked.
	DismissOverlay(ctx context.Context, label string) (bool, error)
	// Evaluate runs a script in the page and decodes its JSON result into out.
	Evaluate(ctx context.Context, expr string, out any) error
	Close() error
}

// Snapshot is the rendered state of a page.
type Snapshot struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
	Text string `json:"text"`
}

const snapshotScript = `(() => ({
	url: window.location.href,
	html: document.documentElement ? document.documentElement.outerHTML : "",
	text: document.body ? document.body.innerText : ""
}))()`

// TakeSnapshot captures the current page of s.
func TakeSnapshot(ctx context.Context, s Session) (Snapshot, error) {
	var snap Snapshot
	if err := s.Evaluate(ctx, snapshotScript, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot page: %w", err)
	}
	return snap, nil
}
