package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"StarlinkWatch/internal/domain"
	"StarlinkWatch/internal/scanner"
)

const maxFeedBytes = 10 << 20

// FeedScanner downloads an RSS or Atom feed and returns entries newer than the
// request cutoff. Entries without a parseable date count as published now.
type FeedScanner struct {
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewFeedScanner wires an HTTP client; a nil client gets a 30s timeout.
func NewFeedScanner(client *http.Client, logger *slog.Logger) *FeedScanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FeedScanner{client: client, logger: logger, now: time.Now}
}

// Name identifies the strategy inside the registry.
func (f *FeedScanner) Name() string {
	return "rss"
}

// Scan fetches one feed.
func (f *FeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.CandidateItem, error) {
	raw, err := f.fetch(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", req.FeedName, err)
	}

	entries, err := parseFeed(raw)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", req.FeedName, err)
	}

	now := f.now().UTC()
	items := make([]domain.CandidateItem, 0, len(entries))
	for _, e := range entries {
		published, ok := parseDate(e.Published)
		if !ok {
			published = now
		}
		if published.Before(req.Since) {
			continue
		}
		items = append(items, domain.CandidateItem{
			Source:      req.FeedName,
			Title:       e.Title,
			Summary:     e.Summary,
			Link:        e.Link,
			PublishedAt: published,
		})
	}

	if f.logger != nil {
		f.logger.Debug("feed scanned", "feed", req.FeedName, "entries", len(entries), "recent", len(items))
	}
	return items, nil
}

func (f *FeedScanner) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "StarlinkWatch/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return raw, nil
}
