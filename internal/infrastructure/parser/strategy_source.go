package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"StarlinkWatch/internal/config"
	"StarlinkWatch/internal/domain"
	"StarlinkWatch/internal/ports"
	"StarlinkWatch/internal/scanner"
)

const defaultScanner = "rss"

// StrategySource implements ItemSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	feeds    []config.FeedConfig
	logger   *slog.Logger
}

var _ ports.ItemSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined feeds.
func NewStrategySource(reg *scanner.Registry, feeds []config.FeedConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		feeds:    feeds,
		logger:   log,
	}
}

// FetchSince iterates over configured feeds and executes their scanners.
// Any feed failure aborts the whole fetch.
func (s *StrategySource) FetchSince(ctx context.Context, since time.Time) ([]domain.CandidateItem, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch feeds", "feeds", len(s.feeds), "since", since.Format(time.RFC3339))

	var aggregated []domain.CandidateItem
	for _, feed := range s.feeds {
		name := feed.Scanner
		if name == "" {
			name = defaultScanner
		}
		strategy, err := s.registry.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", feedName(feed), err)
		}

		results, err := strategy.Scan(ctx, scanner.Request{
			Since:    since,
			FeedName: feedName(feed),
			URL:      feed.URL,
		})
		if err != nil {
			return nil, fmt.Errorf("scan feed %s: %w", feedName(feed), err)
		}

		s.debug("feed produced items", "feed", feedName(feed), "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("strategy source done", "total_items", len(aggregated))
	return aggregated, nil
}

func feedName(feed config.FeedConfig) string {
	if feed.Name != "" {
		return feed.Name
	}
	return feed.URL
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
