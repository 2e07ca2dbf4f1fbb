package celestrak

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"StarlinkWatch/internal/ports"
)

var decayedIDExpr = regexp.MustCompile(`\bSTARLINK-\d+\b`)

var _ ports.DecayedSource = (*Client)(nil)

// DecayedIDs downloads the decayed listing and extracts Starlink designations.
func (c *Client) DecayedIDs(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, c.decayedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch decayed listing: %w", err)
	}
	defer body.Close()

	ids, err := ExtractDecayed(body)
	if err != nil {
		return nil, fmt.Errorf("parse decayed listing: %w", err)
	}
	c.debug("decayed listing parsed", "ids", len(ids))
	return ids, nil
}

// ExtractDecayed returns the distinct identifiers in document order.
func ExtractDecayed(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	doc.Find("script, style").Remove()

	// Join text nodes with spaces so adjacent table cells never fuse.
	var parts []string
	doc.Find("*").Contents().Each(func(_ int, sel *goquery.Selection) {
		if goquery.NodeName(sel) == "#text" {
			parts = append(parts, sel.Text())
		}
	})
	text := strings.ToUpper(strings.Join(parts, " "))

	seen := map[string]struct{}{}
	var ids []string
	for _, id := range decayedIDExpr.FindAllString(text, -1) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
