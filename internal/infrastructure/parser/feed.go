package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// entry is one item of an RSS or Atom document, before date filtering.
type entry struct {
	Title     string
	Link      string
	Summary   string
	Published string
}

// parseFeed auto-detects RSS 2.0 (or RDF) versus Atom 1.0 from the root element.
func parseFeed(data []byte) ([]entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("feed: empty document")
	}

	switch detectFormat(trimmed) {
	case "rss":
		return parseRSS(trimmed)
	case "atom":
		return parseAtom(trimmed)
	default:
		return nil, fmt.Errorf("feed: unknown format (expected <rss> or <feed>)")
	}
}

func detectFormat(data []byte) string {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = false
	for {
		tok, err := d.Token()
		if err != nil {
			return ""
		}
		if se, ok := tok.(xml.StartElement); ok {
			switch strings.ToLower(se.Name.Local) {
			case "rss", "rdf":
				return "rss"
			case "feed":
				return "atom"
			default:
				return ""
			}
		}
	}
}

// decodeXML tolerates the HTML entities many feeds carry unescaped.
func decodeXML(data []byte, v any) error {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = false
	d.Entity = xml.HTMLEntity
	return d.Decode(v)
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Date        string `xml:"date"` // dc:date
}

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
	Items []rssItem `xml:"item"` // RSS 1.0 puts items beside the channel
}

func parseRSS(data []byte) ([]entry, error) {
	var doc rssDocument
	if err := decodeXML(data, &doc); err != nil {
		return nil, fmt.Errorf("feed: parse rss: %w", err)
	}

	items := append(doc.Channel.Items, doc.Items...)
	out := make([]entry, 0, len(items))
	for _, it := range items {
		published := strings.TrimSpace(it.PubDate)
		if published == "" {
			published = strings.TrimSpace(it.Date)
		}
		out = append(out, entry{
			Title:     strings.TrimSpace(it.Title),
			Link:      strings.TrimSpace(it.Link),
			Summary:   strings.TrimSpace(it.Description),
			Published: published,
		})
	}
	return out, nil
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

type atomDocument struct {
	Entries []struct {
		Title     string     `xml:"title"`
		Links     []atomLink `xml:"link"`
		Summary   string     `xml:"summary"`
		Content   string     `xml:"content"`
		Published string     `xml:"published"`
		Updated   string     `xml:"updated"`
	} `xml:"entry"`
}

func parseAtom(data []byte) ([]entry, error) {
	var doc atomDocument
	if err := decodeXML(data, &doc); err != nil {
		return nil, fmt.Errorf("feed: parse atom: %w", err)
	}

	out := make([]entry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		summary := strings.TrimSpace(e.Summary)
		if summary == "" {
			summary = strings.TrimSpace(e.Content)
		}
		published := strings.TrimSpace(e.Published)
		if published == "" {
			published = strings.TrimSpace(e.Updated)
		}
		out = append(out, entry{
			Title:     strings.TrimSpace(e.Title),
			Link:      atomEntryLink(e.Links),
			Summary:   summary,
			Published: published,
		})
	}
	return out, nil
}

func atomEntryLink(links []atomLink) string {
	for _, l := range links {
		if l.Rel == "alternate" || l.Rel == "" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate tries the layouts feeds commonly use; ok is false when none fit.
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
