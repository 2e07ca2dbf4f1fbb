package archive

import (
	"strings"

	"StarlinkWatch/internal/domain"
)

const bulletMarker = "- "

// ParseBullet parses one `- date | headline | source | url` line.
func ParseBullet(line string) (domain.ArchiveLine, bool) {
	text := strings.TrimSpace(line)
	if !strings.HasPrefix(text, bulletMarker) {
		return domain.ArchiveLine{}, false
	}

	fields := strings.Split(strings.TrimPrefix(text, bulletMarker), "|")
	if len(fields) < 4 {
		return domain.ArchiveLine{}, false
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	n := len(fields)
	entry := domain.ArchiveLine{
		Text:     text,
		Date:     fields[0],
		Headline: strings.Join(fields[1:n-2], " | "),
		Source:   fields[n-2],
		URL:      fields[n-1],
	}
	if entry.Date == "" || entry.Headline == "" || entry.URL == "" {
		return domain.ArchiveLine{}, false
	}
	return entry, true
}

// ParseBullets keeps the well-formed bullet lines, in order.
func ParseBullets(lines []string) []domain.ArchiveLine {
	var out []domain.ArchiveLine
	for _, line := range lines {
		if entry, ok := ParseBullet(line); ok {
			out = append(out, entry)
		}
	}
	return out
}

// Lines extracts and parses the archive block for d.
func Lines(doc string, d domain.Domain) []domain.ArchiveLine {
	block, found := ExtractBlock(doc, d)
	if !found {
		return nil
	}
	return ParseBullets(block)
}
