package archive

import (
	"fmt"
	"strings"

	"StarlinkWatch/internal/domain"
)

// DigestTitle is the heading every digest starts with.
func DigestTitle(date string) string {
	return "Starlink Daily Digest — " + date
}

// ParseDigest reads the title, the Summary of Changes table and the per-domain
// archive blocks out of a digest document. Missing parts stay zero.
func ParseDigest(markdown string) domain.Digest {
	d := domain.Digest{
		Markdown: markdown,
		Updates:  make(map[domain.Domain]bool, len(domain.Domains)),
		Archive:  make(map[domain.Domain][]domain.ArchiveLine, len(domain.Domains)),
	}

	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if d.Title == "" && strings.HasPrefix(line, "#") {
			d.Title = strings.TrimSpace(strings.TrimLeft(line, "#"))
			continue
		}
		if dom, updated, ok := summaryRow(line); ok {
			d.Updates[dom] = updated
		}
	}

	for _, dom := range domain.Domains {
		if lines := Lines(markdown, dom); len(lines) > 0 {
			d.Archive[dom] = lines
		}
	}
	return d
}

// summaryRow parses `| Environmental | Yes |`.
func summaryRow(line string) (domain.Domain, bool, bool) {
	if !strings.HasPrefix(line, "|") {
		return "", false, false
	}
	cells := strings.Split(strings.Trim(line, "|"), "|")
	if len(cells) < 2 {
		return "", false, false
	}
	dom, err := domain.ParseDomain(cells[0])
	if err != nil {
		return "", false, false
	}
	answer := strings.ToLower(strings.TrimSpace(cells[1]))
	return dom, strings.HasPrefix(answer, "yes"), true
}

// NoChangeDigest is written when no item survives filtering; it keeps a dated
// entry so quiet days stay visible without calling the summarizer.
func NoChangeDigest(date string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", DigestTitle(date))
	for _, dom := range domain.Domains {
		fmt.Fprintf(&b, "### %s\n- No new Starlink-specific developments since last check.\n\n", dom)
	}
	b.WriteString("## Summary of Changes\n")
	b.WriteString("| Domain | Updates Detected |\n")
	b.WriteString("|-------|-------------------|\n")
	for _, dom := range domain.Domains {
		fmt.Fprintf(&b, "| %s | No |\n", dom)
	}
	for _, dom := range domain.Domains {
		fmt.Fprintf(&b, "\n**Archive — %s**\nNo change\n", dom)
	}
	return b.String()
}
