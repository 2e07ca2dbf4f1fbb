package domain

import (
	"fmt"
	"strings"
)

// Domain is one digest risk category; each has its own archive file.
type Domain string

const (
	Environmental Domain = "Environmental"
	Cybersecurity Domain = "Cybersecurity"
	Astronomical  Domain = "Astronomical"
)

// Domains is the fixed set, in digest order.
var Domains = []Domain{Environmental, Cybersecurity, Astronomical}

// ParseDomain matches a domain name case-insensitively.
func ParseDomain(name string) (Domain, error) {
	for _, d := range Domains {
		if strings.EqualFold(string(d), strings.TrimSpace(name)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown domain %q", name)
}

// ArchiveHeading is the first line of a fresh archive file.
func (d Domain) ArchiveHeading() string {
	return fmt.Sprintf("# %s — Archive", d)
}

// ArchiveLine is a bullet `- date | headline | source | url`, kept verbatim.
type ArchiveLine struct {
	Text     string `json:"text"`
	Date     string `json:"date"`
	Headline string `json:"headline"`
	Source   string `json:"source"`
	URL      string `json:"url"`
}

// Digest is the structured view of one generated digest document.
type Digest struct {
	Title    string
	Markdown string
	Updates  map[Domain]bool
	Archive  map[Domain][]ArchiveLine
}
