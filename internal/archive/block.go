// Package archive extracts per-domain incident lines from generated digests and
// merges them into append-only archive files.
package archive

import (
	"regexp"
	"strings"

	"StarlinkWatch/internal/domain"
)

// maxBlockLines bounds how far a block scan looks past its label.
const maxBlockLines = 500

var labelExpr = regexp.MustCompile(`(?i)^(?:#{1,6}\s*)?(?:\*\*)?\s*archive\s*[—–-]+\s*([a-z]+)\s*:?\s*(?:\*\*)?\s*:?\s*$`)

type scanState int

const (
	stateStart scanState = iota
	stateInside
	stateDone
)

// LabelDomain reports which domain an archive label line names, if any.
func LabelDomain(line string) (domain.Domain, bool) {
	m := labelExpr.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	d, err := domain.ParseDomain(m[1])
	if err != nil {
		return "", false
	}
	return d, true
}

// ExtractBlock returns the raw lines between the archive label for d and the
// next archive label, end of document, or the look-ahead bound. found is false
// when the label never appears.
func ExtractBlock(doc string, d domain.Domain) (lines []string, found bool) {
	docLines := strings.Split(doc, "\n")
	state := stateStart
	for i := 0; i < len(docLines) && state != stateDone; i++ {
		line := docLines[i]
		switch state {
		case stateStart:
			if label, ok := LabelDomain(line); ok && label == d {
				state = stateInside
				found = true
			}
		case stateInside:
			if _, ok := LabelDomain(line); ok {
				state = stateDone
				continue
			}
			lines = append(lines, strings.TrimRight(line, "\r"))
			if len(lines) >= maxBlockLines {
				state = stateDone
			}
		}
	}
	return lines, found
}
