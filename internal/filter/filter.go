package filter

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"StarlinkWatch/internal/domain"
)

// Filter evaluates a rule set against item text. Safe for concurrent use.
type Filter struct {
	positive  []Rule
	negative  []Rule
	criticism []Rule
	strip     *bluemonday.Policy
}

// New splits rules by kind, preserving their order.
func New(rules RuleSet) *Filter {
	f := &Filter{strip: bluemonday.StrictPolicy()}
	for _, r := range rules {
		if r.Pattern == nil {
			continue
		}
		switch r.Kind {
		case Positive:
			f.positive = append(f.positive, r)
		case Negative:
			f.negative = append(f.negative, r)
		case Criticism:
			f.criticism = append(f.criticism, r)
		}
	}
	return f
}

// Default returns the Starlink filter.
func Default() *Filter {
	return New(StarlinkRules())
}

// InScope reports whether an item is on topic, not about an excluded program,
// and framed as a risk or incident. Evaluation short-circuits in that order.
func (f *Filter) InScope(title, summary, link string) bool {
	text := f.normalize(title, summary, link)

	if !anyMatch(f.positive, text) {
		return false
	}
	for _, r := range f.negative {
		if excludes(r, text) {
			return false
		}
	}
	return anyMatch(f.criticism, text)
}

// Select keeps the in-scope items, preserving order.
func (f *Filter) Select(items []domain.CandidateItem) []domain.CandidateItem {
	kept := make([]domain.CandidateItem, 0, len(items))
	for _, it := range items {
		if f.InScope(it.Title, it.Summary, it.Link) {
			kept = append(kept, it)
		}
	}
	return kept
}

// normalize strips markup, lower-cases and collapses whitespace so patterns
// see one line of plain text.
func (f *Filter) normalize(parts ...string) string {
	joined := strings.Join(parts, " ")
	if strings.ContainsAny(joined, "<&") {
		joined = html.UnescapeString(f.strip.Sanitize(joined))
	}
	return strings.ToLower(strings.Join(strings.Fields(joined), " "))
}

func anyMatch(rules []Rule, text string) bool {
	for _, r := range rules {
		if r.Pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// excludes reports whether some occurrence of the rule's pattern is not
// followed by its anchor.
func excludes(r Rule, text string) bool {
	matches := r.Pattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return false
	}
	if r.UnlessFollowedBy == nil {
		return true
	}
	for _, m := range matches {
		if !r.UnlessFollowedBy.MatchString(text[m[1]:]) {
			return true
		}
	}
	return false
}
