// Package filter decides which feed items are in scope for the digest.
package filter

import "regexp"

// Kind tags a rule with the role it plays during evaluation.
type Kind int

const (
	Positive Kind = iota
	Negative
	Criticism
)

func (k Kind) String() string {
	switch k {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	case Criticism:
		return "criticism"
	default:
		return "unknown"
	}
}

// Rule is one pattern of a rule set. For Negative rules, UnlessFollowedBy
// suppresses the exclusion when the anchor occurs later in the text than the
// pattern match.
type Rule struct {
	Kind             Kind
	Pattern          *regexp.Regexp
	UnlessFollowedBy *regexp.Regexp
}

// RuleSet is the data evaluated by Filter.
type RuleSet []Rule

func rx(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}

var starlinkAnchor = rx(`\bstarlink\b`)

// StarlinkRules admits Starlink items framed around risk, incidents or criticism.
func StarlinkRules() RuleSet {
	return RuleSet{
		{Kind: Positive, Pattern: rx(`\bstarlink\b`)},
		{Kind: Positive, Pattern: rx(`\bstarshield\b`)},
		{Kind: Positive, Pattern: rx(`\bspacex\b.*\bstarlink\b`)},

		// launch vehicle news only counts when it goes on to discuss Starlink
		{Kind: Negative, Pattern: rx(`\bstarship\b`), UnlessFollowedBy: starlinkAnchor},
		{Kind: Negative, Pattern: rx(`\bfalcon\b\s?\d?\b`), UnlessFollowedBy: starlinkAnchor},
		{Kind: Negative, Pattern: rx(`\bartemis\b|\biss\b|\bmars\b|\bcrew[- ]\d+\b|\bcargo\b`)},
		{Kind: Negative, Pattern: rx(`\boneweb\b|\bkuiper\b|\bblue origin\b|\bvirgin\b`)},

		{Kind: Criticism, Pattern: rx(`\b(outage|degrad\w*|down|jam\w*|spoof\w*|interference|rf interference|rfi|light pollution|streak\w*|reflection\w*|bright\w*)\b`)},
		{Kind: Criticism, Pattern: rx(`\b(vulnerab\w*|exploit\w*|cve|hack\w*|breach\w*|compromise\w*|malware|apt|cisa|mitre|advisory|nation[- ]state|sanction\w*)\b`)},
		{Kind: Criticism, Pattern: rx(`\b(debris|collision|re[- ]?entry|reentry|burn[- ]?up|deorbit\w*|emission\w*|soot|aluminum oxide|alumina|atmosphere|ozone)\b`)},
		{Kind: Criticism, Pattern: rx(`\b(regulat\w*|proceeding\w*|filing\w*|fcc|itu|esa|noaa|faa|licen[cs]e\w*|policy|ban|restriction\w*)\b`)},
		{Kind: Criticism, Pattern: rx(`\b(astronomer\w*|observatory|telescope\w*|iau|darkit|dark sky)\b`)},
	}
}
