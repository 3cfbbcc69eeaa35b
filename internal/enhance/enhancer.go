// Package enhance rewrites AI-generated summaries so that the first mention
// of each extracted term becomes a Markdown link to the best candidate URL
// discovered by the secondary search pass. It is a pure string transform:
// no I/O, no errors, malformed input degrades to a no-op.
package enhance

import (
	"regexp"
	"strings"
)

// Candidate is one proposed hyperlink target for a term.
type Candidate struct {
	URL            string  `json:"url"`
	Title          string  `json:"title,omitempty"`
	Snippet        string  `json:"snippet,omitempty"`
	RelevanceScore float64 `json:"relevance_score,omitempty"`
}

// TermLinks pairs a term with its ranked candidates. Callers pass an ordered
// slice so terms are processed in mapping insertion order; when two terms'
// match spans would overlap, the first-claimed span wins.
type TermLinks struct {
	Term       string
	Candidates []Candidate
}

// Boilerplate headings the summarizer tends to emit as a first line. Matched
// with or without Markdown heading markers, case-insensitively.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^#{0,6}\s*reddit data analysis\b`),
	regexp.MustCompile(`(?i)^#{0,6}\s*summary of\b`),
	regexp.MustCompile(`(?i)^#{0,6}\s*analysis of\b`),
}

// StripGeneratedTitle removes at most one leading boilerplate heading line
// from the text, plus the blank lines that follow it. Text without a
// matching first line comes back unchanged, which also makes the pass
// idempotent.
func StripGeneratedTitle(text string) string {
	line, rest, found := strings.Cut(text, "\n")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return text
	}
	for _, pat := range titlePatterns {
		if pat.MatchString(trimmed) {
			if !found {
				return ""
			}
			return strings.TrimLeft(rest, "\n")
		}
	}
	return text
}

// Enhance strips a generated title, then inserts for each term a single
// Markdown link at the first occurrence of that term that does not overlap
// an already-claimed span. Matching is case-insensitive, tolerates internal
// whitespace runs (multi-word terms match across line wraps), and also
// accepts a punctuation-stripped variant of the term. The matched substring
// keeps its original casing as the link label. An empty mapping is a no-op
// beyond title stripping.
func Enhance(text string, links []TermLinks) string {
	text = StripGeneratedTitle(text)
	if len(links) == 0 {
		return text
	}

	var claimed [][2]int
	for _, tl := range links {
		best, ok := bestCandidate(tl.Candidates)
		if !ok || best.URL == "" {
			continue
		}
		re := termPattern(tl.Term)
		if re == nil {
			continue
		}
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if overlapsAny(loc[0], loc[1], claimed) {
				continue
			}
			label := text[loc[0]:loc[1]]
			repl := "[" + label + "](" + best.URL + ")"
			text = text[:loc[0]] + repl + text[loc[1]:]

			shift := len(repl) - (loc[1] - loc[0])
			for i := range claimed {
				if claimed[i][0] >= loc[1] {
					claimed[i][0] += shift
					claimed[i][1] += shift
				}
			}
			claimed = append(claimed, [2]int{loc[0], loc[0] + len(repl)})
			break
		}
	}
	return text
}

// bestCandidate picks the highest relevance score; a missing score counts as
// zero and ties keep the first-listed candidate.
func bestCandidate(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.RelevanceScore > best.RelevanceScore {
			best = c
		}
	}
	return best, true
}

var punctStripper = regexp.MustCompile(`[^\pL\pN\s]+`)

// termPattern compiles a case-insensitive matcher for the term: tokens
// joined by arbitrary whitespace runs, word-bounded where the term edges are
// word characters, with a punctuation-stripped alternative when stripping
// changes the term. Returns nil for terms that reduce to nothing.
func termPattern(term string) *regexp.Regexp {
	variants := []string{term}
	if stripped := strings.TrimSpace(punctStripper.ReplaceAllString(term, "")); stripped != "" && !strings.EqualFold(stripped, term) {
		variants = append(variants, stripped)
	}

	var alts []string
	for _, v := range variants {
		tokens := strings.Fields(v)
		if len(tokens) == 0 {
			continue
		}
		quoted := make([]string, len(tokens))
		for i, tok := range tokens {
			quoted[i] = regexp.QuoteMeta(tok)
		}
		alt := strings.Join(quoted, `\s+`)
		if startsWithWordChar(tokens[0]) {
			alt = `\b` + alt
		}
		if endsWithWordChar(tokens[len(tokens)-1]) {
			alt += `\b`
		}
		alts = append(alts, alt)
	}
	if len(alts) == 0 {
		return nil
	}

	re, err := regexp.Compile(`(?i)(?:` + strings.Join(alts, `|`) + `)`)
	if err != nil {
		return nil
	}
	return re
}

func startsWithWordChar(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func endsWithWordChar(s string) bool {
	if s == "" {
		return false
	}
	c := s[len(s)-1]
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func overlapsAny(start, end int, claimed [][2]int) bool {
	for _, c := range claimed {
		if start < c[1] && end > c[0] {
			return true
		}
	}
	return false
}
