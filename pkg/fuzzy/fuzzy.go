// Package fuzzy ranks tasks against a free-text query with typo tolerance.
package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// LevenshteinDistance is the number of single-rune edits turning s1 into s2,
// after case folding and accent stripping.
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(Normalize(s1))
	r2 := []rune(Normalize(s2))
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

// Threshold is the edit distance tolerated for a query of this length.
func Threshold(query string) int {
	n := len([]rune(Normalize(query)))
	switch {
	case n <= 3:
		return 1
	case n >= 8:
		return 3
	default:
		return 2
	}
}

// Match reports whether query appears in text, exactly, as a word prefix, or
// within threshold edits of a word.
func Match(query, text string, threshold int) bool {
	q := Normalize(query)
	t := Normalize(text)
	if q == "" {
		return true
	}
	if strings.Contains(t, q) {
		return true
	}
	for _, word := range strings.Fields(t) {
		if strings.HasPrefix(word, q) || LevenshteinDistance(q, word) <= threshold {
			return true
		}
	}
	return false
}

// Fields are the searchable parts of a task.
type Fields struct {
	Title       string
	Description string
	Tags        []string
}

// Score ranks how well f matches query; zero means no match.
// Title hits weigh most, then tags, then description.
func Score(query string, f Fields) float64 {
	q := Normalize(query)
	if q == "" {
		return 0
	}
	threshold := Threshold(q)

	score := fieldScore(q, f.Title, threshold, 100, 50)
	for _, tag := range f.Tags {
		score += fieldScore(q, tag, threshold, 60, 30)
	}

	desc := Normalize(f.Description)
	if len(desc) > 500 {
		desc = desc[:500]
	}
	if strings.Contains(desc, q) {
		score += 20
	} else if Match(q, desc, threshold) {
		score += 10
	}
	return score
}

func fieldScore(q, text string, threshold int, exact, fuzzy float64) float64 {
	norm := Normalize(text)
	if norm == "" {
		return 0
	}
	if strings.Contains(norm, q) {
		if containsWord(norm, q) {
			return exact + exact/2
		}
		return exact
	}

	best := 0.0
	for _, word := range strings.Fields(norm) {
		s := 0.0
		if strings.HasPrefix(word, q) {
			s = fuzzy
		} else if d := LevenshteinDistance(q, word); d <= threshold {
			s = fuzzy - float64(d)*fuzzy/(float64(threshold)+1)
		}
		if s > best {
			best = s
		}
	}
	return best
}

// Normalize lowercases s, strips diacritics and collapses whitespace.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if r == 'đ' {
			r = 'd'
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func containsWord(text, query string) bool {
	for _, word := range strings.Fields(text) {
		if word == query {
			return true
		}
	}
	return false
}
