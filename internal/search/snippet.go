package search

import (
	"strings"

	"github.com/mnakhyar/pasal/internal/config"
	"github.com/mnakhyar/pasal/pkg/utils"
)

// Highlight markers. The engine's contract is that this is the only markup
// it ever emits; downstream sanitizers may trust exactly this one tag.
const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// BuildSnippet produces one highlighted fragment of 15-35 words around the
// first matched term, derived only from the first SnippetMaxSource characters
// of the content. Matched words are wrapped in the highlight marker. When no
// term matches inside the window, the plain excerpt is returned instead.
func BuildSnippet(content, safeQuery string, cfg *config.SearchConfig) string {
	source := utils.FirstRunes(content, cfg.SnippetMaxSource)
	terms := snippetTerms(safeQuery)
	words := strings.Fields(source)
	if len(terms) == 0 || len(words) == 0 {
		return Excerpt(content, cfg.ExcerptLength)
	}

	first := -1
	for i, w := range words {
		if matchesAnyTerm(w, terms) {
			first = i
			break
		}
	}
	if first < 0 {
		return Excerpt(content, cfg.ExcerptLength)
	}

	// Center a window of at most SnippetMaxWords on the first match, keeping
	// at least SnippetMinWords when the text allows it.
	start := first - cfg.SnippetMaxWords/2
	if start < 0 {
		start = 0
	}
	end := start + cfg.SnippetMaxWords
	if end > len(words) {
		end = len(words)
		start = end - cfg.SnippetMinWords
		if start < 0 {
			start = 0
		}
	}

	fragment := make([]string, 0, end-start)
	for _, w := range words[start:end] {
		if matchesAnyTerm(w, terms) {
			fragment = append(fragment, markOpen+w+markClose)
		} else {
			fragment = append(fragment, w)
		}
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString("... ")
	}
	b.WriteString(strings.Join(fragment, " "))
	if end < len(words) {
		b.WriteString(" ...")
	}
	return b.String()
}

// Excerpt returns the first n characters of content verbatim, rune-safe,
// with no markup. Used for identity and metadata rows and as the substring
// tier's snippet.
func Excerpt(content string, n int) string {
	out := utils.FirstRunes(content, n)
	if len(out) < len(content) {
		out += "..."
	}
	return out
}

// snippetTerms picks the query words worth highlighting: everything longer
// than 2 characters, or all words when the query has only short ones.
func snippetTerms(safeQuery string) []string {
	fields := strings.Fields(strings.ToLower(safeQuery))
	var long []string
	for _, w := range fields {
		if len([]rune(w)) > 2 {
			long = append(long, w)
		}
	}
	if len(long) > 0 {
		return long
	}
	return fields
}

func matchesAnyTerm(word string, terms []string) bool {
	lower := strings.ToLower(word)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
