// Package cli provides CLI output utilities for Pasal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mnakhyar/pasal/internal/models"
	"github.com/mnakhyar/pasal/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// WriteSearchResults writes grouped search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.GroupedResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.GroupedResponse) {
	fmt.Fprintf(w, "\nFound %d regulation(s) in %dms (tier: %s)\n\n",
		response.TotalGroups, response.QueryTime, response.Tier)
	for _, group := range response.Groups {
		writeOneGroup(w, group)
	}
	if response.TotalGroups > len(response.Groups) {
		fmt.Fprintf(w, "Page %d of results (%d per page, %d total)\n",
			response.Page, response.PerPage, response.TotalGroups)
	}
}

func writeOneGroup(w io.Writer, group *models.GroupedResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "%s\n", group.WorkTitle)
	fmt.Fprintf(w, "Score: %.4f | Matching: %d node(s)", group.BestScore, group.TotalMatchingNodes)
	if len(group.MatchingNodeLabels) > 0 {
		fmt.Fprintf(w, " (%s)", strings.Join(group.MatchingNodeLabels, ", "))
	}
	fmt.Fprintln(w)
	if best := group.BestHit; best != nil {
		label := best.Metadata.PasalLabel
		if label != "" {
			fmt.Fprintf(w, "\n%s:\n", label)
		} else {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", stripMarks(best.Snippet))
	}
	fmt.Fprintln(w)
}

// stripMarks removes the highlight tags for terminal output.
func stripMarks(s string) string {
	s = strings.ReplaceAll(s, "<mark>", "")
	return strings.ReplaceAll(s, "</mark>", "")
}

// Truncate truncates s to maxLen bytes and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	return utils.Truncate(s, maxLen)
}
