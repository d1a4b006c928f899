package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bmohb/iiroc-scrape/internal/pipeline"
)

// OutputFormat specifies the summary output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteOutput writes the run summary in the specified format
func WriteOutput(w io.Writer, result *pipeline.Result, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the result as JSON
func writeJSON(w io.Writer, result *pipeline.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs the result as human-readable text
func writeText(w io.Writer, result *pipeline.Result, verbose bool) error {
	if len(result.Entries) == 0 {
		fmt.Fprintf(w, "No %d enforcement documents found.\n", result.Year)
	} else {
		for _, e := range result.Entries {
			fmt.Fprintf(w, "%s\n", e.Title)
			if verbose {
				fmt.Fprintf(w, "     Link: %s\n", e.Link)
			}
		}
	}

	if verbose {
		s := result.Stats
		fmt.Fprintf(w, "\nCandidates: %d (matched %d, no anchor %d, other year %d, no date marker %d)\n",
			s.Candidates, s.Matched, s.NoAnchor, s.WrongYear, s.NoDateMarker)
		fmt.Fprintf(w, "Duplicates removed: %d\n", result.Duplicates)
	}

	fmt.Fprintf(w, "\nTotal: %d entries written to %s in %s\n", len(result.Entries), result.OutputPath, result.Elapsed)
	return nil
}
