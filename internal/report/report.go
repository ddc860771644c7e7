// Package report turns per-gym verification results into the run-level
// report artifact and its console rendering.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"

	"github.com/crux-labs/pricewatch/internal/model"
)

// Build partitions results into the four report buckets and computes the
// summary counts. Every result lands in exactly one bucket; bucket order
// follows the input order of the results.
func Build(results []model.VerificationResult, environment string) *model.VerificationReport {
	rep := &model.VerificationReport{
		RunID:       uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		Environment: environment,
		Matched:     []model.VerificationResult{},
		Mismatched:  []model.VerificationResult{},
		Failed:      []model.VerificationResult{},
		Skipped:     []model.VerificationResult{},
	}

	for _, res := range results {
		switch res.Status {
		case model.StatusSkipped:
			rep.Skipped = append(rep.Skipped, res)
		case model.StatusSuccess:
			if res.ExtractedPrice != nil && res.StoredPrice != nil {
				if res.ExtractedPrice.Amount == *res.StoredPrice {
					rep.Matched = append(rep.Matched, res)
				} else {
					rep.Mismatched = append(rep.Mismatched, res)
				}
			} else {
				// A success without both prices cannot be compared, so
				// it counts against the run rather than for it.
				rep.Failed = append(rep.Failed, res)
			}
		default:
			rep.Failed = append(rep.Failed, res)
		}
	}

	rep.Summary = model.Summary{
		Total:      len(results),
		Matched:    len(rep.Matched),
		Mismatched: len(rep.Mismatched),
		Failed:     len(rep.Failed),
		Skipped:    len(rep.Skipped),
	}
	return rep
}

// Save writes the report as indented JSON at path, creating parent
// directories as needed.
func Save(rep *model.VerificationReport, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "report: create output dir")
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return eris.Wrap(err, "report: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "report: write file")
	}
	return nil
}

// PrintSummary renders the summary table and the detail sections for
// everything that needs attention.
func PrintSummary(w io.Writer, rep *model.VerificationReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Outcome", "Count"})
	t.AppendRow(table.Row{"Matched", rep.Summary.Matched})
	t.AppendRow(table.Row{"Mismatched", rep.Summary.Mismatched})
	t.AppendRow(table.Row{"Failed", rep.Summary.Failed})
	t.AppendRow(table.Row{"Skipped", rep.Summary.Skipped})
	t.AppendFooter(table.Row{"Total", rep.Summary.Total})
	t.Render()

	if len(rep.Mismatched) > 0 {
		fmt.Fprintln(w, "\nMismatched prices:")
		for _, res := range rep.Mismatched {
			fmt.Fprintf(w, "  %s: stored %s, scraped %s (%s confidence, %s)\n",
				res.GymName,
				formatPrice(res.StoredPrice),
				formatPrice(&res.ExtractedPrice.Amount),
				res.ExtractedPrice.Confidence,
				res.ExtractedPrice.Source,
			)
			if res.ScrapedURL != "" {
				fmt.Fprintf(w, "    %s\n", res.ScrapedURL)
			}
		}
	}

	if len(rep.Failed) > 0 {
		fmt.Fprintln(w, "\nFailed verifications:")
		for _, res := range rep.Failed {
			fmt.Fprintf(w, "  %s: %s\n", res.GymName, res.Error)
		}
	}

	if len(rep.Skipped) > 0 {
		fmt.Fprintln(w, "\nSkipped:")
		for _, res := range rep.Skipped {
			fmt.Fprintf(w, "  %s: %s\n", res.GymName, res.Error)
		}
	}
}

func formatPrice(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("$%.2f", *p)
}
