package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
)

// emit renders v in the requested output format. The table renderer is used
// only when the caller supplied one; structured formats always work.
func emit(w io.Writer, v any, table func(io.Writer) error) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return errors.Wrap(enc.Encode(v), "encode yaml")
	default:
		if table == nil {
			return errors.New("no table rendering for this command, use -o json or -o yaml")
		}
		return table(w)
	}
}

func caseTable(cases []models.Case) func(io.Writer) error {
	return func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "CASE\tLOCATION\tDATE\tINVESTIGATOR\tSTATUS")
		for _, c := range cases {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				c.Code, c.Location, c.Date, c.Investigator, c.Status)
		}
		return tw.Flush()
	}
}

func evidenceTable(items []models.Evidence) func(io.Writer) error {
	return func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tTYPE\tPOSITION\tHASH\tNOTES")
		for _, item := range items {
			entry := models.CatalogLookup(item.Type)
			_, _ = fmt.Fprintf(tw, "%s\t%s\t(%.2f, %.2f, %.2f)\t%s\t%s\n",
				item.Code, entry.Label,
				item.Position.X, item.Position.Y, item.Position.Z,
				shortHash(item.Hash), item.Notes)
		}
		return tw.Flush()
	}
}

func resultTable(results []models.StageResult) func(io.Writer) error {
	return func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "AGENT\tSTATUS\tTIME\tNOTES")
		for _, result := range results {
			note := result.Error
			if result.Status == models.StageCompleted && result.Output.Reasoning != "" {
				note = result.Output.Reasoning
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%.1fs\t%s\n",
				result.Agent, result.Status, result.ExecutionTime, note)
		}
		return tw.Flush()
	}
}

func hypothesisTable(scenarios []models.Scenario) func(io.Writer) error {
	return func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "SCENARIO\tTITLE\tCONFIDENCE\tEVIDENCE\tCONTRADICTIONS")
		for _, scenario := range scenarios {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%.0f%%\t%s\t%d\n",
				scenario.ScenarioID, scenario.Title, scenario.Confidence*100,
				strings.Join(scenario.SupportingEvidence, ","), len(scenario.Contradictions))
		}
		return tw.Flush()
	}
}

func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12] + "..."
}
