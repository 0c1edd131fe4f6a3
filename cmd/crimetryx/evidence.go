package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/evidence"
	"github.com/crimetryx/crimetryx/internal/models"
)

var (
	evidenceType  string
	evidenceX     float64
	evidenceY     float64
	evidenceZ     float64
	evidenceNotes string
)

func init() {
	evidenceAddCmd.Flags().StringVarP(&evidenceType, "type", "t", "", "catalog type, e.g. bloodstain_spatter")
	evidenceAddCmd.Flags().Float64VarP(&evidenceX, "x", "x", 0, "scene x coordinate")
	evidenceAddCmd.Flags().Float64VarP(&evidenceY, "y", "y", 0, "scene y coordinate")
	evidenceAddCmd.Flags().Float64VarP(&evidenceZ, "z", "z", 0, "scene z coordinate")
	evidenceAddCmd.Flags().StringVarP(&evidenceNotes, "notes", "n", "", "initial notes")
	_ = evidenceAddCmd.MarkFlagRequired("type")

	evidenceCmd.AddCommand(evidenceListCmd, evidenceAddCmd, evidenceNoteCmd,
		evidenceRemoveCmd, evidenceTypesCmd)
}

var evidenceCmd = &cobra.Command{
	Use:     "evidence",
	GroupID: "case",
	Short:   "Manage evidence markers in a case scene",
}

var evidenceListCmd = &cobra.Command{
	Use:   "list <case>",
	Short: "List a case's evidence markers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coll, err := caseCollection(cmd, args[0])
		if err != nil {
			return err
		}
		items := coll.Items()
		return emit(cmd.OutOrStdout(), items, evidenceTable(items))
	},
}

var evidenceAddCmd = &cobra.Command{
	Use:   "add <case>",
	Short: "Place an evidence marker",
	Long: `Places a marker of the given catalog type at a scene position. The
marker receives the next evidence id in the case; ids of removed markers are
never reused.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coll, err := caseCollection(cmd, args[0])
		if err != nil {
			return err
		}
		if err = coll.Arm(models.EvidenceType(evidenceType)); err != nil {
			return err
		}
		placed, err := coll.PlaceAt(cmd.Context(),
			models.Position{X: evidenceX, Y: evidenceY, Z: evidenceZ}, evidenceNotes)
		if err != nil {
			return err
		}
		cmd.Printf("Placed %s (%s)\n", placed.Code, models.CatalogLookup(placed.Type).Label)
		return nil
	},
}

var evidenceNoteCmd = &cobra.Command{
	Use:   "note <case> <evidence-id> <notes...>",
	Short: "Set the notes on an evidence marker",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		coll, err := caseCollection(cmd, args[0])
		if err != nil {
			return err
		}
		item, err := findByCode(coll, args[1])
		if err != nil {
			return err
		}
		return coll.UpdateNotes(cmd.Context(), item.ID, strings.Join(args[2:], " "))
	},
}

var evidenceRemoveCmd = &cobra.Command{
	Use:     "rm <case> <evidence-id>",
	Aliases: []string{"remove"},
	Short:   "Remove an evidence marker",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		coll, err := caseCollection(cmd, args[0])
		if err != nil {
			return err
		}
		item, err := findByCode(coll, args[1])
		if err != nil {
			return err
		}
		if err = coll.Remove(cmd.Context(), item.ID); err != nil {
			return err
		}
		cmd.Printf("Removed %s\n", item.Code)
		return nil
	},
}

var evidenceTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the evidence catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return emit(cmd.OutOrStdout(), models.EvidenceCatalog, func(w io.Writer) error {
			tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "TYPE\tLABEL\tCATEGORY\tDESCRIPTION")
			for _, entry := range models.EvidenceCatalog {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					entry.Type, entry.Label, entry.Category, entry.Description)
			}
			return tw.Flush()
		})
	},
}

func caseCollection(cmd *cobra.Command, code string) (*evidence.Collection, error) {
	c, err := app.resolveCase(cmd.Context(), code)
	if err != nil {
		return nil, err
	}
	return app.collection(cmd.Context(), c.ID)
}

func findByCode(coll *evidence.Collection, code string) (models.Evidence, error) {
	for _, item := range coll.Items() {
		if strings.EqualFold(item.Code, code) {
			return item, nil
		}
	}
	return models.Evidence{}, errors.Wrap(evidence.ErrUnknownEvidence, "resolve evidence id")
}
