package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/crimetryx/crimetryx/internal/models"
)

var (
	caseFilter       string
	caseLocation     string
	caseDate         string
	caseInvestigator string
)

func init() {
	casesListCmd.Flags().StringVarP(&caseFilter, "filter", "f", "",
		"show only cases whose code, location or investigator matches")

	casesCreateCmd.Flags().StringVar(&caseLocation, "location", "", "scene location")
	casesCreateCmd.Flags().StringVar(&caseDate, "date", "", "incident date (YYYY-MM-DD)")
	casesCreateCmd.Flags().StringVar(&caseInvestigator, "investigator", "", "lead investigator")
	_ = casesCreateCmd.MarkFlagRequired("location")
	_ = casesCreateCmd.MarkFlagRequired("date")

	casesCmd.AddCommand(casesListCmd, casesCreateCmd, casesShowCmd)
}

var casesCmd = &cobra.Command{
	Use:     "cases",
	GroupID: "case",
	Short:   "Manage investigation cases",
}

var casesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := app.registry.Load(cmd.Context()); err != nil {
			return err
		}
		cases := app.registry.Filter(caseFilter)
		return emit(cmd.OutOrStdout(), cases, caseTable(cases))
	},
}

var casesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open a new case",
	RunE: func(cmd *cobra.Command, _ []string) error {
		investigator := caseInvestigator
		if investigator == "" {
			investigator = currentIdentity().Name
		}
		created, err := app.registry.Create(cmd.Context(), models.CaseDraft{
			Location:     caseLocation,
			Date:         caseDate,
			Investigator: investigator,
		})
		if err != nil {
			return err
		}
		cmd.Printf("Opened case %s\n", created.Code)
		return nil
	},
}

var casesShowCmd = &cobra.Command{
	Use:   "show <case>",
	Short: "Show a case with its evidence, agent logs and hypotheses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.resolveCase(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		detail, err := app.registry.Detail(cmd.Context(), c.ID)
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), detail, func(w io.Writer) error {
			if err := caseTable([]models.Case{detail.Case})(w); err != nil {
				return err
			}
			if len(detail.Evidence) > 0 {
				cmd.Println()
				if err := evidenceTable(detail.Evidence)(w); err != nil {
					return err
				}
			}
			if len(detail.AgentLogs) > 0 {
				cmd.Println()
				if err := resultTable(detail.AgentLogs)(w); err != nil {
					return err
				}
			}
			if len(detail.Hypotheses) > 0 {
				cmd.Println()
				if err := hypothesisTable(detail.Hypotheses)(w); err != nil {
					return err
				}
			}
			return nil
		})
	},
}
