package main

import (
	"github.com/spf13/cobra"

	"github.com/crimetryx/crimetryx/internal/report"
)

var reportOut string

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output path (default <case>.pdf)")
}

var reportCmd = &cobra.Command{
	Use:     "report <case>",
	GroupID: "analysis",
	Short:   "Download the PDF case report",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.resolveCase(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		path := reportOut
		if path == "" {
			path = c.Code + ".pdf"
		}
		fetcher := report.NewFetcher(app.client, app.logger)
		if err = fetcher.SaveTo(cmd.Context(), c.ID, path); err != nil {
			return err
		}
		cmd.Printf("Report saved to %s\n", path)
		return nil
	},
}
