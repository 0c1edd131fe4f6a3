package main

import (
	"github.com/spf13/cobra"

	"github.com/crimetryx/crimetryx/internal/models"
	"github.com/crimetryx/crimetryx/internal/pipeline"
)

var analyzeAgent string

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeAgent, "agent", "a", "",
		"run a single stage instead of the full pipeline")
}

var analyzeCmd = &cobra.Command{
	Use:     "analyze <case>",
	GroupID: "analysis",
	Short:   "Run the agent pipeline on a case",
	Long: `Runs the four-stage analysis pipeline: the scene interpreter, the
evidence reasoner, the timeline builder and the hypothesis challenger.
Stages run in dependency order; completed stages from earlier sessions are
picked up from the local store, so a single stage can be re-run on its own.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := app.resolveCase(ctx, args[0])
		if err != nil {
			return err
		}
		coll, err := app.collection(ctx, c.ID)
		if err != nil {
			return err
		}

		runner := pipeline.NewRunner(app.executor(), pipeline.NewStoreSink(app.store), pipeline.Input{
			Case:     c,
			Evidence: coll.Items(),
		}, app.logger)

		priorLogs, err := app.store.AgentLogs.ListForCase(ctx, c.ID)
		if err != nil {
			return err
		}
		runner.Restore(priorLogs)

		if analyzeAgent != "" {
			if _, err = runner.RunStage(ctx, models.AgentID(analyzeAgent)); err != nil {
				return err
			}
		} else if err = runner.RunAll(ctx); err != nil {
			return err
		}

		results := runner.Results()
		if err = emit(cmd.OutOrStdout(), results, resultTable(results)); err != nil {
			return err
		}
		if hypotheses := runner.Hypotheses(); len(hypotheses) > 0 {
			cmd.Println()
			return emit(cmd.OutOrStdout(), hypotheses, hypothesisTable(hypotheses))
		}
		return nil
	},
}
