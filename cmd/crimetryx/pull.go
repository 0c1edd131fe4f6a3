package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crimetryx/crimetryx/internal/errors"
)

// pullConcurrency bounds how many cases sync at once; the backend's SQLite
// write path does not benefit from more.
const pullConcurrency = 4

var pullCmd = &cobra.Command{
	Use:     "pull",
	GroupID: "case",
	Short:   "Mirror all backend cases and their evidence into the local store",
	Long: `Fetches every case from the backend and stores it locally together
with its evidence, so case browsing and analysis keep working offline.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cases, err := app.client.ListCases(ctx)
		if err != nil {
			return errors.Wrap(err, "list backend cases")
		}

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(pullConcurrency)
		for _, c := range cases {
			g.Go(func() error {
				localID, err := app.store.Cases.Upsert(ctx, c)
				if err != nil {
					return errors.Wrap(err, "mirror case")
				}
				items, err := app.client.ListEvidence(ctx, c.ID)
				if err != nil {
					return errors.Wrap(err, "fetch evidence")
				}
				if err = app.store.Evidence.ReplaceForCase(ctx, localID, items); err != nil {
					return errors.Wrap(err, "mirror evidence")
				}
				return nil
			})
		}
		if err = g.Wait(); err != nil {
			return err
		}
		cmd.Printf("Pulled %d cases\n", len(cases))
		return nil
	},
}
