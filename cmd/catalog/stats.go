package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"flaromlab/internal/analytics"
	applog "flaromlab/internal/log"
	"flaromlab/models"
)

func newStatsCmd(opts *options) *cobra.Command {
	var withSaved bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Load every dataset and print source status and formula statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := opts.loadCatalog(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ENTITY\tRECORDS\tSOURCES\tSTATUS")
			for _, entity := range models.Entities() {
				status := snap.StatusOf(entity)
				state := "ok"
				if status.Unavailable {
					state = "unavailable: " + status.Reason
				} else if len(status.Failed) > 0 {
					state = fmt.Sprintf("partial (%d failed)", len(status.Failed))
				}
				fmt.Fprintf(tw, "%s\t%d\t%d/%d\t%s\n", entity, status.Records, status.Loaded, status.Sources, state)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			formulas := append([]models.Formula(nil), snap.Formulas...)
			if withSaved {
				store, err := opts.openStore(ctx)
				if err != nil {
					return err
				}
				saved, err := store.LoadSaved(ctx)
				if err != nil {
					applog.Warn(ctx, "saved formulas left out of statistics", "error", err)
				}
				formulas = append(formulas, saved...)
			}

			dashboard := analytics.BuildDashboard(formulas, snap.MoleculeIndex())
			stats := dashboard.Stats
			fmt.Fprintln(out)
			fmt.Fprintf(out, "formulas: %d  molecules: %d\n", stats.TotalFormulas, stats.TotalMolecules)
			fmt.Fprintf(out, "cost per liter: avg $%.2f  min $%.2f  median $%.2f  max $%.2f\n", stats.AverageCost, stats.MinCost, stats.MedianCost, stats.MaxCost)
			fmt.Fprintf(out, "average margin: %.1fx\n", stats.AverageMargin)
			for _, insight := range dashboard.Insights {
				fmt.Fprintf(out, "- %s\n", insight)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withSaved, "with-saved", false, "include formulas from the saved formula store")
	return cmd
}
