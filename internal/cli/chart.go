package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fastlogapp/fastlog-server/internal/charts"
	"github.com/fastlogapp/fastlog-server/internal/service"
)

func newChartCmd(opts *options) *cobra.Command {
	var (
		email string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Write a user's trend charts to an HTML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(a *app) error {
				user, err := lookupUser(cmd.Context(), a.store, email)
				if err != nil {
					return err
				}
				report, err := service.NewAnalyticsService(a.store, a.cfg.Tracking.Location, a.log.Logger).
					Report(cmd.Context(), user.ID)
				if err != nil {
					return err
				}

				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create chart file: %w", err)
				}
				err = charts.Render(f, charts.Page{
					Title:   "FastLog trends for " + user.Name(),
					Summary: report.Stats.Summary,
					Streaks: report.Stats.Streaks,
					Trends:  report.Trends,
				})
				if closeErr := f.Close(); err == nil {
					err = closeErr
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "user", "", "Email of the user")
	cmd.Flags().StringVarP(&out, "out", "o", "fastlog-trends.html", "Output file")
	return cmd
}
