package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"buste/internal/core"
)

func newSyncFundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-funds",
		Short: "Fund every active envelope up to the current month",
		Long: "Apply monthly funding to every active envelope, catching up any\n" +
			"months missed since the last run. Reset envelopes return to their\n" +
			"base amount; rollover envelopes accumulate one base amount per\n" +
			"elapsed month. Running it twice in the same month changes nothing.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			defer a.close()

			report, err := a.sync.Sync(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range report.Results {
				switch {
				case r.Err != nil:
					fmt.Fprintf(out, "%s: FAILED: %v\n", r.Name, r.Err)
				case r.PeriodsFunded == 0:
					fmt.Fprintf(out, "%s: up to date (balance %s)\n",
						r.Name, core.FormatCurrency(r.Balance))
				default:
					fmt.Fprintf(out, "%s: funded %d period(s), balance %s, last funded %s\n",
						r.Name, r.PeriodsFunded,
						core.FormatCurrency(r.Balance), r.LastFunded)
				}
			}
			fmt.Fprintf(out, "Sync complete: %d funded, %d up to date, %d failed\n",
				report.Funded, report.Skipped, report.Failed)

			if report.Failed > 0 {
				return fmt.Errorf("%d envelope(s) failed to fund", report.Failed)
			}
			return nil
		},
	}
}
