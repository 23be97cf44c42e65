package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"buste/internal/core"
)

func newAddCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "add NAME AMOUNT",
		Short: "Create a new envelope",
		Long:  "Create an envelope with the given monthly base amount.\nThe initial balance equals the base amount.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := core.ParseAmount(args[1])
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[1], err)
			}
			fundingMode, err := core.ParseFundingMode(mode)
			if err != nil {
				return fmt.Errorf("mode %q: %w", mode, err)
			}

			a := newApp()
			defer a.close()

			env, err := a.service.Create(cmd.Context(), args[0], base, fundingMode)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created envelope %d %q (%s, %s/month)\n",
				env.ID, env.Name, env.Mode, core.FormatCurrency(env.BaseAmount))
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "reset", "funding mode: reset or rollover")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active envelopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			defer a.close()

			envelopes, err := a.service.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(envelopes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No envelopes yet. Create one with: buste add NAME AMOUNT")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tMODE\tBASE\tBALANCE\tLAST FUNDED")
			for _, env := range envelopes {
				lastFunded := "never"
				if !env.LastFunded.IsZero() {
					lastFunded = env.LastFunded.String()
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					env.ID, env.Name, env.Mode,
					core.FormatCurrency(env.BaseAmount),
					core.FormatCurrency(env.Balance),
					lastFunded)
			}
			return w.Flush()
		},
	}
}

func newSpendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spend ID AMOUNT",
		Short: "Spend from an envelope",
		Long:  "Draw the amount down from an envelope's balance.\nOverspending is allowed and shows up as a negative balance.",
		Args:  cobra.ExactArgs(2),
		RunE:  runBalanceMutation("spend"),
	}
}

func newDepositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit ID AMOUNT",
		Short: "Add money to an envelope",
		Args:  cobra.ExactArgs(2),
		RunE:  runBalanceMutation("deposit"),
	}
}

func runBalanceMutation(op string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		amount, err := core.ParseAmount(args[1])
		if err != nil {
			return fmt.Errorf("amount %q: %w", args[1], err)
		}

		a := newApp()
		defer a.close()

		var env *core.Envelope
		if op == "spend" {
			env, err = a.service.Spend(cmd.Context(), id, amount)
		} else {
			env, err = a.service.Deposit(cmd.Context(), id, amount)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: balance %s\n", env.Name, core.FormatCurrency(env.Balance))
		return nil
	}
}

func newArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive ID",
		Short: "Archive an envelope",
		Long:  "Archive an envelope. It keeps its record but no longer appears in listings or receives funding.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a := newApp()
			defer a.close()

			if err := a.service.Archive(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Archived envelope %d\n", id)
			return nil
		},
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid envelope id %q", raw)
	}
	return id, nil
}
