package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/buttonmarket/internal/adapter/http/dto"
)

func newRootCmd(out io.Writer) *cobra.Command {
	c := &apiClient{}

	rootCmd := &cobra.Command{
		Use:           "buttons-cli",
		Short:         "Button marketplace CLI",
		Long:          `A command line interface for the button marketplace API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.baseURL, "url", "http://localhost:8080", "Base URL of the marketplace API")
	flags.DurationVar(&c.timeout, "timeout", 10*time.Second, "Request timeout")
	flags.StringVar(&c.accountID, "as", "", "Account to act as (sent as X-Account-ID)")
	flags.StringVar(&c.role, "role", "", "Role to act with when auth is disabled, e.g. admin")
	flags.StringVar(&c.token, "token", "", "Bearer token when auth is enabled")

	rootCmd.AddCommand(
		newBalanceCmd(c),
		newLogCmd(c),
		newSweepCmd(c),
		newReconcileCmd(c),
		newPackagesCmd(c),
	)

	return rootCmd
}

func newBalanceCmd(c *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account>",
		Short: "Show an account's wallets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := args[0]
			var wallets []dto.AccountResponse
			if err := c.do(cmd.Context(), http.MethodGet, "/api/v1/accounts/"+url.PathEscape(account)+"/balance", c.actingAs(account), nil, &wallets); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CURRENCY\tBALANCE\tEARNED\tSPENT")
			for _, a := range wallets {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Currency, a.Balance.Formatted, a.Earned.Formatted, a.Spent.Formatted)
			}
			return w.Flush()
		},
	}
}

func newLogCmd(c *apiClient) *cobra.Command {
	var (
		currency string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "log <account>",
		Short: "Show an account's transaction log, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := args[0]
			query := url.Values{}
			query.Set("currency", currency)
			query.Set("limit", strconv.Itoa(limit))

			var resp dto.ListTransactionsResponse
			path := "/api/v1/accounts/" + url.PathEscape(account) + "/transactions?" + query.Encode()
			if err := c.do(cmd.Context(), http.MethodGet, path, c.actingAs(account), nil, &resp); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tKIND\tAMOUNT\tDESCRIPTION")
			for _, t := range resp.Transactions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.CreatedAt.Format(time.RFC3339), t.Kind, t.Amount.Formatted, t.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "BTN", "Wallet currency (BTN or USD)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of transactions")

	return cmd
}

func newSweepCmd(c *apiClient) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Settle listings past their deadline (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.SweepResponse
			if err := c.do(cmd.Context(), http.MethodPost, "/api/v1/listings/sweep", c.accountID, dto.SweepRequest{Limit: limit}, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Settled %d listing(s), %d failed\n", len(resp.Settled)-resp.Failed, resp.Failed)
			for _, s := range resp.Settled {
				line := fmt.Sprintf("  %s  %s", s.ListingID, s.Outcome)
				if s.WinnerID != nil {
					line += fmt.Sprintf("  winner=%s", *s.WinnerID)
				}
				if s.Amount != nil {
					line += "  " + s.Amount.Formatted
				}
				if s.Error != "" {
					line += "  error=" + s.Error
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum listings to settle (0 uses the server default)")

	return cmd
}

func newReconcileCmd(c *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Check every wallet against its transaction log (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ReconciliationResponse
			err := c.do(cmd.Context(), http.MethodGet, "/api/v1/reconciliation", c.accountID, nil, &resp)
			if err != nil && !isStatus(err, http.StatusConflict) {
				return err
			}

			out := cmd.OutOrStdout()
			if resp.Consistent {
				fmt.Fprintf(out, "Reconciliation PASSED: %d/%d wallets reconciled\n", resp.ReconciledAccounts, resp.TotalAccounts)
				return nil
			}

			fmt.Fprintf(out, "Reconciliation FAILED: %d/%d wallets reconciled\n", resp.ReconciledAccounts, resp.TotalAccounts)
			for _, d := range resp.Discrepancies {
				fmt.Fprintf(out, "  wallet %s/%s: recorded %d, log says %d (off by %d)\n",
					d.AccountID, d.Currency, d.RecordedBalance, d.CalculatedBalance, d.Difference)
			}
			for _, a := range resp.Auctions {
				fmt.Fprintf(out, "  listing %s: %s\n", a.ListingID, a.Description)
			}
			return errInconsistent
		},
	}
}

func newPackagesCmd(c *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "packages",
		Short: "List the platform's button packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			var packages []dto.PackageResponse
			if err := c.do(cmd.Context(), http.MethodGet, "/api/v1/packages", "", nil, &packages); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BUTTONS\tPRICE\tPER BUTTON")
			for _, p := range packages {
				fmt.Fprintf(w, "%d\t%s\t$%s\n", p.Buttons, p.Price.Formatted, p.UnitPrice.StringFixed(3))
			}
			return w.Flush()
		},
	}
}
