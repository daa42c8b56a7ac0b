package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"resumeai_backend/internal/app"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if _, err := app.OpenDatabase(cfg); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one reconciliation pass: fail stale pending orders, expire paid plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := app.OpenDatabase(cfg)
			if err != nil {
				return err
			}

			repos := app.NewRepositories()
			result := app.NewBillingWorker(cfg, db, repos).SweepOnce(cmd.Context())
			fmt.Printf("failed orders: %d, expired plans: %d\n", result.FailedOrders, result.ExpiredPlans)
			return nil
		},
	}
}

func accountCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "account <external-id>",
		Short: "Show balance, plan, recent usage and orders of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := app.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			repos := app.NewRepositories()

			account, err := repos.Ledger.FindByExternalID(db, args[0])
			if err != nil {
				return fmt.Errorf("account %q: %w", args[0], err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "id\t%s\n", account.ID)
			fmt.Fprintf(w, "external id\t%s\n", account.ExternalID)
			fmt.Fprintf(w, "balance\t%d\n", account.Balance)
			fmt.Fprintf(w, "plan\t%s (%s)\n", account.Plan, account.Status)
			if account.PlanExpiresAt != nil {
				fmt.Fprintf(w, "plan expires\t%s\n", account.PlanExpiresAt.Format(time.RFC3339))
			}
			fmt.Fprintln(w)

			usage, total, err := repos.Usage.ListByAccount(db, account.ID, limit, 0)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "usage (%d total)\n", total)
			for _, record := range usage {
				fmt.Fprintf(w, "  %s\t%s\t-%d\n", record.CreatedAt.Format(time.RFC3339), record.ActionKind, record.Amount)
			}
			fmt.Fprintln(w)

			orders, total, err := repos.Orders.ListByAccount(db, account.ID, limit, 0)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "orders (%d total)\n", total)
			for _, order := range orders {
				fmt.Fprintf(w, "  %s\t%s\t%s\t%d %s\t+%d\n", order.CreatedAt.Format(time.RFC3339),
					order.GatewayOrderID, order.Status, order.Amount, order.Currency, order.CreditsToGrant)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of recent usage records and orders")
	return cmd
}
