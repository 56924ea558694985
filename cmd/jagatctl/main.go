package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jagatstore/jagat-backend/internal/client"
	"github.com/jagatstore/jagat-backend/internal/logger"
	"github.com/jagatstore/jagat-backend/internal/repository"
	"github.com/jagatstore/jagat-backend/internal/service"
	"github.com/jagatstore/jagat-backend/internal/store"
)

// jagatctl is the operator's tool for the storefront data files: it runs
// the out-of-band ledger reconciliation, inspects the workbook tables and
// drains a local pending-order state file against a running server.
func main() {
	var dataDir string

	root := &cobra.Command{
		Use:           "jagatctl",
		Short:         "Operations tool for the Jagat storefront data files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", ".", "directory holding the xlsx data files")

	root.AddCommand(newReconcileCmd(&dataDir))
	root.AddCommand(newInspectCmd(&dataDir))
	root.AddCommand(newSyncOrdersCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "jagatctl:", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	return logger.New("info", "console", "jagatctl")
}

func newReconcileCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Copy completed payments into the ledger (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			st := store.New(log)
			rec := service.NewReconciler(
				repository.NewPaymentRepo(st, *dataDir),
				repository.NewUserRepo(st, *dataDir),
				repository.NewLedgerRepo(st, *dataDir),
				log,
			)
			added, err := rec.Run()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reconciled %d payment(s) into the ledger\n", added)
			return nil
		},
	}
}

func newInspectCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:       "inspect {payments|ledger|users|visitors}",
		Short:     "Show record counts and the first/last rows of a table",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"payments", "ledger", "users", "visitors"},
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()
			st := store.New(log)
			out := cmd.OutOrStdout()

			switch args[0] {
			case "payments":
				payments := repository.NewPaymentRepo(st, *dataDir).All()
				fmt.Fprintf(out, "payments: %d record(s)\n", len(payments))
				if n := len(payments); n > 0 {
					fmt.Fprintf(out, "first: id=%d amount=%.2f created=%s\n",
						payments[0].ID, payments[0].Amount, payments[0].CreatedAt)
					fmt.Fprintf(out, "last:  id=%d amount=%.2f created=%s\n",
						payments[n-1].ID, payments[n-1].Amount, payments[n-1].CreatedAt)
				}
			case "ledger":
				entries := repository.NewLedgerRepo(st, *dataDir).All()
				fmt.Fprintf(out, "ledger: %d record(s)\n", len(entries))
				if n := len(entries); n > 0 {
					fmt.Fprintf(out, "first: payment_id=%d amount=%.2f created=%s\n",
						entries[0].PaymentID, entries[0].Amount, entries[0].CreatedAt)
					fmt.Fprintf(out, "last:  payment_id=%d amount=%.2f created=%s\n",
						entries[n-1].PaymentID, entries[n-1].Amount, entries[n-1].CreatedAt)
				}
			case "users":
				users := repository.NewUserRepo(st, *dataDir).All()
				fmt.Fprintf(out, "users: %d record(s)\n", len(users))
			case "visitors":
				visitors := repository.NewVisitorRepo(st, *dataDir).All()
				fmt.Fprintf(out, "visitors: %d record(s)\n", len(visitors))
			default:
				return fmt.Errorf("unknown table %q", args[0])
			}
			return nil
		},
	}
}

func newSyncOrdersCmd() *cobra.Command {
	var (
		server    string
		token     string
		stateFile string
	)
	cmd := &cobra.Command{
		Use:   "sync-orders",
		Short: "Replay a local pending-order state file against a server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			queue := client.NewQueue(client.NewLocalStore(stateFile, log))
			syncer := client.NewSyncer(server, queue, log)
			syncer.Token = func() string { return token }

			if err := syncer.TrySync(context.Background()); err != nil {
				return fmt.Errorf("sync pass aborted: %w", err)
			}
			remaining, err := queue.Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sync complete, %d order(s) still queued\n", len(remaining))
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:3001", "base URL of the storefront server")
	cmd.Flags().StringVar(&token, "token", "", "bearer token to submit orders with")
	cmd.Flags().StringVar(&stateFile, "state", "client-state.json", "path of the local state file")
	return cmd
}
