package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"course-commerce/internal/app"
	"course-commerce/internal/service"

	"github.com/spf13/cobra"
)

func sweepStaleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep-stale",
		Short: "Mark pending transactions older than the cutoff as failed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			olderThan, _ := cmd.Flags().GetDuration("older-than")
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if olderThan <= 0 {
					olderThan = a.Config.Sweep.MaxAge
				}
				n, err := a.Sweep.SweepStale(ctx, time.Now(), olderThan)
				if err != nil {
					return err
				}
				fmt.Printf("%d pending row(s) older than %s marked failed\n", n, olderThan)
				return nil
			})
		},
	}

	cmd.Flags().Duration("older-than", 0, "Age after which a pending row is stale (default SWEEP_MAX_AGE)")
	return cmd
}

func checkStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-status [order_id]",
		Short: "Ask the gateway for an order's status and reconcile the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Reconcile.CheckStatus(ctx, &service.CheckStatusRequest{OrderID: args[0]})
				if err != nil {
					return err
				}
				return printJSON(res)
			})
		},
	}
}

func setStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-status [order_id] [transaction_status]",
		Short: "Apply a gateway status to an order by hand",
		Long: `Apply a gateway transaction status (capture, settlement, pending,
deny, expire, cancel) to every row of an order. Paid and failed orders
do not move.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paymentType, _ := cmd.Flags().GetString("payment-type")
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Reconcile.UpdateStatus(ctx, &service.UpdateStatusRequest{
					OrderID:           args[0],
					TransactionStatus: args[1],
					PaymentType:       paymentType,
				})
				if err != nil {
					return err
				}
				return printJSON(res)
			})
		},
	}

	cmd.Flags().StringP("payment-type", "p", "", "Payment type to record on the rows")
	return cmd
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
