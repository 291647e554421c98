package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newDepositCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit [amount]",
		Short: "Start a deposit and print the payment link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("the amount %q is not a whole number", args[0])
			}
			deposit, err := a.client.Payments.CreateDeposit(cmd.Context(), amount)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), deposit)
		},
	}
}

func newPurchaseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purchase [course-id]",
		Short: "Buy a course with the account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			purchase, err := a.client.Purchases.Purchase(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), purchase)
		},
	}
}

func newPurchasesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purchases",
		Short: "List the purchased courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			courses, err := a.client.Purchases.History(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), courses)
		},
	}
}
