package main

import (
	"github.com/Veraticus/upi-triage/internal/api"
	"github.com/Veraticus/upi-triage/internal/cli"
	"github.com/Veraticus/upi-triage/internal/filter"
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txn", "txns"},
		Short:   "List and inspect transactions",
	}

	cmd.AddCommand(transactionsListCmd())
	cmd.AddCommand(transactionsGetCmd())

	return cmd
}

func transactionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions from the backend",
		Long: `List transactions from the backend.

--failure-type and --search are sent to the backend. --status and --filter
are applied locally the same way the dashboard filters.`,
		RunE: runTransactionsList,
	}

	cmd.Flags().Int("limit", 0, "number of transactions to fetch (default from config)")
	cmd.Flags().Int("skip", 0, "number of transactions to skip")
	cmd.Flags().String("failure-type", "", "only this failure type (server side)")
	cmd.Flags().String("search", "", "backend search term")
	cmd.Flags().String("status", filter.All, "status filter: all, success, failed, pending")
	cmd.Flags().String("filter", "", "local search over ID, VPAs and failure reason")
	cmd.Flags().Bool("json", false, "print JSON instead of a table")

	return cmd
}

func runTransactionsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := requireSession(a.session(ctx), permission.ViewTransactions); err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = a.settings.FetchLimit
	}
	skip, _ := cmd.Flags().GetInt("skip")
	failureType, _ := cmd.Flags().GetString("failure-type")
	search, _ := cmd.Flags().GetString("search")
	status, _ := cmd.Flags().GetString("status")
	local, _ := cmd.Flags().GetString("filter")
	asJSON, _ := cmd.Flags().GetBool("json")

	transactions, err := a.client.ListTransactions(ctx, api.ListOptions{
		Limit:       limit,
		Skip:        skip,
		FailureType: failureType,
		Search:      search,
	})
	if err != nil {
		return backendError("failed to list transactions", err)
	}

	transactions = filter.Apply(transactions, filter.Criteria{Search: local, Status: status})

	if asJSON {
		return a.printJSON(transactions)
	}
	if len(transactions) == 0 {
		a.println(cli.FormatInfo("No transactions found"))
		return nil
	}
	a.println(renderTransactions(transactions))
	a.printf("%d transactions\n", len(transactions))
	return nil
}

func transactionsGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <transaction-id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE:  runTransactionsGet,
	}
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func runTransactionsGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := requireSession(a.session(ctx), permission.ViewTransactions); err != nil {
		return err
	}

	txn, err := a.client.GetTransaction(ctx, args[0])
	if err != nil {
		return backendError("failed to get transaction "+args[0], err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return a.printJSON(txn)
	}
	a.println(renderTransaction(txn))
	return nil
}
