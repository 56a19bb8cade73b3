package main

import (
	"github.com/Veraticus/upi-triage/internal/cli"
	"github.com/Veraticus/upi-triage/internal/diagnosis"
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/spf13/cobra"
)

func diagnoseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose <transaction-id>",
		Short: "Ask the backend to diagnose a failed transaction",
		Long: `Fetch a transaction and ask the backend to explain why it failed.

Transactions that did not fail are reported as needing no diagnosis and no
request is made.`,
		Args: cobra.ExactArgs(1),
		RunE: runDiagnose,
	}

	cmd.Flags().Bool("json", false, "print the diagnosis as JSON")
	cmd.Flags().Bool("copy", false, "copy the diagnosis JSON to the clipboard")

	return cmd
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := requireSession(a.session(ctx), permission.DiagnoseTransactions); err != nil {
		return err
	}

	txn, err := a.client.GetTransaction(ctx, args[0])
	if err != nil {
		return backendError("failed to get transaction "+args[0], err)
	}

	flow := diagnosis.NewFlow(ctx)
	switch flow.Run(a.client, txn) {
	case diagnosis.StateNotNeeded:
		a.println(cli.FormatSuccess("No diagnosis needed: transaction " + txn.ID + " is " + string(txn.Status.Normalize())))
		return nil
	case diagnosis.StateFailed:
		return backendError("failed to diagnose "+txn.ID, flow.Err())
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := a.printJSON(flow.Diagnosis()); err != nil {
			return err
		}
	} else {
		a.println(renderDiagnosis(*flow.Diagnosis()))
	}

	if copyIt, _ := cmd.Flags().GetBool("copy"); copyIt {
		if err := flow.CopyTo(nil); err != nil {
			a.println(cli.FormatWarning(err.Error()))
			return nil
		}
		a.println(cli.FormatSuccess("Diagnosis copied to clipboard"))
	}
	return nil
}
