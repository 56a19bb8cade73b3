package main

import (
	"fmt"
	"sort"

	"github.com/Veraticus/upi-triage/internal/api"
	"github.com/Veraticus/upi-triage/internal/cli"
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/spf13/cobra"
)

func datasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage the backend's transaction dataset",
		Long: `Manage the dataset the backend serves transactions from.

load and ingest fetch the public UPI dataset and store it. simulate replays
it as live traffic. These are backend operations; triage only triggers them.`,
	}

	cmd.AddCommand(datasetActionCmd("load", "Load the public dataset into the backend", permission.SystemSettings,
		func(cmd *cobra.Command, a *app) (api.DatasetReport, error) {
			return a.client.LoadDataset(cmd.Context())
		}))
	cmd.AddCommand(datasetActionCmd("ingest", "Persist the loaded dataset in the backend database", permission.SystemSettings,
		func(cmd *cobra.Command, a *app) (api.DatasetReport, error) {
			return a.client.IngestDataset(cmd.Context())
		}))
	cmd.AddCommand(datasetActionCmd("stats", "Show dataset statistics", permission.ViewAnalytics,
		func(cmd *cobra.Command, a *app) (api.DatasetReport, error) {
			return a.client.DatasetStatistics(cmd.Context())
		}))
	cmd.AddCommand(datasetInfoCmd())
	cmd.AddCommand(datasetSimulateCmd())

	return cmd
}

type datasetAction func(cmd *cobra.Command, a *app) (api.DatasetReport, error)

func datasetActionCmd(use, short string, required permission.Permission, action datasetAction) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := requireSession(a.session(cmd.Context()), required); err != nil {
				return err
			}

			report, err := action(cmd, a)
			if err != nil {
				return backendError("dataset "+use+" failed", err)
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return a.printJSON(report)
			}
			printDatasetReport(a, report)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func printDatasetReport(a *app, report api.DatasetReport) {
	if report.Message != "" {
		a.println(cli.FormatSuccess(report.Message))
	} else {
		a.println(cli.FormatSuccess("Status: " + orDash(report.Status)))
	}

	pairs := [][2]string{}
	if report.TransactionCount > 0 {
		pairs = append(pairs, [2]string{"Transactions", fmt.Sprintf("%d", report.TransactionCount)})
	}
	if report.InsertedCount > 0 {
		pairs = append(pairs, [2]string{"Inserted", fmt.Sprintf("%d", report.InsertedCount)})
	}
	keys := make([]string, 0, len(report.Statistics))
	for k := range report.Statistics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, fmt.Sprintf("%v", report.Statistics[k])})
	}
	if len(pairs) > 0 {
		a.println(cli.RenderKeyValues(pairs))
	}
}

func datasetInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Describe the dataset and its failure type mapping",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := requireSession(a.session(cmd.Context()), permission.ViewAnalytics); err != nil {
				return err
			}

			info, err := a.client.DatasetInfo(cmd.Context())
			if err != nil {
				return backendError("dataset info failed", err)
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return a.printJSON(info)
			}

			a.println(cli.FormatTitle(orDash(info.DatasetName)))
			a.println(cli.RenderKeyValues([][2]string{
				{"Source", orDash(info.Source)},
				{"Description", orDash(info.Description)},
			}))
			if mapping := info.Mapping["issue_types_to_failure_types"]; len(mapping) > 0 {
				a.println()
				a.println(cli.BoldStyle.Render("Issue type mapping"))
				issues := make([]string, 0, len(mapping))
				for issue := range mapping {
					issues = append(issues, issue)
				}
				sort.Strings(issues)
				for _, issue := range issues {
					a.printf("  %s → %s\n", issue, mapping[issue])
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func datasetSimulateCmd() *cobra.Command {
	var speed float64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay the dataset as real-time traffic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := requireSession(a.session(cmd.Context()), permission.SystemSettings); err != nil {
				return err
			}

			report, err := a.client.SimulateRealtime(cmd.Context(), speed)
			if err != nil {
				return backendError("simulation failed", err)
			}
			printDatasetReport(a, report)
			return nil
		},
	}
	cmd.Flags().Float64Var(&speed, "speed", api.DefaultSpeedMultiplier, "replay speed multiplier")
	return cmd
}
