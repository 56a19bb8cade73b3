package main

import (
	"fmt"

	"github.com/Veraticus/upi-triage/internal/cli"
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func failureTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "failure-types",
		Short: "Show the backend's failure type distribution",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := requireSession(a.session(ctx), permission.ViewAnalytics); err != nil {
				return err
			}

			counts, err := a.client.FailureTypes(ctx)
			if err != nil {
				return backendError("failed to get failure types", err)
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				out := make(map[string]int, len(counts))
				for _, c := range counts {
					out[string(c.Type)] = c.Count
				}
				return a.printJSON(out)
			}

			total := 0
			for _, c := range counts {
				total += c.Count
			}
			rows := make([][]string, 0, len(counts))
			for _, c := range counts {
				share := 0.0
				if total > 0 {
					share = float64(c.Count) / float64(total) * 100
				}
				rows = append(rows, []string{c.Type.Label(), string(c.Type), fmt.Sprintf("%d", c.Count), fmt.Sprintf("%.1f%%", share)})
			}

			a.println(cli.FormatTitle("Failure types"))
			a.println(table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(cli.SubtleStyle).
				Headers("TYPE", "TAG", "COUNT", "SHARE").
				Rows(rows...).
				Render())
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is up",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			status, err := a.client.Health(cmd.Context())
			if err != nil {
				return backendError("health check failed", err)
			}
			if !status.Healthy() {
				return fmt.Errorf("backend %s reported status %q", a.client.BaseURL(), status.Status)
			}
			a.println(cli.FormatSuccess(fmt.Sprintf("%s is %s at %s", orDash(status.Service), status.Status, a.client.BaseURL())))
			return nil
		},
	}
}
