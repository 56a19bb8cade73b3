package main

import (
	"fmt"

	"github.com/Veraticus/upi-triage/internal/cli"
	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the offline snapshot cache",
	}
	cmd.AddCommand(cacheListCmd())
	cmd.AddCommand(cacheClearCmd())
	return cmd
}

func cacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			db, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			snapshots, err := db.ListSnapshots(ctx)
			if err != nil {
				return err
			}
			if len(snapshots) == 0 {
				a.println(cli.FormatInfo("No snapshots cached in " + db.Path()))
				return nil
			}

			a.println(cli.FormatTitle("Snapshots"))
			for _, s := range snapshots {
				a.printf("  #%-4d %s  %-22s %4d transactions  %s\n",
					s.ID,
					s.FetchedAt.Local().Format("2006-01-02 15:04:05"),
					orAll(s.FailureType),
					s.TransactionCount,
					cli.SubtleStyle.Render(s.BackendURL),
				)
			}
			return nil
		},
	}
}

func cacheClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			if !force {
				reader := cli.NewNonBlockingReader(cmd.InOrStdin())
				ok, err := cli.Confirm(ctx, reader, a.out, "Delete all cached snapshots?")
				if err != nil {
					return err
				}
				if !ok {
					a.println(cli.FormatInfo("Nothing deleted"))
					return nil
				}
			}

			db, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			n, err := db.ClearSnapshots(ctx)
			if err != nil {
				return err
			}
			a.println(cli.FormatSuccess(fmt.Sprintf("Deleted %d snapshots", n)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}
