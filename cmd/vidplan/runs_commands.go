package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"vidplan/internal/assets"
	"vidplan/internal/runstore"
)

const runTimeLayout = "2006-01-02 15:04:05"

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect resolution run history",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent resolution runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				if runs == nil {
					runs = []runstore.Run{}
				}
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.PlanID,
					colorizeStatus(string(run.Status), runStatusKind(run.Status), colorize),
					strconv.Itoa(run.SceneCount),
					fmt.Sprintf("%d/%d", run.AssetsReady, run.AssetsTotal),
					strconv.Itoa(run.AssetsFailed),
					formatRunTime(run.StartedAt),
					formatElapsed(run.Elapsed()),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Plan", "Status", "Scenes", "Ready", "Failed", "Started", "Elapsed"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print runs as JSON")
	return cmd
}

type runDetail struct {
	Run    runstore.Run            `json:"run"`
	Assets []runstore.AssetRecord `json:"assets"`
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its per-asset outcomes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}
			records, err := store.ListAssets(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if records == nil {
				records = []runstore.AssetRecord{}
			}
			if jsonOut {
				return writeJSON(cmd, runDetail{Run: *run, Assets: records})
			}
			printRunDetail(cmd, *run, records)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run as JSON")
	return cmd
}

func printRunDetail(cmd *cobra.Command, run runstore.Run, records []runstore.AssetRecord) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Status", runStatusKind(run.Status), string(run.Status), colorize))
	fmt.Fprintln(out, renderStatusLine("Plan", statusInfo, run.PlanID, colorize))
	fmt.Fprintln(out, renderStatusLine("Input", statusInfo, run.PlanPath, colorize))
	fmt.Fprintln(out, renderStatusLine("Output", statusInfo, run.OutputPath, colorize))
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, formatRunTime(run.StartedAt), colorize))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, formatElapsed(run.Elapsed()), colorize))
	}
	if run.ErrorMessage != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, run.ErrorMessage, colorize))
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No asset outcomes recorded")
		return
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		detail := rec.URL
		if rec.ErrorMessage != "" {
			detail = rec.ErrorMessage
		}
		status := assets.Status(rec.Status)
		rows = append(rows, []string{
			strconv.Itoa(rec.SceneIndex + 1),
			rec.AssetID,
			colorizeStatus(rec.Status, assetStatusKind(status), colorize),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Scene", "Asset", "Status", "URL / Error"},
		rows,
		[]columnAlignment{alignRight},
	))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatRunTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(runTimeLayout)
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
