package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"vidplan/internal/assets"
	"vidplan/internal/fileutil"
	"vidplan/internal/logging"
	"vidplan/internal/plan"
	"vidplan/internal/preload"
	"vidplan/internal/presets"
	"vidplan/internal/resolver"
	"vidplan/internal/runstore"
	"vidplan/internal/services"
	"vidplan/internal/services/imagegen"
)

const backupSuffix = ".orig"

type resolveOptions struct {
	output   string
	preload  bool
	noBackup bool
	strict   bool
	jsonOut  bool
	// preloadFromConfig defers the preload decision to [preload] enabled.
	preloadFromConfig bool
}

type resolveSummary struct {
	RunID   string                 `json:"runId"`
	Status  runstore.Status        `json:"status"`
	Output  string                 `json:"output"`
	Backup  string                 `json:"backup,omitempty"`
	Ready   bool                   `json:"ready"`
	Scenes  []resolver.SceneReport `json:"scenes"`
	Preload []preload.Entry        `json:"preload,omitempty"`
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var opts resolveOptions

	cmd := &cobra.Command{
		Use:   "resolve <plan>",
		Short: "Generate missing image assets and write the resolved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.preloadFromConfig = !cmd.Flags().Changed("preload")
			return runResolve(cmd, ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the resolved plan here instead of replacing the input")
	cmd.Flags().BoolVar(&opts.preload, "preload", false, "Download resolved images into the cache directory")
	cmd.Flags().BoolVar(&opts.noBackup, "no-backup", false, "Skip the .orig backup when resolving in place")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit with an error when the resolved plan is not render-ready")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the run summary as JSON")
	return cmd
}

func runResolve(cmd *cobra.Command, ctx *commandContext, planPath string, opts resolveOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if opts.preloadFromConfig {
		opts.preload = cfg.Preload.Enabled
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	inputPath, err := filepath.Abs(strings.TrimSpace(planPath))
	if err != nil {
		return fmt.Errorf("resolve plan path: %w", err)
	}
	outputPath := inputPath
	if strings.TrimSpace(opts.output) != "" {
		if outputPath, err = filepath.Abs(strings.TrimSpace(opts.output)); err != nil {
			return fmt.Errorf("resolve output path: %w", err)
		}
	}

	p, err := plan.LoadFile(inputPath)
	if err != nil {
		return err
	}
	if p, err = presets.Apply(p); err != nil {
		return services.Wrap(services.ErrValidation, "plan", "apply presets", inputPath, err)
	}
	for _, issue := range p.CheckTimeline() {
		logging.WarnWithContext(logger, "plan timeline inconsistent", "plan_timeline_issue",
			logging.String("plan", p.DisplayName()),
			logging.String("issue", issue),
			logging.String(logging.FieldErrorHint, "fix scene start times and durations in the plan file"),
			logging.String(logging.FieldImpact, "renderer may drop or overlap scenes"),
		)
	}

	store, err := ctx.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run, err := store.BeginRun(runCtx, runstore.RunInput{
		PlanID:     p.ID,
		PlanPath:   inputPath,
		OutputPath: outputPath,
		SceneCount: len(p.Scenes),
	})
	if err != nil {
		return err
	}
	runCtx = services.WithRunID(runCtx, run.ID)
	// Bookkeeping after the run must survive an interrupt.
	finishCtx := context.WithoutCancel(runCtx)

	res := resolver.New(imagegen.NewFromConfig(cfg),
		resolver.WithLogger(logger),
		resolver.WithSceneConcurrency(cfg.Resolver.SceneConcurrency),
		resolver.WithDefaultStyle(cfg.Generation.DefaultStyle),
	)

	errOut := cmd.ErrOrStderr()
	colorize := shouldColorize(errOut)
	progress := func(sceneIndex int, assetID string, status assets.Status) {
		if !status.Done() || opts.jsonOut {
			return
		}
		label := fmt.Sprintf("Scene %d %s", sceneIndex+1, assetID)
		fmt.Fprintln(errOut, renderStatusLine(label, assetStatusKind(status), string(status), colorize))
	}

	result, resolveErr := res.Resolve(runCtx, p, progress)
	if resolveErr != nil && !errors.Is(resolveErr, context.Canceled) && !errors.Is(resolveErr, context.DeadlineExceeded) {
		_ = store.FinishRun(finishCtx, run.ID, services.RunStatus(resolveErr), resolveErr.Error())
		return resolveErr
	}

	recordOutcomes(finishCtx, store, run.ID, result, logger)

	summary := resolveSummary{
		RunID:  run.ID,
		Output: outputPath,
		Ready:  result.Ready(),
		Scenes: result.Scenes,
	}
	summary.Backup, err = writeResolvedPlan(inputPath, outputPath, result.Plan, opts.noBackup)
	if err != nil {
		_ = store.FinishRun(finishCtx, run.ID, runstore.StatusFailed, err.Error())
		return err
	}

	summary.Status = finalRunStatus(result, resolveErr)
	errMsg := ""
	if resolveErr != nil {
		errMsg = resolveErr.Error()
	}
	if err := store.FinishRun(finishCtx, run.ID, summary.Status, errMsg); err != nil {
		return err
	}

	if opts.preload && resolveErr == nil {
		summary.Preload = preload.NewFromConfig(cfg, logger).Preload(runCtx, preload.URLs(result.Plan))
	}

	if opts.jsonOut {
		if err := writeJSON(cmd, summary); err != nil {
			return err
		}
	} else {
		printResolveSummary(cmd, summary)
	}

	if resolveErr != nil {
		return resolveErr
	}
	if opts.strict && !summary.Ready {
		ready, failed, pending := result.Counts()
		return fmt.Errorf("plan %s is not render-ready (%d ready, %d failed, %d pending)", p.DisplayName(), ready, failed, pending)
	}
	return nil
}

func recordOutcomes(ctx context.Context, store *runstore.Store, runID string, result resolver.Result, logger *slog.Logger) {
	for _, scene := range result.Scenes {
		for _, item := range scene.Outcome.Items {
			rec := runstore.AssetRecord{
				RunID:        runID,
				SceneIndex:   scene.Index,
				AssetID:      item.AssetID,
				Status:       string(item.Status),
				URL:          item.URL,
				ErrorMessage: item.Error,
			}
			if err := store.RecordAsset(ctx, rec); err != nil {
				logging.WarnWithContext(logger, "asset outcome not recorded", "run_store_write_failed",
					logging.String(logging.FieldRunID, runID),
					logging.String("asset_id", item.AssetID),
					logging.Error(err),
					logging.String(logging.FieldImpact, "run history is incomplete"),
				)
			}
		}
	}
}

// writeResolvedPlan saves p to outputPath. When the plan is resolved in place
// the original file is first copied next to it and the backup path returned.
func writeResolvedPlan(inputPath, outputPath string, p plan.VideoPlan, noBackup bool) (string, error) {
	backup := ""
	if outputPath == inputPath && !noBackup {
		backup = inputPath + backupSuffix
		if err := fileutil.CopyFile(inputPath, backup); err != nil {
			return "", fmt.Errorf("back up plan: %w", err)
		}
	}
	if err := plan.SaveFile(outputPath, p); err != nil {
		return backup, err
	}
	return backup, nil
}

func finalRunStatus(result resolver.Result, resolveErr error) runstore.Status {
	if resolveErr != nil {
		return services.RunStatus(resolveErr)
	}
	if result.Ready() {
		return runstore.StatusCompleted
	}
	return runstore.StatusPartial
}

func printResolveSummary(cmd *cobra.Command, summary resolveSummary) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	rows := make([][]string, 0, len(summary.Scenes))
	for _, scene := range summary.Scenes {
		ready, failed, pending := scene.Outcome.Counts()
		state := "ready"
		kind := statusOK
		switch {
		case !scene.Resolved:
			state, kind = "skipped", statusWarn
		case !scene.Readiness.Valid:
			state, kind = "incomplete", statusWarn
		}
		rows = append(rows, []string{
			strconv.Itoa(scene.Index + 1),
			scene.SceneID,
			strconv.Itoa(scene.Requirements),
			strconv.Itoa(ready),
			strconv.Itoa(failed),
			strconv.Itoa(pending),
			colorizeStatus(state, kind, colorize),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Scene", "Assets", "Ready", "Failed", "Pending", "State"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))

	fmt.Fprintln(out, renderStatusLine("Run", runStatusKind(summary.Status), fmt.Sprintf("%s (%s)", summary.Status, summary.RunID), colorize))
	fmt.Fprintln(out, renderStatusLine("Output", statusInfo, summary.Output, colorize))
	if summary.Backup != "" {
		fmt.Fprintln(out, renderStatusLine("Backup", statusInfo, summary.Backup, colorize))
	}
	readyKind := statusOK
	if !summary.Ready {
		readyKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Render ready", readyKind, yesNo(summary.Ready), colorize))

	for _, scene := range summary.Scenes {
		for _, failed := range scene.Outcome.Failed() {
			fmt.Fprintln(out, renderStatusLine("Asset "+failed.AssetID, statusError, failed.Error, colorize))
		}
		for _, issue := range scene.Readiness.Issues {
			fmt.Fprintln(out, renderStatusLine(fmt.Sprintf("Scene %d", scene.Index+1), statusWarn, issue, colorize))
		}
	}

	if len(summary.Preload) > 0 {
		cached := 0
		for _, entry := range summary.Preload {
			if entry.OK() {
				cached++
			}
		}
		kind := statusOK
		if cached < len(summary.Preload) {
			kind = statusWarn
		}
		fmt.Fprintln(out, renderStatusLine("Preload", kind, fmt.Sprintf("%d/%d cached", cached, len(summary.Preload)), colorize))
	}
}
