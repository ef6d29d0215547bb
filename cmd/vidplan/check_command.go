package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vidplan/internal/assets"
	"vidplan/internal/plan"
)

type imageRow struct {
	Scene       int    `json:"scene"`
	SceneID     string `json:"sceneId"`
	AssetID     string `json:"assetId"`
	Provided    bool   `json:"provided"`
	Description string `json:"description,omitempty"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Style       string `json:"style"`
}

type checkReport struct {
	Plan      string           `json:"plan"`
	Timeline  []string         `json:"timeline"`
	Readiness assets.Readiness `json:"readiness"`
	Images    []imageRow       `json:"images"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "check <plan>",
		Short: "Report the timeline and render readiness of a plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p, err := plan.LoadFile(args[0])
			if err != nil {
				return err
			}
			report := buildCheckReport(p, assets.Extractor{DefaultStyle: cfg.Generation.DefaultStyle})
			if jsonOut {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printCheckReport(cmd, report)
			}
			if len(report.Timeline) > 0 || !report.Readiness.Valid {
				return fmt.Errorf("plan %s is not render-ready", report.Plan)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	return cmd
}

func buildCheckReport(p plan.VideoPlan, extractor assets.Extractor) checkReport {
	report := checkReport{
		Plan:      p.DisplayName(),
		Timeline:  p.CheckTimeline(),
		Readiness: assets.CheckPlan(p),
		Images:    []imageRow{},
	}
	if report.Timeline == nil {
		report.Timeline = []string{}
	}
	for i, scene := range p.Scenes {
		for _, req := range extractor.Scan(scene.Elements) {
			report.Images = append(report.Images, imageRow{
				Scene:       i + 1,
				SceneID:     scene.ID,
				AssetID:     req.AssetID,
				Provided:    req.UserProvided,
				Description: req.Description,
				Width:       req.Spec.Width,
				Height:      req.Spec.Height,
				Style:       req.Spec.Style,
			})
		}
	}
	return report
}

func printCheckReport(cmd *cobra.Command, report checkReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Plan "+report.Plan, colorize) {
		fmt.Fprintln(out, line)
	}

	if len(report.Images) > 0 {
		rows := make([][]string, 0, len(report.Images))
		for _, img := range report.Images {
			state := colorizeStatus("missing", statusWarn, colorize)
			if img.Provided {
				state = colorizeStatus("provided", statusOK, colorize)
			}
			rows = append(rows, []string{
				strconv.Itoa(img.Scene),
				img.AssetID,
				state,
				fmt.Sprintf("%dx%d", img.Width, img.Height),
				img.Style,
				img.Description,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Scene", "Image", "Source", "Size", "Style", "Description"},
			rows,
			[]columnAlignment{alignRight},
		))
	}

	if len(report.Timeline) == 0 {
		fmt.Fprintln(out, renderStatusLine("Timeline", statusOK, "consistent", colorize))
	}
	for _, issue := range report.Timeline {
		fmt.Fprintln(out, renderStatusLine("Timeline", statusError, issue, colorize))
	}

	if report.Readiness.Valid {
		fmt.Fprintln(out, renderStatusLine("Render ready", statusOK, "yes", colorize))
		return
	}
	fmt.Fprintln(out, renderStatusLine("Render ready", statusWarn, "no", colorize))
	for _, id := range report.Readiness.MissingImages {
		fmt.Fprintln(out, renderStatusLine("Missing image", statusWarn, id, colorize))
	}
	for _, issue := range report.Readiness.Issues {
		fmt.Fprintln(out, renderStatusLine("Invalid source", statusError, issue, colorize))
	}
}
