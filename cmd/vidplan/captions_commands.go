package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vidplan/internal/captions"
	"vidplan/internal/logging"
)

func newCaptionsCommand(ctx *commandContext) *cobra.Command {
	captionsCmd := &cobra.Command{
		Use:   "captions",
		Short: "Segment, validate, and normalize SRT captions",
	}

	captionsCmd.AddCommand(newCaptionsSegmentCommand(ctx))
	captionsCmd.AddCommand(newCaptionsValidateCommand(ctx))
	captionsCmd.AddCommand(newCaptionsFormatCommand(ctx))

	return captionsCmd
}

func newCaptionsSegmentCommand(ctx *commandContext) *cobra.Command {
	var textFile string
	var durationFlag string
	var wordsPerCaption int
	var output string

	cmd := &cobra.Command{
		Use:   "segment [narration...]",
		Short: "Split narration into evenly timed captions",
		Long: "Split narration into evenly timed captions. Narration comes from the arguments " +
			"or --file (use - for stdin). Without --duration the length is estimated from " +
			"the configured speaking rate.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			text, err := readNarration(cmd, args, textFile)
			if err != nil {
				return err
			}
			if len(captions.Words(text)) == 0 {
				return errors.New("narration is empty")
			}

			var duration float64
			if strings.TrimSpace(durationFlag) != "" {
				if duration, err = parseCaptionDuration(durationFlag); err != nil {
					return err
				}
			} else {
				duration = captions.EstimateDuration(text, cfg.Captions.WordsPerSecond)
			}
			if !cmd.Flags().Changed("words") {
				wordsPerCaption = cfg.Captions.WordsPerCaption
			}

			track := captions.Segment(text, duration, wordsPerCaption)
			return emitTrack(cmd, track, output)
		},
	}

	cmd.Flags().StringVarP(&textFile, "file", "f", "", "Read narration from a file (- for stdin)")
	cmd.Flags().StringVarP(&durationFlag, "duration", "d", "", "Narration length in seconds or as HH:MM:SS,mmm")
	cmd.Flags().IntVarP(&wordsPerCaption, "words", "w", captions.DefaultWordsPerCaption, "Words per caption")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the SRT to a file instead of stdout")
	return cmd
}

func newCaptionsValidateCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "validate <file.srt>",
		Short: "Check caption timing and text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := readTrack(ctx, args[0])
			if err != nil {
				return err
			}
			report := captions.Validate(track)
			if jsonOut {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printCaptionReport(cmd, args[0], track, report)
			}
			if !report.Valid {
				return fmt.Errorf("%s: %d caption issue(s)", args[0], len(report.Issues))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	return cmd
}

func newCaptionsFormatCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "format <file.srt>",
		Short: "Rewrite an SRT file with canonical numbering and timestamps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := readTrack(ctx, args[0])
			if err != nil {
				return err
			}
			return emitTrack(cmd, track, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the SRT to a file instead of stdout")
	return cmd
}

// readTrack parses an SRT file and warns about blocks the parser dropped.
func readTrack(ctx *commandContext, path string) (captions.Track, error) {
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	track, stats, err := captions.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if stats.Skipped > 0 {
		logging.WarnWithContext(logger, "malformed caption blocks skipped", "captions_blocks_skipped",
			logging.String("path", path),
			logging.Int("blocks", stats.Blocks),
			logging.Int("skipped", stats.Skipped),
			logging.String(logging.FieldErrorHint, "each block needs an index line, a timing line, and text"),
			logging.String(logging.FieldImpact, "skipped captions are missing from the output"),
		)
	}
	return track, nil
}

func emitTrack(cmd *cobra.Command, track captions.Track, output string) error {
	if strings.TrimSpace(output) == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), captions.Format(track))
		return err
	}
	if err := captions.WriteFile(output, track); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d captions to %s\n", len(track), output)
	return nil
}

func readNarration(cmd *cobra.Command, args []string, textFile string) (string, error) {
	textFile = strings.TrimSpace(textFile)
	switch {
	case textFile == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read narration: %w", err)
		}
		return string(data), nil
	case textFile != "":
		data, err := os.ReadFile(textFile)
		if err != nil {
			return "", fmt.Errorf("read narration: %w", err)
		}
		return string(data), nil
	default:
		return strings.Join(args, " "), nil
	}
}

// parseCaptionDuration accepts plain seconds or an SRT timestamp.
func parseCaptionDuration(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		if !(seconds > 0) {
			return 0, fmt.Errorf("duration must be positive, got %q", value)
		}
		return seconds, nil
	}
	seconds, err := captions.ParseTimestamp(value)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", value)
	}
	return seconds, nil
}

func printCaptionReport(cmd *cobra.Command, path string, track captions.Track, report captions.Report) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderStatusLine("Captions", statusInfo, fmt.Sprintf("%d in %s", len(track), path), colorize))
	fmt.Fprintln(out, renderStatusLine("Ends at", statusInfo, captions.FormatTimestamp(track.End()), colorize))
	if report.Valid {
		fmt.Fprintln(out, renderStatusLine("Validation", statusOK, "no issues", colorize))
		return
	}
	rows := make([][]string, 0, len(report.Issues))
	for i, issue := range report.Issues {
		rows = append(rows, []string{strconv.Itoa(i + 1), issue})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Issue"}, rows, []columnAlignment{alignRight, alignLeft}))
	fmt.Fprintln(out, renderStatusLine("Validation", statusError, fmt.Sprintf("%d issue(s)", len(report.Issues)), colorize))
}
