package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"subburn/internal/layout"
	"subburn/internal/subtitles"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		width  int
		height int
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "render <cues.json|->",
		Short: "Render cues as an SSA, SRT or WebVTT document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			format = strings.ToLower(strings.TrimSpace(format))
			switch format {
			case subtitles.FormatASS, subtitles.FormatSRT, subtitles.FormatVTT:
			default:
				return fmt.Errorf("unsupported format %q (use ass, srt or vtt)", format)
			}
			cues, err := loadCues(cmd, args[0])
			if err != nil {
				return err
			}

			svc := subtitles.NewService(cfg, logger)
			result, err := svc.Render(cmd.Context(), cues, layout.Config{VideoWidth: width, VideoHeight: height})
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if target := strings.TrimSpace(output); target != "" && target != "-" {
				f, err := os.Create(target)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}
			if format == subtitles.FormatASS {
				_, err = io.WriteString(out, result.Document)
			} else {
				err = subtitles.Export(out, result.Events, format)
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", format, err)
			}
			if out != cmd.OutOrStdout() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d dialogue lines to %s\n", result.Lines, output)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 1920, "Video width in pixels")
	cmd.Flags().IntVar(&height, "height", 1080, "Video height in pixels")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", subtitles.FormatASS, "Output format: ass, srt or vtt")
	return cmd
}
