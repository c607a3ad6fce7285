package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"subburn/internal/api"
	"subburn/internal/daemonrun"
	"subburn/internal/subtitles"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var transcriptID string

	cmd := &cobra.Command{
		Use:   "transcribe [media]",
		Short: "Transcribe a local file or URL with word timings",
		Long: "Transcribe a local media file or http(s) URL and print utterances as JSON.\n" +
			"With --id, fetch a finished transcript instead of submitting a new one.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(transcriptID)
			if id == "" && len(args) == 0 {
				return errors.New("a media path or --id is required")
			}
			return ctx.withPipeline(func(p *daemonrun.Pipeline) error {
				var (
					result subtitles.TranscribeResult
					err    error
				)
				if id != "" {
					result, err = p.Service.TranscriptByID(cmd.Context(), id)
				} else {
					result, err = p.Service.Transcribe(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}
				return writeJSON(cmd, api.TranscribeData{
					TranscriptID: result.ID,
					Cached:       result.Cached,
					Utterances:   result.Utterances,
				})
			})
		},
	}
	cmd.Flags().StringVar(&transcriptID, "id", "", "Fetch an existing transcript by ID")
	return cmd
}
