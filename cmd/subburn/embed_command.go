package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subburn/internal/daemonrun"
	"subburn/internal/subtitles"
)

func newEmbedCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "embed <cues.json|-> <video>",
		Short: "Burn cues into a video and publish the result",
		Long: "Fetch the video (local path or http(s) URL), render cues at its resolution,\n" +
			"burn them in with ffmpeg and upload the output to the configured store.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cues, err := loadCues(cmd, args[0])
			if err != nil {
				return err
			}
			return ctx.withPipeline(func(p *daemonrun.Pipeline) error {
				result, err := p.Service.Embed(cmd.Context(), subtitles.EmbedRequest{
					VideoPath: args[1],
					Cues:      cues,
				})
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, result)
				}
				fmt.Fprintln(cmd.OutOrStdout(), result.OutputURL)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full job result as JSON")
	return cmd
}
