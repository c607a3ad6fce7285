package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"subburn/internal/logging"
	"subburn/internal/subtitles"
	"subburn/internal/transcript"
)

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	var (
		asCues bool
		asJSON bool
		color  string
		size   int
		bold   bool
		italic bool
	)

	cmd := &cobra.Command{
		Use:   "segment <transcript.json|->",
		Short: "Split utterances into timed sentences",
		Long: "Split each utterance into sentences and recover their timing from the word list.\n" +
			"Prints a table on a terminal and JSON otherwise. --cues emits render-ready cues.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			utterances, err := loadUtterances(cmd, args[0])
			if err != nil {
				return err
			}

			svc := subtitles.NewService(cfg, logging.NewComponentLogger(logger, "cli"))
			sentences, err := svc.Segment(cmd.Context(), utterances)
			if err != nil {
				return err
			}
			if sentences == nil {
				sentences = []transcript.Sentence{}
			}

			if asCues {
				cues := svc.CuesFromSentences(sentences, subtitles.CueStyle{
					FontColor: color,
					FontSize:  size,
					Bold:      bold,
					Italic:    italic,
				})
				return writeJSON(cmd, cues)
			}
			if asJSON || !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, sentences)
			}
			fmt.Fprintln(cmd.OutOrStdout(), sentenceTable(sentences))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asCues, "cues", false, "Emit cues for render/embed instead of sentences")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON even on a terminal")
	cmd.Flags().StringVar(&color, "color", "", "Cue colour as #RRGGBB (default from config)")
	cmd.Flags().IntVar(&size, "size", 0, "Cue font size (default from config)")
	cmd.Flags().BoolVar(&bold, "bold", false, "Mark cues bold")
	cmd.Flags().BoolVar(&italic, "italic", false, "Mark cues italic")
	return cmd
}

func sentenceTable(sentences []transcript.Sentence) string {
	rows := make([][]string, 0, len(sentences))
	for i, s := range sentences {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.Speaker,
			formatMillis(s.Start),
			formatMillis(s.End),
			fmt.Sprintf("%.2fs", float64(s.Duration())/1000),
			strconv.Itoa(len(s.Words)),
			s.Text,
		})
	}
	return renderTable(
		[]string{"#", "Speaker", "Start", "End", "Length", "Words", "Text"},
		rows,
		0, 2, 3, 4, 5,
	)
}
