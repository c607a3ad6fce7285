// Command subburn turns word-timed transcripts into styled subtitles and
// burns them into video.
//
// One-shot commands (transcribe, segment, render, embed) run the pipeline
// in-process and print JSON, or a table when stdout is a terminal. `serve`
// runs the HTTP API; `check` reports environment readiness.
//
// A typical chain:
//
//	subburn transcribe talk.mp4 > transcript.json
//	subburn segment --cues transcript.json > cues.json
//	subburn render cues.json --width 1920 --height 1080 -o talk.ass
//	subburn embed cues.json talk.mp4
package main
