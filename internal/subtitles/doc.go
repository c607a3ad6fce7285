// Package subtitles runs the caption pipeline end to end.
//
// Service ties the pure stages together: provider transcripts are segmented
// into timed sentences, sentences become styled cues, cues are laid out for a
// target resolution and serialized to Advanced SubStation Alpha. Embed adds
// the media side of the pipeline: it fetches the source video into a job
// workspace, probes its dimensions with ffprobe, burns the rendered script in
// with ffmpeg and publishes the result to the configured blob store.
package subtitles
