// Package transcript models timestamped speech from a transcription provider
// and re-segments it into sentences.
//
// Utterances arrive with their own text and an ordered list of timed words.
// Segment splits the text on terminal punctuation and walks the word list with
// an Aligner to recover each sentence's start and end. The Aligner owns the
// cursor for one utterance; callers create a fresh one per utterance so that
// segmentation of different utterances can run concurrently.
package transcript
