// Package transcription turns media into speaker-labelled utterances with
// word-level timing using the AssemblyAI API.
//
// Remote http(s) sources are handed to AssemblyAI by URL; local files are
// uploaded first. Provider text is NFC-normalized on the way in so that the
// sentence segmenter compares tokens and words in the same form.
package transcription
