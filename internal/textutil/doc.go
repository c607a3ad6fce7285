// Package textutil provides text helpers shared by the transcription client
// and the job workspace: Unicode normalization of provider text and
// filesystem-safe names for downloaded media.
package textutil
