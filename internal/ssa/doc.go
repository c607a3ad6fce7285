// Package ssa renders display chunks as a SubStation Alpha (v4.00+) script.
//
// The output grammar is consumed directly by ffmpeg's ass filter, so header
// lines, field order, colour literals and the H:MM:SS.CC time format are fixed.
// Per-cue styling is expressed as inline override blocks ({\c..\fs..}) rather
// than extra style definitions.
package ssa
