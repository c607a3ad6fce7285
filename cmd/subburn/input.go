package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"subburn/internal/api"
	"subburn/internal/layout"
	"subburn/internal/transcript"
)

// loadUtterances accepts a bare utterance array, {"utterances": [...]}, or a
// /transcribe response body.
func loadUtterances(cmd *cobra.Command, path string) ([]transcript.Utterance, error) {
	var raw json.RawMessage
	if err := readJSONInput(cmd, path, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []transcript.Utterance
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("parse utterances: %w", err)
		}
		return list, nil
	}

	var doc struct {
		Utterances []transcript.Utterance `json:"utterances"`
		Data       *struct {
			Utterances []transcript.Utterance `json:"utterances"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	switch {
	case doc.Utterances != nil:
		return doc.Utterances, nil
	case doc.Data != nil && doc.Data.Utterances != nil:
		return doc.Data.Utterances, nil
	default:
		return nil, errors.New("transcript has no utterances")
	}
}

// loadCues accepts a bare cue array or {"subtitle_data": [...]}. Missing
// colours and sizes get the API defaults.
func loadCues(cmd *cobra.Command, path string) ([]layout.Cue, error) {
	var raw json.RawMessage
	if err := readJSONInput(cmd, path, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	var data []api.SubtitleData
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parse cues: %w", err)
		}
		return api.Cues(data), nil
	}
	var doc struct {
		SubtitleData []api.SubtitleData `json:"subtitle_data"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse cues: %w", err)
	}
	if doc.SubtitleData == nil {
		return nil, errors.New("input has no subtitle_data")
	}
	return api.Cues(doc.SubtitleData), nil
}
