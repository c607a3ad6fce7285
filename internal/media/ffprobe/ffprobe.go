package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoVideoStream is returned when a probed file has no usable video stream.
var ErrNoVideoStream = errors.New("no video stream")

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int        `json:"index"`
	CodecName    string     `json:"codec_name"`
	CodecType    string     `json:"codec_type"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	Duration     string     `json:"duration"`
	Tags         StreamTags `json:"tags"`
	SideDataList []SideData `json:"side_data_list"`
}

// StreamTags holds the stream tags we care about.
type StreamTags struct {
	Rotate string `json:"rotate"`
}

// SideData carries display-matrix rotation reported by newer ffprobe builds.
type SideData struct {
	SideDataType string `json:"side_data_type"`
	Rotation     int    `json:"rotation"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// commandOutput runs ffprobe; tests replace it.
var commandOutput = func(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Inspect executes ffprobe against the provided path or URL and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	output, err := commandOutput(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// VideoStream returns the first video stream with non-zero dimensions.
func (r Result) VideoStream() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") && stream.Width > 0 && stream.Height > 0 {
			return stream, true
		}
	}
	return Stream{}, false
}

// VideoDimensions returns the displayed width and height of the first video
// stream. Streams rotated by 90 or 270 degrees report swapped dimensions
// because ffmpeg autorotates before filters run.
func (r Result) VideoDimensions() (int, int, error) {
	stream, ok := r.VideoStream()
	if !ok {
		return 0, 0, ErrNoVideoStream
	}
	if quarterTurn(stream.Rotation()) {
		return stream.Height, stream.Width, nil
	}
	return stream.Width, stream.Height, nil
}

// Rotation returns the stream rotation in degrees, preferring display-matrix
// side data over the legacy rotate tag.
func (s Stream) Rotation() int {
	for _, sd := range s.SideDataList {
		if sd.Rotation != 0 {
			return sd.Rotation
		}
	}
	if v, err := strconv.Atoi(strings.TrimSpace(s.Tags.Rotate)); err == nil {
		return v
	}
	return 0
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

func quarterTurn(degrees int) bool {
	d := degrees % 180
	return d == 90 || d == -90
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
