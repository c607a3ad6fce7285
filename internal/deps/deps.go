package deps

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency subburn relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

var commandOutput = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// CheckFFmpegFilter reports whether the ffmpeg build behind binary provides
// the named filter. Burn-in needs "ass", which is only present when ffmpeg
// was built with libass.
func CheckFFmpegFilter(ctx context.Context, binary, filter string) Status {
	status := Status{
		Name:        "FFmpeg " + filter + " filter",
		Command:     strings.TrimSpace(binary),
		Description: "Required to render subtitles onto video frames",
	}
	if status.Command == "" {
		status.Command = "ffmpeg"
	}
	out, err := commandOutput(ctx, status.Command, "-hide_banner", "-filters")
	if err != nil {
		status.Detail = fmt.Sprintf("list filters: %v", err)
		return status
	}
	if !hasFilter(string(out), filter) {
		status.Detail = fmt.Sprintf("filter %q not available (rebuild ffmpeg with libass)", filter)
		return status
	}
	status.Available = true
	return status
}

// hasFilter scans `ffmpeg -filters` output, where each filter line is
// " <flags> <name> <io> <description>".
func hasFilter(listing, filter string) bool {
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == filter {
			return true
		}
	}
	return false
}
