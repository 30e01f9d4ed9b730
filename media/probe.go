package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// ProbeResult carries the container metadata for one video file.
type ProbeResult struct {
	Raw      string  // verbatim ffprobe JSON report
	Duration float64 // container duration in seconds
}

// Probe runs ffprobe against videoPath and returns the full JSON report
// along with the parsed container duration.
func Probe(ctx context.Context, videoPath string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("ffprobe failed for %s: %w (stderr: %s)", videoPath, err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("ffprobe failed for %s: %w", videoPath, err)
	}

	result, err := parseProbeOutput(out)
	if err != nil {
		return nil, fmt.Errorf("ffprobe output for %s: %w", videoPath, err)
	}
	return result, nil
}

func parseProbeOutput(out []byte) (*ProbeResult, error) {
	var report struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	duration := 0.0
	if report.Format.Duration != "" {
		d, err := strconv.ParseFloat(report.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration %q: %w", report.Format.Duration, err)
		}
		duration = d
	}

	return &ProbeResult{Raw: string(out), Duration: duration}, nil
}
