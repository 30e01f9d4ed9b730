package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// SourceType identifies the device profile a batch of footage came from; it
// decides how GPS telemetry is located.
type SourceType string

const (
	SourceTrackAddict SourceType = "trackaddict"
	SourceGoPro       SourceType = "gopro"
)

// ParseSourceType validates a configured source type string.
func ParseSourceType(s string) (SourceType, error) {
	switch SourceType(strings.ToLower(strings.TrimSpace(s))) {
	case SourceTrackAddict:
		return SourceTrackAddict, nil
	case SourceGoPro:
		return SourceGoPro, nil
	}
	return "", fmt.Errorf("unknown source type %q (expected %q or %q)", s, SourceTrackAddict, SourceGoPro)
}

// Extractor bundles the per-video media extraction steps for one source
// profile.
type Extractor struct {
	Source SourceType
}

// AudioPath returns the sibling audio path derived from a video path
// (clip.mp4 -> clip.mp3).
func AudioPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".mp3"
}

// ExtractAudio writes the audio track of videoPath to its sibling mp3 and
// returns the derived path. An existing sibling is reused without invoking
// ffmpeg, so re-running a batch does not redo finished work.
func (e Extractor) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	audioPath := AudioPath(videoPath)
	if _, err := os.Stat(audioPath); err == nil {
		return audioPath, nil
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		audioPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(audioPath) // don't leave a truncated track behind
		return "", fmt.Errorf("ffmpeg audio extraction failed for %s: %w (output: %s)", videoPath, err, string(output))
	}
	return audioPath, nil
}

// Probe reports container metadata for videoPath.
func (e Extractor) Probe(ctx context.Context, videoPath string) (*ProbeResult, error) {
	return Probe(ctx, videoPath)
}

// TelemetryPath locates the GPS telemetry log for videoPath. TrackAddict
// exports land as a sibling CSV next to the recording; an empty path with a
// nil error means the device provided no telemetry. GoPro containers embed
// telemetry in a data stream the extractor cannot unpack yet.
func (e Extractor) TelemetryPath(videoPath string) (string, error) {
	switch e.Source {
	case SourceTrackAddict:
		csvPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".csv"
		if _, err := os.Stat(csvPath); err != nil {
			return "", nil
		}
		return csvPath, nil
	case SourceGoPro:
		return "", fmt.Errorf("gopro embedded telemetry extraction is not supported")
	}
	return "", fmt.Errorf("unknown source type %q", e.Source)
}
