package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParseSourceType(t *testing.T) {
	tests := []struct {
		in      string
		want    SourceType
		wantErr bool
	}{
		{"trackaddict", SourceTrackAddict, false},
		{"TrackAddict", SourceTrackAddict, false},
		{" gopro ", SourceGoPro, false},
		{"dashcam", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSourceType(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSourceType(%q) expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSourceType(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSourceType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAudioPath(t *testing.T) {
	if got := AudioPath("/footage/day1/cam1.mp4"); got != "/footage/day1/cam1.mp3" {
		t.Errorf("AudioPath = %q, want /footage/day1/cam1.mp3", got)
	}
	if got := AudioPath("/footage/clip.MP4"); got != "/footage/clip.mp3" {
		t.Errorf("AudioPath = %q, want /footage/clip.mp3", got)
	}
}

func TestExtractAudioReusesExistingTrack(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "clip.mp4")
	audioPath := filepath.Join(dir, "clip.mp3")
	if err := os.WriteFile(videoPath, []byte("video"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	if err := os.WriteFile(audioPath, []byte("already extracted"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	// ffmpeg must not run; the sibling already exists
	e := Extractor{Source: SourceTrackAddict}
	got, err := e.ExtractAudio(context.Background(), videoPath)
	if err != nil {
		t.Fatalf("ExtractAudio failed: %v", err)
	}
	if got != audioPath {
		t.Errorf("ExtractAudio = %q, want %q", got, audioPath)
	}

	data, err := os.ReadFile(audioPath)
	if err != nil {
		t.Fatalf("Failed to read audio file: %v", err)
	}
	if string(data) != "already extracted" {
		t.Error("Existing audio track was overwritten")
	}
}

func TestTelemetryPathTrackAddict(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "clip.mp4")
	csvPath := filepath.Join(dir, "clip.csv")
	if err := os.WriteFile(csvPath, []byte("# log"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	e := Extractor{Source: SourceTrackAddict}
	got, err := e.TelemetryPath(videoPath)
	if err != nil {
		t.Fatalf("TelemetryPath failed: %v", err)
	}
	if got != csvPath {
		t.Errorf("TelemetryPath = %q, want %q", got, csvPath)
	}
}

func TestTelemetryPathAbsent(t *testing.T) {
	e := Extractor{Source: SourceTrackAddict}
	got, err := e.TelemetryPath(filepath.Join(t.TempDir(), "clip.mp4"))
	if err != nil {
		t.Fatalf("TelemetryPath failed: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty path for absent telemetry, got %q", got)
	}
}

func TestTelemetryPathGoPro(t *testing.T) {
	e := Extractor{Source: SourceGoPro}
	if _, err := e.TelemetryPath("/footage/clip.mp4"); err == nil {
		t.Error("Expected error for gopro telemetry, got nil")
	}
}
