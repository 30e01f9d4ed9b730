// Package thumbnail captures per-segment preview frames from source videos.
package thumbnail

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Sampler seeks a video to an offset, grabs one frame, and returns it scaled
// to a fixed width and encoded as PNG. A capture handle is held open across
// calls for the same video, matching the one-video-at-a-time batch order.
// Sampling is best-effort: every failure is logged and yields nil, and the
// owning segment row is written with a NULL thumbnail.
type Sampler struct {
	width  int
	logger *zap.Logger

	path       string
	capture    *gocv.VideoCapture
	failedPath string // remember an unopenable video so every segment doesn't retry
}

// NewSampler returns a Sampler producing frames width pixels wide.
func NewSampler(width int, logger *zap.Logger) *Sampler {
	return &Sampler{width: width, logger: logger}
}

// Sample returns the encoded frame at atSeconds in videoPath, or nil when
// the frame cannot be captured.
func (s *Sampler) Sample(videoPath string, atSeconds float64) []byte {
	if videoPath == s.failedPath {
		return nil
	}
	if s.capture == nil || s.path != videoPath {
		if err := s.open(videoPath); err != nil {
			s.logger.Warn("thumbnail capture unavailable", zap.String("video", videoPath), zap.Error(err))
			s.failedPath = videoPath
			return nil
		}
	}

	s.capture.Set(gocv.VideoCapturePosMsec, atSeconds*1000)

	frame := gocv.NewMat()
	defer frame.Close()
	if ok := s.capture.Read(&frame); !ok || frame.Empty() {
		s.logger.Warn("failed to read frame",
			zap.String("video", videoPath),
			zap.Float64("at_seconds", atSeconds))
		return nil
	}

	img, err := frame.ToImage()
	if err != nil {
		s.logger.Warn("failed to decode frame",
			zap.String("video", videoPath),
			zap.Float64("at_seconds", atSeconds),
			zap.Error(err))
		return nil
	}

	resized := imaging.Resize(img, s.width, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		s.logger.Warn("failed to encode thumbnail",
			zap.String("video", videoPath),
			zap.Float64("at_seconds", atSeconds),
			zap.Error(err))
		return nil
	}
	return buf.Bytes()
}

// Close releases the current capture handle. Safe to call repeatedly.
func (s *Sampler) Close() error {
	if s.capture == nil {
		return nil
	}
	err := s.capture.Close()
	s.capture = nil
	s.path = ""
	if err != nil {
		return fmt.Errorf("failed to close video capture: %w", err)
	}
	return nil
}

func (s *Sampler) open(videoPath string) error {
	if err := s.Close(); err != nil {
		s.logger.Warn("failed to close previous capture", zap.Error(err))
	}
	capture, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		return fmt.Errorf("failed to open video %s: %w", videoPath, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("video %s could not be opened for capture", videoPath)
	}
	s.capture = capture
	s.path = videoPath
	return nil
}
