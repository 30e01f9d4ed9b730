// Package pipeline wires the ingest steps into a single-threaded batch:
// checksum gate, media extraction, transcription, thumbnail sampling, and
// the per-video save. Videos are processed one at a time, steps in order;
// a failing video is logged and the batch moves on.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fieldtrace/fieldtracebackend/config"
	"github.com/fieldtrace/fieldtracebackend/gps"
	"github.com/fieldtrace/fieldtracebackend/media"
	"github.com/fieldtrace/fieldtracebackend/models"
	"github.com/fieldtrace/fieldtracebackend/repository"
	"github.com/fieldtrace/fieldtracebackend/transcribe"
)

// Extractor derives per-video artifacts: the audio sibling, container
// metadata, and the telemetry log location.
type Extractor interface {
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
	Probe(ctx context.Context, videoPath string) (*media.ProbeResult, error)
	TelemetryPath(videoPath string) (string, error)
}

// Transcriber turns an audio track into timed segments and words.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*transcribe.Result, error)
}

// Thumbnailer returns an encoded preview frame at an offset, or nil when
// capture fails.
type Thumbnailer interface {
	Sample(videoPath string, atSeconds float64) []byte
	Close() error
}

// Summary reports what one batch run did.
type Summary struct {
	Scanned           int
	Ingested          int
	DuplicatesSkipped int
	Failed            int
	Segments          int
	Words             int
	Pings             int
	DryRun            bool
}

// Pipeline runs the ingest batch over a source directory.
type Pipeline struct {
	cfg                 config.Config
	videos              repository.VideoRepositoryInterface
	ingest              repository.IngestRepositoryInterface
	extractor           Extractor
	transcriber         Transcriber
	thumbs              Thumbnailer
	transcriptionConfig string
	logger              *zap.Logger
}

// New assembles a Pipeline. transcriptionConfig is the serialized runner
// configuration stored on every transcription row this batch writes.
func New(
	cfg config.Config,
	videos repository.VideoRepositoryInterface,
	ingest repository.IngestRepositoryInterface,
	extractor Extractor,
	transcriber Transcriber,
	thumbs Thumbnailer,
	transcriptionConfig string,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:                 cfg,
		videos:              videos,
		ingest:              ingest,
		extractor:           extractor,
		transcriber:         transcriber,
		thumbs:              thumbs,
		transcriptionConfig: transcriptionConfig,
		logger:              logger,
	}
}

// Run scans the source directory and processes every video in natural
// order. Scanned files are verified up front; a missing file is a
// precondition failure and nothing is extracted. After the precondition
// pass, per-video failures are logged and counted but do not stop the
// batch. The returned error is non-nil when any video failed.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{DryRun: !p.cfg.CommitResults}

	paths, err := ScanSource(p.cfg.SourceDir)
	if err != nil {
		return summary, err
	}
	if len(paths) == 0 {
		p.logger.Warn("no source videos found", zap.String("dir", p.cfg.SourceDir))
		return summary, nil
	}
	summary.Scanned = len(paths)

	if err := VerifySources(paths); err != nil {
		return summary, fmt.Errorf("source precondition failed: %w", err)
	}

	defer p.thumbs.Close()

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}
		if err := p.processVideo(ctx, path, summary); err != nil {
			summary.Failed++
			p.logger.Error("video ingest failed", zap.String("video", path), zap.Error(err))
		}
	}

	p.logger.Info("batch finished",
		zap.Int("scanned", summary.Scanned),
		zap.Int("ingested", summary.Ingested),
		zap.Int("duplicates_skipped", summary.DuplicatesSkipped),
		zap.Int("failed", summary.Failed),
		zap.Bool("dry_run", summary.DryRun))

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d of %d videos failed", summary.Failed, summary.Scanned)
	}
	return summary, nil
}

func (p *Pipeline) processVideo(ctx context.Context, videoPath string, summary *Summary) error {
	checksum, err := media.Checksum(videoPath)
	if err != nil {
		return err
	}

	existing, err := p.videos.GetByChecksum(checksum)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		names := make([]string, len(existing))
		for i, v := range existing {
			names[i] = v.Filename
		}
		if p.cfg.SkipDuplicates {
			p.logger.Info("duplicate content, skipping",
				zap.String("video", videoPath),
				zap.String("checksum", checksum),
				zap.Strings("already_stored_as", names))
			summary.DuplicatesSkipped++
			return nil
		}
		p.logger.Info("duplicate content, ingesting anyway",
			zap.String("video", videoPath),
			zap.String("checksum", checksum),
			zap.Strings("already_stored_as", names))
	}

	done := p.step("extract_audio", videoPath)
	audioPath, err := p.extractor.ExtractAudio(ctx, videoPath)
	done()
	if err != nil {
		return err
	}
	audioChecksum, err := media.Checksum(audioPath)
	if err != nil {
		return err
	}

	probe, err := p.extractor.Probe(ctx, videoPath)
	if err != nil {
		return err
	}

	done = p.step("transcribe", videoPath)
	result, err := p.transcriber.Transcribe(ctx, audioPath)
	done()
	if err != nil {
		return err
	}

	done = p.step("thumbnails", videoPath)
	segments, words := p.buildSegments(videoPath, result, probe.Duration)
	done()

	pings, gpsPath, err := p.loadTelemetry(videoPath)
	if err != nil {
		return err
	}

	video := models.Video{
		Filename: videoPath,
		Checksum: checksum,
		Metadata: probe.Raw,
		Duration: probe.Duration,
	}
	if gpsPath != "" {
		video.GPSFilename = &gpsPath
	}

	graph := &repository.VideoGraph{
		Video:               video,
		Audio:               models.Audio{Filename: audioPath, Checksum: audioChecksum},
		TranscriptionConfig: p.transcriptionConfig,
		Segments:            segments,
		Words:               words,
		Pings:               pings,
	}

	if !p.cfg.CommitResults {
		p.logger.Info("dry run, skipping commit",
			zap.String("video", videoPath),
			zap.Int("segments", len(segments)),
			zap.Int("words", len(words)),
			zap.Int("pings", len(pings)))
		return nil
	}

	done = p.step("save", videoPath)
	err = p.ingest.SaveVideoGraph(graph)
	done()
	if err != nil {
		return err
	}

	summary.Ingested++
	summary.Segments += len(segments)
	summary.Words += len(words)
	summary.Pings += len(pings)
	p.logger.Info("video ingested",
		zap.String("video", videoPath),
		zap.Uint("video_id", graph.Video.ID),
		zap.Int("segments", len(segments)),
		zap.Int("words", len(words)),
		zap.Int("pings", len(pings)))
	return nil
}

func (p *Pipeline) buildSegments(videoPath string, result *transcribe.Result, duration float64) ([]models.TextSegment, []models.WordSegment) {
	segments := make([]models.TextSegment, 0, len(result.Segments))
	var words []models.WordSegment

	for _, seg := range result.Segments {
		start := clampTime(seg.Start, duration)
		end := clampTime(seg.End, duration)
		segments = append(segments, models.TextSegment{
			Segment:     seg.Text,
			TimeStart:   start,
			TimeEnd:     end,
			Temperature: seg.Temperature,
			Thumbnail:   p.thumbs.Sample(videoPath, start),
		})

		for _, w := range seg.Words {
			norm := transcribe.NormalizeWord(w.Word)
			if norm == "" {
				continue
			}
			words = append(words, models.WordSegment{
				Word:        norm,
				Probability: w.Probability,
				TimeStart:   clampTime(w.Start, duration),
				TimeEnd:     clampTime(w.End, duration),
			})
		}
	}
	return segments, words
}

func (p *Pipeline) loadTelemetry(videoPath string) ([]models.GPSPing, string, error) {
	gpsPath, err := p.extractor.TelemetryPath(videoPath)
	if err != nil {
		return nil, "", err
	}
	if gpsPath == "" {
		p.logger.Warn("no GPS telemetry found", zap.String("video", videoPath))
		return nil, "", nil
	}

	parsed, err := gps.ParseTrackAddictFile(gpsPath, p.logger)
	if err != nil {
		return nil, "", err
	}
	if len(parsed) == 0 {
		p.logger.Warn("telemetry log has no usable rows",
			zap.String("video", videoPath),
			zap.String("log", gpsPath))
		return nil, "", nil
	}

	pings := make([]models.GPSPing, len(parsed))
	for i, ping := range parsed {
		pings[i] = models.GPSPing{
			Location:  ping.Raw,
			Timestamp: ping.Timestamp,
			Latitude:  ping.Latitude,
			Longitude: ping.Longitude,
			Altitude:  ping.Altitude,
		}
	}
	return pings, gpsPath, nil
}

// step returns a closure logging the step duration when called.
func (p *Pipeline) step(name, videoPath string) func() {
	start := time.Now()
	return func() {
		p.logger.Info("step finished",
			zap.String("step", name),
			zap.String("video", videoPath),
			zap.Duration("took", time.Since(start)))
	}
}

// clampTime pins t into [0, duration]; the model can report times a hair
// past the container duration.
func clampTime(t, duration float64) float64 {
	if t < 0 {
		return 0
	}
	if duration > 0 && t > duration {
		return duration
	}
	return t
}
