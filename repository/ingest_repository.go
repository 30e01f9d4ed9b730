package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtracebackend/models"
)

// batch size for leaf-table inserts; keeps the bind-variable count under
// SQLite's default limit even for hour-long recordings
const insertBatchSize = 100

// VideoGraph carries everything extracted from one source video, ready to
// be mapped onto relational rows. Foreign keys are filled in during the
// save; callers only populate the value fields.
type VideoGraph struct {
	Video               models.Video
	Audio               models.Audio
	TranscriptionConfig string
	Segments            []models.TextSegment
	Words               []models.WordSegment
	Pings               []models.GPSPing
}

// IngestRepository persists extracted video graphs
type IngestRepository struct {
	DB *gorm.DB
}

// NewIngestRepository creates a new instance of IngestRepository
func NewIngestRepository(db *gorm.DB) *IngestRepository {
	return &IngestRepository{DB: db}
}

// SaveVideoGraph writes one video's rows inside a single transaction:
// video, audio, transcription, then the segment, word, and ping tables in
// batches. An audio row with an identical checksum is reused instead of
// inserted again, so re-ingesting footage that produced the same track does
// not duplicate it. Assigned IDs are filled back into g.
func (r *IngestRepository) SaveVideoGraph(g *VideoGraph) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&g.Video).Error; err != nil {
			return fmt.Errorf("failed to create video row for %s: %w", g.Video.Filename, err)
		}

		var existing models.Audio
		err := tx.Where("checksum = ?", g.Audio.Checksum).First(&existing).Error
		switch {
		case err == nil:
			g.Audio = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			g.Audio.VideoID = g.Video.ID
			if err := tx.Create(&g.Audio).Error; err != nil {
				return fmt.Errorf("failed to create audio row for %s: %w", g.Audio.Filename, err)
			}
		default:
			return fmt.Errorf("failed to look up audio by checksum %s: %w", g.Audio.Checksum, err)
		}

		transcription := models.Transcription{
			AudioID: g.Audio.ID,
			Config:  g.TranscriptionConfig,
		}
		if err := tx.Create(&transcription).Error; err != nil {
			return fmt.Errorf("failed to create transcription row: %w", err)
		}

		videoID := g.Video.ID
		for i := range g.Segments {
			g.Segments[i].TranscriptionID = transcription.ID
			g.Segments[i].VideoID = &videoID
		}
		if len(g.Segments) > 0 {
			if err := tx.CreateInBatches(g.Segments, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to create text segments: %w", err)
			}
		}

		for i := range g.Words {
			g.Words[i].TranscriptionID = transcription.ID
		}
		if len(g.Words) > 0 {
			if err := tx.CreateInBatches(g.Words, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to create word segments: %w", err)
			}
		}

		for i := range g.Pings {
			g.Pings[i].VideoID = g.Video.ID
		}
		if len(g.Pings) > 0 {
			if err := tx.CreateInBatches(g.Pings, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to create gps pings: %w", err)
			}
		}

		return nil
	})
}
