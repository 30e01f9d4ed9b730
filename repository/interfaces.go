package repository

import (
	"time"

	"github.com/fieldtrace/fieldtracebackend/models"
)

// VideoRepositoryInterface defines the methods for video data operations
type VideoRepositoryInterface interface {
	GetByID(id uint) (*models.Video, error)
	GetByChecksum(checksum string) ([]models.Video, error)
	GetAudioByChecksum(checksum string) (*models.Audio, error)
	ListAll() ([]models.Video, error)
	Delete(id uint) error
}

// IngestRepositoryInterface defines the methods for persisting extracted
// video graphs
type IngestRepositoryInterface interface {
	SaveVideoGraph(g *VideoGraph) error
}

// SearchRepositoryInterface defines the read-side queries behind the
// dashboard
type SearchRepositoryInterface interface {
	SearchSegments(query string, limit uint64) ([]SegmentHit, error)
	SegmentThumbnail(segmentID uint) ([]byte, error)
	ListVideos(filters VideoFilters) ([]VideoSummary, error)
	PingsPage(videoID uint, page, perPage uint64) ([]models.GPSPing, int64, error)
	PingsInWindow(videoID uint, from, to float64) ([]models.GPSPing, error)
	FirstPingTime(videoID uint) (*time.Time, error)
	RouteBounds(videoID uint) (*RouteBounds, error)
}
