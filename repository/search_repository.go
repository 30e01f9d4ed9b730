package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtracebackend/gps"
	"github.com/fieldtrace/fieldtracebackend/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// SegmentHit is one search result row: a matched utterance joined with its
// owning video.
type SegmentHit struct {
	SegmentID       uint    `json:"segment_id"`
	TranscriptionID uint    `json:"transcription_id"`
	VideoID         *uint   `json:"video_id,omitempty"`
	VideoFilename   *string `json:"video_filename,omitempty"`
	Segment         string  `json:"segment"`
	TimeStart       float64 `json:"time_start"`
	TimeEnd         float64 `json:"time_end"`
	Temperature     float64 `json:"temperature"`
	HasThumbnail    bool    `json:"has_thumbnail"`
}

// VideoFilters narrows the dashboard's video listing. Zero-valued fields
// are ignored.
type VideoFilters struct {
	Filename    string
	MinDuration *float64
	MaxDuration *float64
	HasGPS      *bool
}

// VideoSummary is one row of the dashboard video listing.
type VideoSummary struct {
	ID           uint    `json:"id"`
	Filename     string  `json:"filename"`
	Checksum     string  `json:"checksum"`
	Duration     float64 `json:"duration"`
	GPSFilename  *string `json:"gps_filename,omitempty"`
	CreatedAt    int64   `json:"created_at"`
	SegmentCount int     `json:"segment_count"`
	PingCount    int     `json:"ping_count"`
}

// SearchRepository answers the dashboard's read-side queries. Statements
// are composed with squirrel and executed through the shared GORM
// connection.
type SearchRepository struct {
	DB *gorm.DB
}

// NewSearchRepository creates a new instance of SearchRepository
func NewSearchRepository(db *gorm.DB) *SearchRepository {
	return &SearchRepository{DB: db}
}

// SearchSegments returns segments whose text contains query, ordered by
// video then start time.
func (r *SearchRepository) SearchSegments(query string, limit uint64) ([]SegmentHit, error) {
	qb := psql.Select(
		"ts.id AS segment_id",
		"ts.transcription_id",
		"ts.video_id",
		"v.filename AS video_filename",
		"ts.segment",
		"ts.time_start",
		"ts.time_end",
		"ts.temperature",
		"ts.thumbnail IS NOT NULL AS has_thumbnail",
	).
		From("text_segments ts").
		LeftJoin("videos v ON v.id = ts.video_id").
		Where(sq.Like{"ts.segment": "%" + query + "%"}).
		OrderBy("ts.video_id", "ts.time_start")
	if limit > 0 {
		qb = qb.Limit(limit)
	}

	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for SearchSegments: %w", err)
	}

	var hits []SegmentHit
	if err := r.DB.Raw(sqlStr, args...).Scan(&hits).Error; err != nil {
		return nil, fmt.Errorf("failed to search segments for %q: %w", query, err)
	}
	return hits, nil
}

// SegmentThumbnail returns the stored thumbnail bytes for a segment. A nil
// slice with a nil error means the segment exists but no frame was
// captured; a missing segment yields gorm.ErrRecordNotFound.
func (r *SearchRepository) SegmentThumbnail(segmentID uint) ([]byte, error) {
	var segment models.TextSegment
	err := r.DB.Select("id", "thumbnail").First(&segment, segmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get thumbnail for segment %d: %w", segmentID, err)
	}
	return segment.Thumbnail, nil
}

// ListVideos returns the video listing with filter predicates applied.
func (r *SearchRepository) ListVideos(filters VideoFilters) ([]VideoSummary, error) {
	qb := psql.Select(
		"v.id",
		"v.filename",
		"v.checksum",
		"v.duration",
		"v.gps_filename",
		"v.created_at",
		"(SELECT COUNT(*) FROM text_segments ts WHERE ts.video_id = v.id) AS segment_count",
		"(SELECT COUNT(*) FROM gps_pings gp WHERE gp.video_id = v.id) AS ping_count",
	).
		From("videos v").
		OrderBy("v.id")

	if filters.Filename != "" {
		qb = qb.Where(sq.Like{"v.filename": "%" + filters.Filename + "%"})
	}
	if filters.MinDuration != nil {
		qb = qb.Where(sq.GtOrEq{"v.duration": *filters.MinDuration})
	}
	if filters.MaxDuration != nil {
		qb = qb.Where(sq.LtOrEq{"v.duration": *filters.MaxDuration})
	}
	if filters.HasGPS != nil {
		if *filters.HasGPS {
			qb = qb.Where(sq.NotEq{"v.gps_filename": nil})
		} else {
			qb = qb.Where(sq.Eq{"v.gps_filename": nil})
		}
	}

	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListVideos: %w", err)
	}

	var summaries []VideoSummary
	if err := r.DB.Raw(sqlStr, args...).Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return summaries, nil
}

// PingsPage returns one page of a video's GPS pings in timestamp order plus
// the total count. Pages are 1-based.
func (r *SearchRepository) PingsPage(videoID uint, page, perPage uint64) ([]models.GPSPing, int64, error) {
	var total int64
	if err := r.DB.Model(&models.GPSPing{}).Where("video_id = ?", videoID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count pings for video %d: %w", videoID, err)
	}

	if page < 1 {
		page = 1
	}
	qb := psql.Select("id", "video_id", "location", "timestamp", "latitude", "longitude", "altitude").
		From("gps_pings").
		Where(sq.Eq{"video_id": videoID}).
		OrderBy("timestamp", "id").
		Limit(perPage).
		Offset((page - 1) * perPage)

	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build SQL query for PingsPage: %w", err)
	}

	var pings []models.GPSPing
	if err := r.DB.Raw(sqlStr, args...).Scan(&pings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to page pings for video %d: %w", videoID, err)
	}
	return pings, total, nil
}

// RouteBounds is the fix count and bounding box of a video's stored route.
type RouteBounds struct {
	Count  int64   `json:"count"`
	MinLat float64 `json:"min_latitude"`
	MaxLat float64 `json:"max_latitude"`
	MinLon float64 `json:"min_longitude"`
	MaxLon float64 `json:"max_longitude"`
}

// RouteBounds aggregates a video's pings into a bounding box, or nil when
// the video has none.
func (r *SearchRepository) RouteBounds(videoID uint) (*RouteBounds, error) {
	qb := psql.Select(
		"COUNT(*) AS count",
		"MIN(latitude) AS min_lat",
		"MAX(latitude) AS max_lat",
		"MIN(longitude) AS min_lon",
		"MAX(longitude) AS max_lon",
	).From("gps_pings").Where(sq.Eq{"video_id": videoID})

	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for RouteBounds: %w", err)
	}

	// aggregate mins come back NULL on an empty route
	var row struct {
		Count  int64
		MinLat sql.NullFloat64
		MaxLat sql.NullFloat64
		MinLon sql.NullFloat64
		MaxLon sql.NullFloat64
	}
	if err := r.DB.Raw(sqlStr, args...).Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to query route bounds for video %d: %w", videoID, err)
	}
	if row.Count == 0 {
		return nil, nil
	}
	return &RouteBounds{
		Count:  row.Count,
		MinLat: row.MinLat.Float64,
		MaxLat: row.MaxLat.Float64,
		MinLon: row.MinLon.Float64,
		MaxLon: row.MaxLon.Float64,
	}, nil
}

// PingsInWindow returns a video's pings whose timestamps fall within
// [from, to] seconds after the video's first fix. The fixed timestamp
// format compares lexicographically, so the window is a plain range scan
// over the strings.
func (r *SearchRepository) PingsInWindow(videoID uint, from, to float64) ([]models.GPSPing, error) {
	first, err := r.FirstPingTime(videoID)
	if err != nil {
		return nil, err
	}
	if first == nil {
		return []models.GPSPing{}, nil
	}

	start := first.Add(time.Duration(from * float64(time.Second))).Format(gps.TimestampLayout)
	end := first.Add(time.Duration(to * float64(time.Second))).Format(gps.TimestampLayout)

	qb := psql.Select("id", "video_id", "location", "timestamp", "latitude", "longitude", "altitude").
		From("gps_pings").
		Where(sq.Eq{"video_id": videoID}).
		Where(sq.GtOrEq{"timestamp": start}).
		Where(sq.LtOrEq{"timestamp": end}).
		OrderBy("timestamp", "id")

	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for PingsInWindow: %w", err)
	}

	var pings []models.GPSPing
	if err := r.DB.Raw(sqlStr, args...).Scan(&pings).Error; err != nil {
		return nil, fmt.Errorf("failed to query ping window for video %d: %w", videoID, err)
	}
	return pings, nil
}

// FirstPingTime parses the earliest stored timestamp for a video, or nil
// when it has no pings.
func (r *SearchRepository) FirstPingTime(videoID uint) (*time.Time, error) {
	qb := psql.Select("MIN(timestamp)").From("gps_pings").Where(sq.Eq{"video_id": videoID})
	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for FirstPingTime: %w", err)
	}

	var minTS sql.NullString
	if err := r.DB.Raw(sqlStr, args...).Scan(&minTS).Error; err != nil {
		return nil, fmt.Errorf("failed to query first ping time for video %d: %w", videoID, err)
	}
	if !minTS.Valid || minTS.String == "" {
		return nil, nil
	}

	t, err := time.Parse(gps.TimestampLayout, minTS.String)
	if err != nil {
		return nil, fmt.Errorf("stored ping timestamp %q does not match layout: %w", minTS.String, err)
	}
	return &t, nil
}
