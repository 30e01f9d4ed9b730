package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fieldtrace/fieldtracebackend/metrics"
	"github.com/fieldtrace/fieldtracebackend/repository"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500
)

// SearchHandler serves the dashboard's free-text segment search.
type SearchHandler struct {
	Repo   repository.SearchRepositoryInterface
	Logger *zap.Logger
}

// SearchResult is one search hit shaped for the dashboard: the matched
// segment plus a display offset and thumbnail link.
type SearchResult struct {
	SegmentID       uint    `json:"segment_id"`
	TranscriptionID uint    `json:"transcription_id"`
	VideoID         *uint   `json:"video_id,omitempty"`
	VideoFilename   *string `json:"video_filename,omitempty"`
	Segment         string  `json:"segment"`
	TimeStart       float64 `json:"time_start"`
	TimeEnd         float64 `json:"time_end"`
	Offset          string  `json:"offset"`
	HasThumbnail    bool    `json:"has_thumbnail"`
	ThumbnailURL    string  `json:"thumbnail_url,omitempty"`
}

// SearchResponse is the body returned by GET /api/search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// Search handles GET /api/search?q=...&limit=... and returns segments whose
// text contains the query. An empty query returns an empty result set, not
// an error.
func (sh *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	metrics.SearchQueries.Inc()
	defer func() {
		metrics.SearchDuration.Observe(time.Since(started).Seconds())
	}()

	query := strings.TrimSpace(r.URL.Query().Get("q"))

	limit := uint64(defaultSearchLimit)
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.ParseUint(rawLimit, 10, 32)
		if err != nil || parsed == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		if parsed > maxSearchLimit {
			parsed = maxSearchLimit
		}
		limit = parsed
	}

	results := make([]SearchResult, 0)
	if query != "" {
		hits, err := sh.Repo.SearchSegments(query, limit)
		if err != nil {
			sh.Logger.Error("segment search failed", zap.String("query", query), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to search segments"})
			return
		}
		for _, hit := range hits {
			results = append(results, newSearchResult(hit))
		}
	}

	writeJSON(w, http.StatusOK, SearchResponse{Query: query, Results: results})
}

func newSearchResult(hit repository.SegmentHit) SearchResult {
	result := SearchResult{
		SegmentID:       hit.SegmentID,
		TranscriptionID: hit.TranscriptionID,
		VideoID:         hit.VideoID,
		VideoFilename:   hit.VideoFilename,
		Segment:         hit.Segment,
		TimeStart:       hit.TimeStart,
		TimeEnd:         hit.TimeEnd,
		Offset:          formatOffset(hit.TimeStart),
		HasThumbnail:    hit.HasThumbnail,
	}
	if hit.HasThumbnail {
		result.ThumbnailURL = fmt.Sprintf("/api/segments/%d/thumbnail", hit.SegmentID)
	}
	return result
}

// formatOffset renders seconds as H:MM:SS with sub-second precision
// dropped, the way the result cards display timestamps.
func formatOffset(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
