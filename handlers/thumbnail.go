package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtracebackend/metrics"
	"github.com/fieldtrace/fieldtracebackend/repository"
)

// ThumbnailHandler serves segment thumbnails straight from their database
// blobs.
type ThumbnailHandler struct {
	Repo   repository.SearchRepositoryInterface
	Logger *zap.Logger
}

// Get handles GET /api/segments/{segmentID}/thumbnail. Segments whose frame
// capture failed have no stored thumbnail and return 404.
func (th *ThumbnailHandler) Get(w http.ResponseWriter, r *http.Request) {
	segmentID, err := strconv.ParseUint(chi.URLParam(r, "segmentID"), 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid segment ID format"})
		return
	}

	thumb, err := th.Repo.SegmentThumbnail(uint(segmentID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		th.Logger.Error("failed to load segment thumbnail", zap.Uint64("segment_id", segmentID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load thumbnail"})
		return
	}
	if len(thumb) == 0 {
		http.NotFound(w, r)
		return
	}

	metrics.ThumbnailsServed.Inc()

	// stored thumbnails never change once a segment is ingested
	cacheDuration := 24 * time.Hour
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(cacheDuration.Seconds())))
	w.Header().Set("Expires", time.Now().Add(cacheDuration).Format(http.TimeFormat))
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(thumb)))
	if _, err := w.Write(thumb); err != nil {
		th.Logger.Warn("failed to write thumbnail response", zap.Uint64("segment_id", segmentID), zap.Error(err))
	}
}
