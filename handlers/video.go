package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zsefvlol/timezonemapper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtracebackend/config"
	"github.com/fieldtrace/fieldtracebackend/gps"
	"github.com/fieldtrace/fieldtracebackend/metrics"
	"github.com/fieldtrace/fieldtracebackend/models"
	"github.com/fieldtrace/fieldtracebackend/repository"
)

const (
	defaultPingPageSize = 500
	maxPingPageSize     = 5000
)

// VideoHandler serves the catalog side of the dashboard API: video
// listings, per-video detail, GPS pings, route windows, and playback.
type VideoHandler struct {
	VideoRepo  repository.VideoRepositoryInterface
	SearchRepo repository.SearchRepositoryInterface
	Cfg        config.Config
	Logger     *zap.Logger
}

// VideoDetail is the body returned by GET /api/videos/{videoID}. Metadata
// embeds the raw probe report instead of re-encoding it as a string.
type VideoDetail struct {
	ID          uint            `json:"id"`
	Filename    string          `json:"filename"`
	Checksum    string          `json:"checksum"`
	Duration    float64         `json:"duration"`
	GPSFilename *string         `json:"gps_filename,omitempty"`
	CreatedAt   int64           `json:"created_at"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// RouteSummary describes a video's whole stored route: fix count, bounding
// box, and the IANA timezone at the box midpoint.
type RouteSummary struct {
	Count    int64   `json:"count"`
	MinLat   float64 `json:"min_latitude"`
	MaxLat   float64 `json:"max_latitude"`
	MinLon   float64 `json:"min_longitude"`
	MaxLon   float64 `json:"max_longitude"`
	Timezone string  `json:"timezone,omitempty"`
}

// PingPoint is one GPS fix shaped for the API.
type PingPoint struct {
	ID        uint    `json:"id"`
	Timestamp string  `json:"timestamp"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Altitude  float64 `json:"altitude"`
}

// PingsResponse is the body returned by GET /api/videos/{videoID}/pings.
type PingsResponse struct {
	VideoID uint          `json:"video_id"`
	Page    uint64        `json:"page"`
	PerPage uint64        `json:"per_page"`
	Total   int64         `json:"total"`
	Pings   []PingPoint   `json:"pings"`
	Route   *RouteSummary `json:"route,omitempty"`
}

// RoutePoint is one GPS fix in a route window. Time is seconds since the
// video's first fix, the value the map colors and tooltips run on.
type RoutePoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Altitude  float64 `json:"altitude"`
	Time      float64 `json:"time"`
	Timestamp string  `json:"timestamp"`
}

// RouteResponse is the body returned by GET /api/videos/{videoID}/route.
type RouteResponse struct {
	VideoID uint         `json:"video_id"`
	From    float64      `json:"from"`
	To      float64      `json:"to"`
	Points  []RoutePoint `json:"points"`
}

// List handles GET /api/videos with optional filename, min_duration,
// max_duration, and has_gps filters.
func (vh *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := repository.VideoFilters{
		Filename: strings.TrimSpace(r.URL.Query().Get("filename")),
	}

	if raw := r.URL.Query().Get("min_duration"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "min_duration must be a number"})
			return
		}
		filters.MinDuration = &parsed
	}
	if raw := r.URL.Query().Get("max_duration"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "max_duration must be a number"})
			return
		}
		filters.MaxDuration = &parsed
	}
	if raw := r.URL.Query().Get("has_gps"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "has_gps must be a boolean"})
			return
		}
		filters.HasGPS = &parsed
	}

	videos, err := vh.SearchRepo.ListVideos(filters)
	if err != nil {
		vh.Logger.Error("failed to list videos", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to list videos"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
}

// Get handles GET /api/videos/{videoID}.
func (vh *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	video, ok := vh.videoFromURL(w, r)
	if !ok {
		return
	}

	detail := VideoDetail{
		ID:          video.ID,
		Filename:    video.Filename,
		Checksum:    video.Checksum,
		Duration:    video.Duration,
		GPSFilename: video.GPSFilename,
		CreatedAt:   video.CreatedAt,
	}
	if json.Valid([]byte(video.Metadata)) {
		detail.Metadata = json.RawMessage(video.Metadata)
	}

	writeJSON(w, http.StatusOK, detail)
}

// Pings handles GET /api/videos/{videoID}/pings?page=&per_page= and returns
// one timestamp-ordered page of fixes plus a whole-route summary.
func (vh *VideoHandler) Pings(w http.ResponseWriter, r *http.Request) {
	video, ok := vh.videoFromURL(w, r)
	if !ok {
		return
	}

	page := uint64(1)
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "page must be a positive integer"})
			return
		}
		page = parsed
	}
	perPage := uint64(defaultPingPageSize)
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "per_page must be a positive integer"})
			return
		}
		if parsed > maxPingPageSize {
			parsed = maxPingPageSize
		}
		perPage = parsed
	}

	pings, total, err := vh.SearchRepo.PingsPage(video.ID, page, perPage)
	if err != nil {
		vh.Logger.Error("failed to page pings", zap.Uint("video_id", video.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load GPS pings"})
		return
	}

	resp := PingsResponse{
		VideoID: video.ID,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pings:   make([]PingPoint, 0, len(pings)),
	}
	for _, ping := range pings {
		resp.Pings = append(resp.Pings, PingPoint{
			ID:        ping.ID,
			Timestamp: ping.Timestamp,
			Latitude:  ping.Latitude,
			Longitude: ping.Longitude,
			Altitude:  ping.Altitude,
		})
	}

	bounds, err := vh.SearchRepo.RouteBounds(video.ID)
	if err != nil {
		vh.Logger.Error("failed to summarize route", zap.Uint("video_id", video.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to summarize route"})
		return
	}
	if bounds != nil {
		resp.Route = &RouteSummary{
			Count:    bounds.Count,
			MinLat:   bounds.MinLat,
			MaxLat:   bounds.MaxLat,
			MinLon:   bounds.MinLon,
			MaxLon:   bounds.MaxLon,
			Timezone: timezonemapper.LatLngToTimezoneString((bounds.MinLat+bounds.MaxLat)/2, (bounds.MinLon+bounds.MaxLon)/2),
		}
	}

	metrics.PingPages.Inc()
	writeJSON(w, http.StatusOK, resp)
}

// Route handles GET /api/videos/{videoID}/route?from=&to=. from and to are
// seconds relative to the video's first fix; the map view asks for the few
// seconds around a clicked segment.
func (vh *VideoHandler) Route(w http.ResponseWriter, r *http.Request) {
	video, ok := vh.videoFromURL(w, r)
	if !ok {
		return
	}

	from, err := strconv.ParseFloat(r.URL.Query().Get("from"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from must be a number of seconds"})
		return
	}
	to, err := strconv.ParseFloat(r.URL.Query().Get("to"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to must be a number of seconds"})
		return
	}
	if to < from {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to must not be before from"})
		return
	}

	resp := RouteResponse{VideoID: video.ID, From: from, To: to, Points: make([]RoutePoint, 0)}

	first, err := vh.SearchRepo.FirstPingTime(video.ID)
	if err != nil {
		vh.Logger.Error("failed to resolve first ping time", zap.Uint("video_id", video.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load route window"})
		return
	}
	if first == nil {
		// no telemetry was ingested for this video
		metrics.RouteWindows.Inc()
		writeJSON(w, http.StatusOK, resp)
		return
	}

	pings, err := vh.SearchRepo.PingsInWindow(video.ID, from, to)
	if err != nil {
		vh.Logger.Error("failed to load route window", zap.Uint("video_id", video.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load route window"})
		return
	}

	for _, ping := range pings {
		fixTime, err := time.Parse(gps.TimestampLayout, ping.Timestamp)
		if err != nil {
			vh.Logger.Warn("skipping ping with malformed stored timestamp",
				zap.Uint("ping_id", ping.ID), zap.String("timestamp", ping.Timestamp))
			continue
		}
		resp.Points = append(resp.Points, RoutePoint{
			Latitude:  ping.Latitude,
			Longitude: ping.Longitude,
			Altitude:  ping.Altitude,
			Time:      fixTime.Sub(*first).Seconds(),
			Timestamp: ping.Timestamp,
		})
	}

	metrics.RouteWindows.Inc()
	writeJSON(w, http.StatusOK, resp)
}

// Stream handles GET /api/videos/{videoID}/stream and serves the source
// file for playback. ServeFile answers Range requests, which the player's
// #t= fragment seeks depend on.
func (vh *VideoHandler) Stream(w http.ResponseWriter, r *http.Request) {
	video, ok := vh.videoFromURL(w, r)
	if !ok {
		return
	}

	root := filepath.Clean(vh.Cfg.SourceDir)
	path := filepath.Clean(video.Filename)
	if path != root && !strings.HasPrefix(path, root+string(os.PathSeparator)) {
		vh.Logger.Warn("blocked playback outside source directory",
			zap.Uint("video_id", video.ID), zap.String("filename", video.Filename))
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// the source file moved or was deleted since ingest
		http.NotFound(w, r)
		return
	} else if err != nil {
		vh.Logger.Error("failed to stat video file", zap.String("filename", path), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, path)
}

// videoFromURL resolves the {videoID} route parameter, writing the error
// response itself when the ID is malformed or unknown.
func (vh *VideoHandler) videoFromURL(w http.ResponseWriter, r *http.Request) (*models.Video, bool) {
	videoID, err := strconv.ParseUint(chi.URLParam(r, "videoID"), 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid video ID format"})
		return nil, false
	}

	video, err := vh.VideoRepo.GetByID(uint(videoID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Video not found"})
			return nil, false
		}
		vh.Logger.Error("failed to get video", zap.Uint64("video_id", videoID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load video"})
		return nil, false
	}
	return video, true
}
