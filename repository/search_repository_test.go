package repository

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtracebackend/models"
)

// seedSurveyPair ingests two videos: day1 with GPS telemetry and a
// thumbnail on its first segment, day2 with neither.
func seedSurveyPair(t *testing.T, db *gorm.DB) (*VideoGraph, *VideoGraph) {
	t.Helper()
	ingest := NewIngestRepository(db)

	day1 := surveyGraph("/footage/day1.mp4", "vid1", "aud1")
	day1.Pings = pingsUpTo(10)
	if err := ingest.SaveVideoGraph(day1); err != nil {
		t.Fatalf("Failed to save day1 graph: %v", err)
	}

	day2 := surveyGraph("/footage/day2.mp4", "vid2", "aud2")
	day2.Video.GPSFilename = nil
	day2.Video.Duration = 121.0
	day2.Segments = []models.TextSegment{
		{Segment: " Bridge inspection complete.", TimeStart: 10.0, TimeEnd: 12.5},
	}
	day2.Words = []models.WordSegment{
		{Word: "inspection", Probability: 0.9, TimeStart: 10.5, TimeEnd: 11.2},
	}
	day2.Pings = nil
	if err := ingest.SaveVideoGraph(day2); err != nil {
		t.Fatalf("Failed to save day2 graph: %v", err)
	}

	return day1, day2
}

func TestSearchSegments(t *testing.T) {
	db := setupTestDB(t)
	day1, day2 := seedSurveyPair(t, db)
	repo := NewSearchRepository(db)

	hits, err := repo.SearchSegments("bridge", 0)
	if err != nil {
		t.Fatalf("SearchSegments failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Expected 2 hits for bridge, got %d", len(hits))
	}

	if hits[0].VideoID == nil || *hits[0].VideoID != day1.Video.ID {
		t.Errorf("First hit should come from day1, got %v", hits[0].VideoID)
	}
	if hits[0].VideoFilename == nil || *hits[0].VideoFilename != "/footage/day1.mp4" {
		t.Errorf("Expected joined filename /footage/day1.mp4, got %v", hits[0].VideoFilename)
	}
	if !hits[0].HasThumbnail {
		t.Error("day1's matched segment has a thumbnail blob")
	}
	if hits[1].VideoID == nil || *hits[1].VideoID != day2.Video.ID {
		t.Errorf("Second hit should come from day2, got %v", hits[1].VideoID)
	}
	if hits[1].HasThumbnail {
		t.Error("day2's segment has no thumbnail blob")
	}

	limited, err := repo.SearchSegments("bridge", 1)
	if err != nil {
		t.Fatalf("SearchSegments failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected the limit to cap hits at 1, got %d", len(limited))
	}

	none, err := repo.SearchSegments("helicopter", 0)
	if err != nil {
		t.Fatalf("SearchSegments failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no hits, got %d", len(none))
	}
}

func TestSegmentThumbnail(t *testing.T) {
	db := setupTestDB(t)
	day1, _ := seedSurveyPair(t, db)
	repo := NewSearchRepository(db)

	withThumb := day1.Segments[0].ID
	withoutThumb := day1.Segments[1].ID

	thumb, err := repo.SegmentThumbnail(withThumb)
	if err != nil {
		t.Fatalf("SegmentThumbnail failed: %v", err)
	}
	if len(thumb) == 0 {
		t.Error("Expected thumbnail bytes, got none")
	}

	empty, err := repo.SegmentThumbnail(withoutThumb)
	if err != nil {
		t.Fatalf("SegmentThumbnail failed: %v", err)
	}
	if empty != nil {
		t.Error("Expected nil thumbnail for a segment whose capture failed")
	}

	_, err = repo.SegmentThumbnail(99999)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestListVideos(t *testing.T) {
	db := setupTestDB(t)
	day1, day2 := seedSurveyPair(t, db)
	repo := NewSearchRepository(db)

	all, err := repo.ListVideos(VideoFilters{})
	if err != nil {
		t.Fatalf("ListVideos failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 videos, got %d", len(all))
	}
	if all[0].ID != day1.Video.ID || all[1].ID != day2.Video.ID {
		t.Error("Expected videos in id order")
	}
	if all[0].SegmentCount != 2 {
		t.Errorf("Expected day1 segment_count 2, got %d", all[0].SegmentCount)
	}
	if all[0].PingCount != 10 {
		t.Errorf("Expected day1 ping_count 10, got %d", all[0].PingCount)
	}
	if all[1].PingCount != 0 {
		t.Errorf("Expected day2 ping_count 0, got %d", all[1].PingCount)
	}

	named, err := repo.ListVideos(VideoFilters{Filename: "day1"})
	if err != nil {
		t.Fatalf("ListVideos failed: %v", err)
	}
	if len(named) != 1 || named[0].ID != day1.Video.ID {
		t.Errorf("Filename filter should match only day1, got %d rows", len(named))
	}

	minDur := 100.0
	long, err := repo.ListVideos(VideoFilters{MinDuration: &minDur})
	if err != nil {
		t.Fatalf("ListVideos failed: %v", err)
	}
	if len(long) != 1 || long[0].ID != day2.Video.ID {
		t.Errorf("min_duration filter should match only day2, got %d rows", len(long))
	}

	maxDur := 100.0
	short, err := repo.ListVideos(VideoFilters{MaxDuration: &maxDur})
	if err != nil {
		t.Fatalf("ListVideos failed: %v", err)
	}
	if len(short) != 1 || short[0].ID != day1.Video.ID {
		t.Errorf("max_duration filter should match only day1, got %d rows", len(short))
	}

	hasGPS := true
	tracked, err := repo.ListVideos(VideoFilters{HasGPS: &hasGPS})
	if err != nil {
		t.Fatalf("ListVideos failed: %v", err)
	}
	if len(tracked) != 1 || tracked[0].ID != day1.Video.ID {
		t.Errorf("has_gps=true should match only day1, got %d rows", len(tracked))
	}

	noGPS := false
	untracked, err := repo.ListVideos(VideoFilters{HasGPS: &noGPS})
	if err != nil {
		t.Fatalf("ListVideos failed: %v", err)
	}
	if len(untracked) != 1 || untracked[0].ID != day2.Video.ID {
		t.Errorf("has_gps=false should match only day2, got %d rows", len(untracked))
	}
}

func TestPingsPage(t *testing.T) {
	db := setupTestDB(t)
	day1, day2 := seedSurveyPair(t, db)
	repo := NewSearchRepository(db)

	page1, total, err := repo.PingsPage(day1.Video.ID, 1, 4)
	if err != nil {
		t.Fatalf("PingsPage failed: %v", err)
	}
	if total != 10 {
		t.Errorf("Expected total 10, got %d", total)
	}
	if len(page1) != 4 {
		t.Fatalf("Expected 4 pings on page 1, got %d", len(page1))
	}
	if page1[0].Timestamp != pingAt(0).Timestamp {
		t.Errorf("Page 1 should start at the first fix, got %q", page1[0].Timestamp)
	}

	page3, total, err := repo.PingsPage(day1.Video.ID, 3, 4)
	if err != nil {
		t.Fatalf("PingsPage failed: %v", err)
	}
	if total != 10 {
		t.Errorf("Expected total 10, got %d", total)
	}
	if len(page3) != 2 {
		t.Errorf("Expected 2 pings on the last page, got %d", len(page3))
	}

	beyond, total, err := repo.PingsPage(day1.Video.ID, 99, 4)
	if err != nil {
		t.Fatalf("PingsPage failed: %v", err)
	}
	if total != 10 || len(beyond) != 0 {
		t.Errorf("Expected an empty page past the end, got %d rows", len(beyond))
	}

	none, total, err := repo.PingsPage(day2.Video.ID, 1, 4)
	if err != nil {
		t.Fatalf("PingsPage failed: %v", err)
	}
	if total != 0 || len(none) != 0 {
		t.Errorf("Expected no pings for day2, got %d rows, total %d", len(none), total)
	}
}

func TestPingsInWindow(t *testing.T) {
	db := setupTestDB(t)
	day1, day2 := seedSurveyPair(t, db)
	repo := NewSearchRepository(db)

	window, err := repo.PingsInWindow(day1.Video.ID, 0, 2)
	if err != nil {
		t.Fatalf("PingsInWindow failed: %v", err)
	}
	if len(window) != 3 {
		t.Fatalf("Expected 3 fixes in [0,2] seconds, got %d", len(window))
	}
	if window[0].Timestamp != pingAt(0).Timestamp || window[2].Timestamp != pingAt(2).Timestamp {
		t.Error("Window rows should span the first three fixes in order")
	}

	tail, err := repo.PingsInWindow(day1.Video.ID, 8, 20)
	if err != nil {
		t.Fatalf("PingsInWindow failed: %v", err)
	}
	if len(tail) != 2 {
		t.Errorf("Expected 2 fixes at the tail of the route, got %d", len(tail))
	}

	empty, err := repo.PingsInWindow(day2.Video.ID, 0, 10)
	if err != nil {
		t.Fatalf("PingsInWindow failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected no fixes for a video without telemetry, got %d", len(empty))
	}
}

func TestFirstPingTime(t *testing.T) {
	db := setupTestDB(t)
	day1, day2 := seedSurveyPair(t, db)
	repo := NewSearchRepository(db)

	first, err := repo.FirstPingTime(day1.Video.ID)
	if err != nil {
		t.Fatalf("FirstPingTime failed: %v", err)
	}
	if first == nil {
		t.Fatal("Expected a first fix time, got nil")
	}
	if !first.Equal(pingBase) {
		t.Errorf("Expected first fix at %v, got %v", pingBase, first)
	}

	none, err := repo.FirstPingTime(day2.Video.ID)
	if err != nil {
		t.Fatalf("FirstPingTime failed: %v", err)
	}
	if none != nil {
		t.Errorf("Expected nil for a video without telemetry, got %v", none)
	}
}

func TestRouteBounds(t *testing.T) {
	db := setupTestDB(t)
	day1, day2 := seedSurveyPair(t, db)
	repo := NewSearchRepository(db)

	bounds, err := repo.RouteBounds(day1.Video.ID)
	if err != nil {
		t.Fatalf("RouteBounds failed: %v", err)
	}
	if bounds == nil {
		t.Fatal("Expected route bounds, got nil")
	}
	if bounds.Count != 10 {
		t.Errorf("Expected 10 fixes, got %d", bounds.Count)
	}
	if bounds.MinLat != pingAt(0).Latitude || bounds.MaxLat != pingAt(9).Latitude {
		t.Errorf("Latitude bounds wrong: [%v, %v]", bounds.MinLat, bounds.MaxLat)
	}
	if bounds.MinLon != pingAt(0).Longitude || bounds.MaxLon != pingAt(9).Longitude {
		t.Errorf("Longitude bounds wrong: [%v, %v]", bounds.MinLon, bounds.MaxLon)
	}

	empty, err := repo.RouteBounds(day2.Video.ID)
	if err != nil {
		t.Fatalf("RouteBounds failed: %v", err)
	}
	if empty != nil {
		t.Errorf("Expected nil bounds for a video without telemetry, got %+v", empty)
	}
}
