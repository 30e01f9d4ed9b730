package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldtrace/fieldtracebackend/config"
	"github.com/fieldtrace/fieldtracebackend/repository"
)

func TestSearchReturnsResults(t *testing.T) {
	videoID := uint(1)
	filename := "/footage/day1.mp4"
	search := &fakeSearchRepo{
		hits: []repository.SegmentHit{
			{
				SegmentID:       7,
				TranscriptionID: 3,
				VideoID:         &videoID,
				VideoFilename:   &filename,
				Segment:         " The bridge is out.",
				TimeStart:       3725.0,
				TimeEnd:         3727.5,
				HasThumbnail:    true,
			},
			{
				SegmentID:       9,
				TranscriptionID: 3,
				VideoID:         &videoID,
				VideoFilename:   &filename,
				Segment:         " Bridge inspection complete.",
				TimeStart:       42.9,
				TimeEnd:         44.2,
				HasThumbnail:    false,
			},
		},
	}
	router := newTestRouter(search, &fakeVideoRepo{}, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=bridge", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, "expected status 200")

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "failed to decode response")
	require.Equal(t, "bridge", resp.Query)
	require.Len(t, resp.Results, 2, "expected 2 results")

	require.Equal(t, uint(7), resp.Results[0].SegmentID)
	require.Equal(t, "1:02:05", resp.Results[0].Offset, "offset should render as H:MM:SS")
	require.Equal(t, "/api/segments/7/thumbnail", resp.Results[0].ThumbnailURL)
	require.NotNil(t, resp.Results[0].VideoFilename)
	require.Equal(t, filename, *resp.Results[0].VideoFilename)

	require.Equal(t, "0:00:42", resp.Results[1].Offset, "sub-second precision should be dropped")
	require.False(t, resp.Results[1].HasThumbnail)
	require.Empty(t, resp.Results[1].ThumbnailURL, "segments without thumbnails get no URL")

	require.Equal(t, "bridge", search.lastQuery)
	require.Equal(t, uint64(50), search.lastLimit, "expected the default limit")
}

func TestSearchEmptyQuery(t *testing.T) {
	search := &fakeSearchRepo{}
	router := newTestRouter(search, &fakeVideoRepo{}, config.Config{})

	for _, target := range []string{"/api/search", "/api/search?q=%20%20"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, "expected status 200")

		var resp SearchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "failed to decode response")
		require.Empty(t, resp.Results, "an empty query should return no results")
	}
	require.Equal(t, 0, search.searchCalls, "an empty query should not reach the repository")
}

func TestSearchLimit(t *testing.T) {
	search := &fakeSearchRepo{}
	router := newTestRouter(search, &fakeVideoRepo{}, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=bridge&limit=25", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, "expected status 200")
	require.Equal(t, uint64(25), search.lastLimit)

	req = httptest.NewRequest(http.MethodGet, "/api/search?q=bridge&limit=10000", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, "expected status 200")
	require.Equal(t, uint64(500), search.lastLimit, "oversized limits should be clamped")
}

func TestSearchBadLimit(t *testing.T) {
	search := &fakeSearchRepo{}
	router := newTestRouter(search, &fakeVideoRepo{}, config.Config{})

	for _, limit := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/api/search?q=bridge&limit="+limit, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code, "expected status 400 for limit %q", limit)
	}
	require.Equal(t, 0, search.searchCalls, "bad limits should be rejected before the query runs")
}

func TestSearchRepositoryError(t *testing.T) {
	search := &fakeSearchRepo{searchErr: errors.New("db gone")}
	router := newTestRouter(search, &fakeVideoRepo{}, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=bridge", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusInternalServerError, w.Code, "expected status 500")

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "failed to decode response")
	require.Equal(t, "Failed to search segments", resp["error"])
}
