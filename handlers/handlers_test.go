package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtracebackend/config"
	"github.com/fieldtrace/fieldtracebackend/models"
	"github.com/fieldtrace/fieldtracebackend/repository"
)

// fakeSearchRepo records the arguments handlers pass down and returns
// canned rows.
type fakeSearchRepo struct {
	hits        []repository.SegmentHit
	searchErr   error
	searchCalls int
	lastQuery   string
	lastLimit   uint64

	// nil value means the segment exists but captured no frame
	thumbs map[uint][]byte

	videos      []repository.VideoSummary
	lastFilters repository.VideoFilters

	pings       []models.GPSPing
	total       int64
	lastPage    uint64
	lastPerPage uint64

	windowPings []models.GPSPing
	lastFrom    float64
	lastTo      float64

	first  *time.Time
	bounds *repository.RouteBounds
}

func (f *fakeSearchRepo) SearchSegments(query string, limit uint64) ([]repository.SegmentHit, error) {
	f.searchCalls++
	f.lastQuery = query
	f.lastLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *fakeSearchRepo) SegmentThumbnail(segmentID uint) ([]byte, error) {
	thumb, ok := f.thumbs[segmentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return thumb, nil
}

func (f *fakeSearchRepo) ListVideos(filters repository.VideoFilters) ([]repository.VideoSummary, error) {
	f.lastFilters = filters
	return f.videos, nil
}

func (f *fakeSearchRepo) PingsPage(videoID uint, page, perPage uint64) ([]models.GPSPing, int64, error) {
	f.lastPage = page
	f.lastPerPage = perPage
	return f.pings, f.total, nil
}

func (f *fakeSearchRepo) PingsInWindow(videoID uint, from, to float64) ([]models.GPSPing, error) {
	f.lastFrom = from
	f.lastTo = to
	return f.windowPings, nil
}

func (f *fakeSearchRepo) FirstPingTime(videoID uint) (*time.Time, error) {
	return f.first, nil
}

func (f *fakeSearchRepo) RouteBounds(videoID uint) (*repository.RouteBounds, error) {
	return f.bounds, nil
}

type fakeVideoRepo struct {
	videos map[uint]*models.Video
}

func (f *fakeVideoRepo) GetByID(id uint) (*models.Video, error) {
	video, ok := f.videos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return video, nil
}

func (f *fakeVideoRepo) GetByChecksum(checksum string) ([]models.Video, error) {
	return nil, nil
}

func (f *fakeVideoRepo) GetAudioByChecksum(checksum string) (*models.Audio, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVideoRepo) ListAll() ([]models.Video, error) {
	return nil, nil
}

func (f *fakeVideoRepo) Delete(id uint) error {
	return nil
}

// newTestRouter mounts the handlers on the same routes the dashboard
// binary registers.
func newTestRouter(search *fakeSearchRepo, videos *fakeVideoRepo, cfg config.Config) chi.Router {
	logger := zap.NewNop()
	searchHandler := &SearchHandler{Repo: search, Logger: logger}
	thumbnailHandler := &ThumbnailHandler{Repo: search, Logger: logger}
	videoHandler := &VideoHandler{VideoRepo: videos, SearchRepo: search, Cfg: cfg, Logger: logger}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", searchHandler.Search)
		r.Get("/segments/{segmentID}/thumbnail", thumbnailHandler.Get)
		r.Route("/videos", func(r chi.Router) {
			r.Get("/", videoHandler.List)
			r.Route("/{videoID}", func(r chi.Router) {
				r.Get("/", videoHandler.Get)
				r.Get("/pings", videoHandler.Pings)
				r.Get("/route", videoHandler.Route)
				r.Get("/stream", videoHandler.Stream)
			})
		})
	})
	return r
}
