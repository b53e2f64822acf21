package ingest

import (
	"context"
	"net/http"
	"sync"

	"coursemedia/internal/domain"
	"coursemedia/internal/providers/mux"
)

type fakeService struct {
	mu sync.Mutex

	createUpload  func(req mux.CreateUploadRequest) (*mux.Upload, error)
	getUpload     func(call int) (*mux.Upload, error)
	getAsset      func(id string) (*mux.Asset, error)
	getPlayback   func(id string) (*mux.PlaybackIDInfo, error)
	deleteAsset   func(id string) error
	createCalls   int
	uploadCalls   int
	assetCalls    int
	playbackCalls int
	deleted       []string
}

func (f *fakeService) CreateUpload(_ context.Context, req mux.CreateUploadRequest) (*mux.Upload, error) {
	f.mu.Lock()
	f.createCalls++
	f.mu.Unlock()
	return f.createUpload(req)
}

func (f *fakeService) GetUpload(_ context.Context, _ string) (*mux.Upload, error) {
	f.mu.Lock()
	f.uploadCalls++
	call := f.uploadCalls
	f.mu.Unlock()
	return f.getUpload(call)
}

func (f *fakeService) GetAsset(_ context.Context, id string) (*mux.Asset, error) {
	f.mu.Lock()
	f.assetCalls++
	f.mu.Unlock()
	return f.getAsset(id)
}

func (f *fakeService) GetPlaybackID(_ context.Context, id string) (*mux.PlaybackIDInfo, error) {
	f.mu.Lock()
	f.playbackCalls++
	f.mu.Unlock()
	return f.getPlayback(id)
}

func (f *fakeService) DeleteAsset(_ context.Context, id string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	if f.deleteAsset == nil {
		return nil
	}
	return f.deleteAsset(id)
}

func (f *fakeService) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func playbackFor(assetID string) func(string) (*mux.PlaybackIDInfo, error) {
	return func(id string) (*mux.PlaybackIDInfo, error) {
		info := &mux.PlaybackIDInfo{ID: id}
		info.Object.Type = "asset"
		info.Object.ID = assetID
		return info, nil
	}
}

func notFound() error {
	return &mux.APIError{StatusCode: http.StatusNotFound, Type: "not_found"}
}

type memCourses struct {
	mu        sync.Mutex
	courses   map[int64]*domain.Course
	setCalls  int
	deleteErr error
	onDelete  func(c *domain.Course)
}

func newMemCourses(courses ...domain.Course) *memCourses {
	m := &memCourses{courses: map[int64]*domain.Course{}}
	for i := range courses {
		c := courses[i]
		m.courses[c.ID] = &c
	}
	return m
}

func (m *memCourses) List(context.Context, int, int) ([]domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memCourses) GetByID(_ context.Context, id int64) (*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCourses) Create(_ context.Context, in domain.CourseInput) (*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &domain.Course{ID: int64(len(m.courses) + 1), Title: in.Title, ImageSrc: in.ImageSrc, IsQuiz: in.IsQuiz, MediaAssetID: in.MediaAssetID}
	m.courses[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *memCourses) Update(_ context.Context, id int64, in domain.CourseInput) (*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.Title, c.ImageSrc, c.IsQuiz = in.Title, in.ImageSrc, in.IsQuiz
	if in.MediaAssetID != nil {
		c.MediaAssetID = in.MediaAssetID
	}
	cp := *c
	return &cp, nil
}

func (m *memCourses) SetMediaAssetID(_ context.Context, id int64, mediaAssetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	c, ok := m.courses[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.MediaAssetID = &mediaAssetID
	return nil
}

func (m *memCourses) Delete(_ context.Context, id int64) (*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	c, ok := m.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if m.onDelete != nil {
		m.onDelete(c)
	}
	delete(m.courses, id)
	return c, nil
}

func (m *memCourses) media(id int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok || c.MediaAssetID == nil {
		return ""
	}
	return *c.MediaAssetID
}

func strPtr(s string) *string { return &s }
