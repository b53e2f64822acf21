package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"coursemedia/internal/domain"
)

type courseResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	ImageSrc     string    `json:"imageSrc"`
	IsQuiz       bool      `json:"isQuiz"`
	MediaAssetID *string   `json:"mediaAssetId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toCourseResponse(c *domain.Course) courseResponse {
	return courseResponse{
		ID:           c.ID,
		Title:        c.Title,
		ImageSrc:     c.ImageSrc,
		IsQuiz:       c.IsQuiz,
		MediaAssetID: c.MediaAssetID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type courseRequest struct {
	Title        string  `json:"title"`
	ImageSrc     string  `json:"imageSrc"`
	IsQuiz       bool    `json:"isQuiz"`
	MediaAssetID *string `json:"mediaAssetId"`
}

type playbackResponse struct {
	PlaybackID string `json:"playbackId"`
	Status     string `json:"status"`
	AssetID    string `json:"assetId"`
}

func (a *App) ListCourses(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	courses, err := a.Courses.List(r.Context(), limit, offset)
	if err != nil {
		a.log(r).Error().Err(err).Msg("courses: list failed")
		a.error(w, r, http.StatusInternalServerError, msgInternal, "")
		return
	}
	out := make([]courseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, toCourseResponse(&courses[i]))
	}
	a.json(w, http.StatusOK, out)
}

// GetCourse returns the course, or with ?playback its live playback state.
func (a *App) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := a.courseID(w, r)
	if !ok {
		return
	}
	course, err := a.Courses.GetByID(r.Context(), id)
	if err != nil {
		a.courseError(w, r, err)
		return
	}
	if !wantsPlayback(r) {
		a.json(w, http.StatusOK, toCourseResponse(course))
		return
	}

	if !course.HasMedia() {
		a.error(w, r, http.StatusNotFound, msgNoMedia, "")
		return
	}
	ref, err := a.Resolver.ResolvePlayback(r.Context(), *course.MediaAssetID)
	switch {
	case err == nil:
		a.json(w, http.StatusOK, playbackResponse{PlaybackID: ref.PlaybackID, Status: string(ref.Status), AssetID: ref.AssetID})
	case errors.Is(err, domain.ErrAssetNotFound):
		a.error(w, r, http.StatusNotFound, msgAssetNotFound, "")
	case errors.Is(err, domain.ErrAssetNotReady):
		a.error(w, r, http.StatusTooEarly, msgAssetNotReady, "")
	default:
		a.log(r).Error().Err(err).Int64("course_id", id).Msg("courses: playback resolution failed")
		a.error(w, r, http.StatusBadGateway, msgUpstreamFailure, "")
	}
}

func wantsPlayback(r *http.Request) bool {
	q := r.URL.Query()
	if !q.Has("playback") {
		return false
	}
	v := strings.ToLower(strings.TrimSpace(q.Get("playback")))
	return v != "false" && v != "0"
}

func (a *App) CreateCourse(w http.ResponseWriter, r *http.Request) {
	in, ok := a.decodeCourse(w, r)
	if !ok {
		return
	}
	if in.MediaAssetID != nil && !a.verifyMedia(w, r, *in.MediaAssetID) {
		return
	}
	course, err := a.Courses.Create(r.Context(), in)
	if err != nil {
		a.log(r).Error().Err(err).Msg("courses: create failed")
		a.error(w, r, http.StatusInternalServerError, msgInternal, "")
		return
	}
	a.json(w, http.StatusCreated, toCourseResponse(course))
}

// UpdateCourse replaces the writable fields. A new mediaAssetId must exist
// upstream; the asset it replaces is released in the background.
func (a *App) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := a.courseID(w, r)
	if !ok {
		return
	}
	in, ok := a.decodeCourse(w, r)
	if !ok {
		return
	}
	existing, err := a.Courses.GetByID(r.Context(), id)
	if err != nil {
		a.courseError(w, r, err)
		return
	}

	replaced := ""
	if in.MediaAssetID != nil {
		if existing.HasMedia() && *existing.MediaAssetID == *in.MediaAssetID {
			in.MediaAssetID = nil
		} else {
			if !a.verifyMedia(w, r, *in.MediaAssetID) {
				return
			}
			if existing.HasMedia() {
				replaced = *existing.MediaAssetID
			}
		}
	}

	course, err := a.Courses.Update(r.Context(), id, in)
	if err != nil {
		a.courseError(w, r, err)
		return
	}
	if replaced != "" {
		a.Lifecycle.Detach(replaced)
	}
	a.json(w, http.StatusOK, toCourseResponse(course))
}

// DeleteCourse reports only the local outcome; remote cleanup runs detached.
func (a *App) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := a.courseID(w, r)
	if !ok {
		return
	}
	course, err := a.Lifecycle.DeleteCourse(r.Context(), id)
	if err != nil {
		a.courseError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toCourseResponse(course))
}

func (a *App) courseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		a.error(w, r, http.StatusBadRequest, msgInvalidID, "")
		return 0, false
	}
	return id, true
}

func (a *App) decodeCourse(w http.ResponseWriter, r *http.Request) (domain.CourseInput, bool) {
	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, msgInvalidPayload, "")
		return domain.CourseInput{}, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		a.error(w, r, http.StatusBadRequest, msgTitleRequired, "")
		return domain.CourseInput{}, false
	}
	if req.MediaAssetID != nil {
		trimmed := strings.TrimSpace(*req.MediaAssetID)
		if trimmed == "" {
			req.MediaAssetID = nil
		} else {
			req.MediaAssetID = &trimmed
		}
	}
	return domain.CourseInput{
		Title:        req.Title,
		ImageSrc:     strings.TrimSpace(req.ImageSrc),
		IsQuiz:       req.IsQuiz,
		MediaAssetID: req.MediaAssetID,
	}, true
}

// verifyMedia applies the same rule as the readiness poller: an id that
// resolves upstream is accepted while its asset is still preparing, so an
// admin may attach media the ingest pipeline would also have persisted.
// Errored or unknown assets are rejected.
func (a *App) verifyMedia(w http.ResponseWriter, r *http.Request, mediaAssetID string) bool {
	_, err := a.Resolver.ResolvePlayback(r.Context(), mediaAssetID)
	switch {
	case err == nil, errors.Is(err, domain.ErrAssetNotReady):
		return true
	case errors.Is(err, domain.ErrAssetNotFound), errors.Is(err, domain.ErrUpstreamError):
		a.error(w, r, http.StatusUnprocessableEntity, msgMediaUnresolvable, "")
	default:
		a.log(r).Error().Err(err).Str("media_asset_id", mediaAssetID).Msg("courses: media verification failed")
		a.error(w, r, http.StatusBadGateway, msgUpstreamFailure, "")
	}
	return false
}

func (a *App) courseError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, r, http.StatusNotFound, msgCourseNotFound, "")
		return
	}
	a.log(r).Error().Err(err).Msg("courses: repository failure")
	a.error(w, r, http.StatusInternalServerError, msgInternal, "")
}
