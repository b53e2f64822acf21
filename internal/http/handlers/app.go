package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"coursemedia/internal/domain"
	"coursemedia/internal/infra"
	"coursemedia/internal/middleware"
)

// SessionBroker opens upload sessions on the transcoding service.
type SessionBroker interface {
	RequestSession(ctx context.Context) (domain.UploadSession, error)
}

// StatusChecker performs one readiness check for an upload session.
type StatusChecker interface {
	Check(ctx context.Context, sessionID string) (domain.Progress, error)
}

// PlaybackResolver answers whether a stored media asset is playable right now.
type PlaybackResolver interface {
	ResolvePlayback(ctx context.Context, mediaAssetID string) (domain.AssetRef, error)
}

// CourseLifecycle owns course deletion and remote asset release.
type CourseLifecycle interface {
	DeleteCourse(ctx context.Context, courseID int64) (*domain.Course, error)
	Detach(mediaAssetID string)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Config    *infra.Config
	Logger    zerolog.Logger
	DB        Pinger
	Courses   domain.CourseRepository
	Broker    SessionBroker
	Status    StatusChecker
	Resolver  PlaybackResolver
	Lifecycle CourseLifecycle
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// error writes a localized error body. detail, when set, is appended verbatim.
func (a *App) error(w http.ResponseWriter, r *http.Request, status int, code messageKey, detail string) {
	msg := localizeFor(r, code)
	if detail != "" {
		msg += ": " + detail
	}
	a.json(w, status, errorResponse{Error: msg, Code: string(code)})
}

func localizeFor(r *http.Request, key messageKey) string {
	return localize(middleware.LocaleFromContext(r.Context()), key)
}

func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}
