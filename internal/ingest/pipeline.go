package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"coursemedia/internal/domain"
	"coursemedia/internal/infra"
)

// Payload is a locally held video file.
type Payload struct {
	Body        io.Reader
	ContentType string
	Size        int64
}

// Result describes a finished ingestion.
type Result struct {
	CourseID     int64
	SessionID    string
	MediaAssetID string
}

// Pipeline runs the full server-side flow: session, transfer, readiness
// wait, persistence. The course is only updated once playback is possible.
type Pipeline struct {
	courses   domain.CourseRepository
	broker    *Broker
	transfer  *Transferer
	poller    *Poller
	lifecycle *Lifecycle
	maxBytes  int64
	logger    *infra.Logger
}

type PipelineDeps struct {
	Courses   domain.CourseRepository
	Broker    *Broker
	Transfer  *Transferer
	Poller    *Poller
	Lifecycle *Lifecycle
	MaxBytes  int64
	Logger    *infra.Logger
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Pipeline{
		courses:   deps.Courses,
		broker:    deps.Broker,
		transfer:  deps.Transfer,
		poller:    deps.Poller,
		lifecycle: deps.Lifecycle,
		maxBytes:  deps.MaxBytes,
		logger:    logger,
	}
}

// Ingest uploads payload for courseID and binds the resulting playback id
// to the course. Any failure, including cancellation, leaves the course
// untouched; a started remote asset may be left for the service to expire.
func (p *Pipeline) Ingest(ctx context.Context, courseID int64, payload Payload) (Result, error) {
	if payload.Body == nil || payload.Size <= 0 || strings.TrimSpace(payload.ContentType) == "" {
		return Result{}, fmt.Errorf("%w: video file with type and size is required", domain.ErrInvalidPayload)
	}
	if p.maxBytes > 0 && payload.Size > p.maxBytes {
		return Result{}, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInvalidPayload, p.maxBytes)
	}
	if _, err := p.courses.GetByID(ctx, courseID); err != nil {
		return Result{}, err
	}

	log := p.logger.With().Int64("course_id", courseID).Logger()

	session, err := p.broker.RequestSession(ctx)
	if err != nil {
		return Result{}, err
	}
	log = log.With().Str("session_id", session.SessionID).Logger()

	if err := p.transfer.Transfer(ctx, session.UploadTarget, payload.Body, payload.ContentType, payload.Size); err != nil {
		log.Error().Err(err).Msg("ingest: transfer failed")
		return Result{SessionID: session.SessionID}, err
	}

	playbackID, err := p.poller.AwaitReady(ctx, session.SessionID)
	if err != nil {
		log.Error().Err(err).Msg("ingest: asset never became ready")
		return Result{SessionID: session.SessionID}, err
	}

	if err := p.lifecycle.Bind(ctx, courseID, playbackID); err != nil {
		return Result{SessionID: session.SessionID}, err
	}
	return Result{CourseID: courseID, SessionID: session.SessionID, MediaAssetID: playbackID}, nil
}
