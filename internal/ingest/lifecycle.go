package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"coursemedia/internal/domain"
	"coursemedia/internal/infra"
	"coursemedia/internal/providers/mux"
)

const DefaultCleanupTimeout = 30 * time.Second

// Lifecycle binds remote assets to courses and removes them again when the
// course goes away. Remote cleanup never blocks or fails a local operation.
type Lifecycle struct {
	service Service
	courses domain.CourseRepository
	logger  *infra.Logger
	timeout time.Duration

	wg sync.WaitGroup
}

func NewLifecycle(service Service, courses domain.CourseRepository, cleanupTimeout time.Duration, logger *infra.Logger) *Lifecycle {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	if cleanupTimeout <= 0 {
		cleanupTimeout = DefaultCleanupTimeout
	}
	return &Lifecycle{service: service, courses: courses, logger: logger, timeout: cleanupTimeout}
}

// Bind records mediaAssetID on the course. A different asset that was bound
// before is released in the background.
func (l *Lifecycle) Bind(ctx context.Context, courseID int64, mediaAssetID string) error {
	if strings.TrimSpace(mediaAssetID) == "" {
		return fmt.Errorf("%w: media asset id is required", domain.ErrInvalidPayload)
	}
	course, err := l.courses.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if err := l.courses.SetMediaAssetID(ctx, courseID, mediaAssetID); err != nil {
		return err
	}
	l.logger.Info().Int64("course_id", courseID).Str("media_asset_id", mediaAssetID).Msg("ingest: media bound to course")

	if course.HasMedia() && *course.MediaAssetID != mediaAssetID {
		l.Detach(*course.MediaAssetID)
	}
	return nil
}

// DeleteCourse removes the course locally and then schedules remote cleanup
// of its asset. The returned error reflects only the local outcome.
func (l *Lifecycle) DeleteCourse(ctx context.Context, courseID int64) (*domain.Course, error) {
	existing, err := l.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	deleted, err := l.courses.Delete(ctx, courseID)
	if err != nil {
		// The remote asset is released even when the local delete failed.
		if existing.HasMedia() {
			l.Detach(*existing.MediaAssetID)
		}
		return nil, err
	}
	// The deleted row is authoritative; a Bind may have landed after GetByID.
	if deleted.HasMedia() {
		l.Detach(*deleted.MediaAssetID)
	}
	return deleted, nil
}

// OnEntityDeleted deletes the remote asset behind mediaAssetID. Failures are
// logged and swallowed; an already missing asset counts as success.
func (l *Lifecycle) OnEntityDeleted(ctx context.Context, mediaAssetID string) {
	mediaAssetID = strings.TrimSpace(mediaAssetID)
	if mediaAssetID == "" {
		return
	}
	log := l.logger.With().Str("media_asset_id", mediaAssetID).Logger()

	assetID, err := assetIDFor(ctx, l.service, mediaAssetID)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			log.Debug().Msg("ingest: remote asset already gone")
			return
		}
		log.Warn().Err(fmt.Errorf("%w: %w", domain.ErrCleanupFailed, err)).Msg("ingest: asset cleanup failed")
		return
	}

	if err := l.service.DeleteAsset(ctx, assetID); err != nil {
		if mux.IsNotFound(err) {
			log.Debug().Str("asset_id", assetID).Msg("ingest: remote asset already gone")
			return
		}
		log.Warn().Err(fmt.Errorf("%w: %w", domain.ErrCleanupFailed, err)).Str("asset_id", assetID).Msg("ingest: asset cleanup failed")
		return
	}
	log.Info().Str("asset_id", assetID).Msg("ingest: remote asset deleted")
}

// Detach runs OnEntityDeleted in the background with its own deadline.
func (l *Lifecycle) Detach(mediaAssetID string) {
	if strings.TrimSpace(mediaAssetID) == "" {
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		l.OnEntityDeleted(ctx, mediaAssetID)
	}()
}

// Wait blocks until every detached cleanup has finished.
func (l *Lifecycle) Wait() {
	l.wg.Wait()
}
