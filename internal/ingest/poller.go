package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coursemedia/internal/domain"
	"coursemedia/internal/infra"
	"coursemedia/internal/providers/mux"
)

const (
	DefaultMaxAttempts  = 30
	DefaultPollInterval = time.Second
)

// Poller watches an upload session until the resulting asset can be played.
type Poller struct {
	service     Service
	logger      *infra.Logger
	maxAttempts int
	interval    time.Duration
}

// NewPoller builds a poller. Non-positive limits fall back to the defaults.
func NewPoller(service Service, maxAttempts int, interval time.Duration, logger *infra.Logger) *Poller {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	p := &Poller{service: service, logger: logger}
	return p.WithLimits(maxAttempts, interval)
}

// WithLimits returns a copy of p with different polling limits.
func (p *Poller) WithLimits(maxAttempts int, interval time.Duration) *Poller {
	cp := *p
	cp.maxAttempts = maxAttempts
	if cp.maxAttempts <= 0 {
		cp.maxAttempts = DefaultMaxAttempts
	}
	cp.interval = interval
	if cp.interval <= 0 {
		cp.interval = DefaultPollInterval
	}
	return &cp
}

func (p *Poller) MaxAttempts() int { return p.maxAttempts }

func (p *Poller) Interval() time.Duration { return p.interval }

// Check performs a single status query for sessionID. A known playback id
// always wins over whatever status strings accompany it.
func (p *Poller) Check(ctx context.Context, sessionID string) (domain.Progress, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.Progress{}, fmt.Errorf("%w: session id is required", domain.ErrInvalidPayload)
	}

	upload, err := p.service.GetUpload(ctx, sessionID)
	if err != nil {
		if mux.IsNotFound(err) {
			return domain.Progress{}, &domain.UpstreamError{Message: "upload session not found"}
		}
		return domain.Progress{}, unavailable(ctx, "get upload", err)
	}

	progress := domain.Progress{Status: uploadStatus(upload.Status), AssetID: upload.AssetID}

	if upload.AssetID != "" {
		asset, err := p.service.GetAsset(ctx, upload.AssetID)
		switch {
		case err == nil:
			if playbackID := asset.FirstPlaybackID(); playbackID != "" {
				progress.Status = domain.AssetStatusReady
				progress.PlaybackID = playbackID
				return progress, nil
			}
			if asset.Status == mux.AssetStatusErrored {
				return progress, &domain.UpstreamError{Message: assetFailure(asset)}
			}
			progress.Status = domain.AssetStatusProcessing
		case mux.IsNotFound(err):
			// The asset record can lag behind the upload that created it.
			progress.Status = domain.AssetStatusProcessing
		default:
			return progress, unavailable(ctx, "get asset", err)
		}
	}

	switch upload.Status {
	case mux.UploadStatusErrored, mux.UploadStatusCancelled, mux.UploadStatusTimedOut:
		return progress, &domain.UpstreamError{Message: uploadFailure(upload)}
	}
	return progress, nil
}

// AwaitReady polls until a playback id exists, the service reports a
// failure, maxAttempts status queries have been made, or ctx is done. Each
// query counts as one attempt whether or not it succeeded.
func (p *Poller) AwaitReady(ctx context.Context, sessionID string) (string, error) {
	log := p.logger.With().Str("session_id", sessionID).Logger()

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		progress, err := p.Check(ctx, sessionID)
		switch {
		case err == nil && progress.PlaybackID != "":
			log.Info().Int("attempt", attempt).Str("asset_id", progress.AssetID).Msg("ingest: asset ready")
			return progress.PlaybackID, nil
		case err == nil:
			log.Debug().Int("attempt", attempt).Str("status", string(progress.Status)).Msg("ingest: asset not ready")
		case errors.Is(err, domain.ErrUpstreamUnavailable):
			lastErr = err
			log.Warn().Err(err).Int("attempt", attempt).Msg("ingest: status query failed")
		default:
			return "", err
		}

		if attempt == p.maxAttempts {
			break
		}
		if err := sleep(ctx, p.interval); err != nil {
			return "", err
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w after %d attempts (last error: %v)", domain.ErrTimeout, p.maxAttempts, lastErr)
	}
	return "", fmt.Errorf("%w after %d attempts", domain.ErrTimeout, p.maxAttempts)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func uploadStatus(status string) domain.AssetStatus {
	switch status {
	case mux.UploadStatusWaiting:
		return domain.AssetStatusPending
	case mux.UploadStatusErrored, mux.UploadStatusCancelled, mux.UploadStatusTimedOut:
		return domain.AssetStatusFailed
	default:
		return domain.AssetStatusProcessing
	}
}

func uploadFailure(upload *mux.Upload) string {
	if upload.Error != nil && upload.Error.Message != "" {
		return upload.Error.Message
	}
	return "upload " + strings.ReplaceAll(upload.Status, "_", " ")
}

func assetFailure(asset *mux.Asset) string {
	if asset.Errors != nil && len(asset.Errors.Messages) > 0 {
		return strings.Join(asset.Errors.Messages, "; ")
	}
	return "asset processing errored"
}
