// Package ingest reconciles locally selected video files with the external
// transcoding service: it opens upload sessions, transfers payloads, waits for
// playable assets, resolves playback on demand and cleans up remote assets
// when courses are deleted.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"coursemedia/internal/domain"
	"coursemedia/internal/providers/mux"
)

// Service is the subset of the transcoding API used by the pipeline.
// *mux.Client satisfies it.
type Service interface {
	CreateUpload(ctx context.Context, req mux.CreateUploadRequest) (*mux.Upload, error)
	GetUpload(ctx context.Context, uploadID string) (*mux.Upload, error)
	GetAsset(ctx context.Context, assetID string) (*mux.Asset, error)
	GetPlaybackID(ctx context.Context, playbackID string) (*mux.PlaybackIDInfo, error)
	DeleteAsset(ctx context.Context, assetID string) error
}

var _ Service = (*mux.Client)(nil)

// unavailable wraps a transport or API failure as ErrUpstreamUnavailable while
// keeping the cause inspectable. Context errors pass through untouched.
func unavailable(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrUpstreamUnavailable, op, err)
}
