package ingest

import (
	"context"
	"strings"

	"coursemedia/internal/domain"
	"coursemedia/internal/infra"
	"coursemedia/internal/providers/mux"
)

// Resolver maps a stored media asset id to a live playback handle. It asks
// the service on every call; nothing is cached.
type Resolver struct {
	service Service
	logger  *infra.Logger
}

func NewResolver(service Service, logger *infra.Logger) *Resolver {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Resolver{service: service, logger: logger}
}

// ResolvePlayback returns a ready AssetRef for mediaAssetID. The stored value
// is the playback id persisted by the pipeline; it is translated to the owning
// asset before the asset state is read.
//
// Errors: ErrAssetNotFound when either lookup 404s, ErrAssetNotReady (with a
// populated AssetRef) while the asset is still preparing, *UpstreamError when
// processing failed, ErrUpstreamUnavailable otherwise.
func (r *Resolver) ResolvePlayback(ctx context.Context, mediaAssetID string) (domain.AssetRef, error) {
	mediaAssetID = strings.TrimSpace(mediaAssetID)
	if mediaAssetID == "" {
		return domain.AssetRef{}, domain.ErrAssetNotFound
	}

	assetID, err := assetIDFor(ctx, r.service, mediaAssetID)
	if err != nil {
		return domain.AssetRef{}, err
	}

	asset, err := r.service.GetAsset(ctx, assetID)
	if err != nil {
		if mux.IsNotFound(err) {
			return domain.AssetRef{}, domain.ErrAssetNotFound
		}
		return domain.AssetRef{}, unavailable(ctx, "get asset", err)
	}

	ref := domain.AssetRef{AssetID: asset.ID}
	switch asset.Status {
	case mux.AssetStatusReady:
	case mux.AssetStatusErrored:
		ref.Status = domain.AssetStatusFailed
		return ref, &domain.UpstreamError{Message: assetFailure(asset)}
	default:
		ref.Status = domain.AssetStatusProcessing
		return ref, domain.ErrAssetNotReady
	}

	ref.Status = domain.AssetStatusReady
	if asset.HasPlaybackID(mediaAssetID) {
		ref.PlaybackID = mediaAssetID
	} else {
		ref.PlaybackID = asset.FirstPlaybackID()
	}
	if ref.PlaybackID == "" {
		r.logger.Warn().Str("asset_id", asset.ID).Msg("ingest: ready asset has no playback ids")
		return domain.AssetRef{}, domain.ErrAssetNotFound
	}
	return ref, nil
}

// assetIDFor translates a playback id into the id of the asset it belongs to.
func assetIDFor(ctx context.Context, service Service, playbackID string) (string, error) {
	info, err := service.GetPlaybackID(ctx, playbackID)
	if err != nil {
		if mux.IsNotFound(err) {
			return "", domain.ErrAssetNotFound
		}
		return "", unavailable(ctx, "get playback id", err)
	}
	if info.Object.ID == "" || (info.Object.Type != "" && info.Object.Type != "asset") {
		return "", domain.ErrAssetNotFound
	}
	return info.Object.ID, nil
}
