package ingest

import (
	"context"
	"errors"
	"testing"

	"coursemedia/internal/domain"
	"coursemedia/internal/providers/mux"
)

func TestResolvePlaybackReady(t *testing.T) {
	svc := &fakeService{
		getPlayback: playbackFor("asset-1"),
		getAsset: func(id string) (*mux.Asset, error) {
			if id != "asset-1" {
				t.Fatalf("unexpected asset id %q", id)
			}
			return &mux.Asset{ID: id, Status: mux.AssetStatusReady, PlaybackIDs: []mux.PlaybackID{{ID: "other"}, {ID: "pb-1"}}}, nil
		},
	}

	ref, err := NewResolver(svc, nil).ResolvePlayback(context.Background(), "pb-1")
	if err != nil {
		t.Fatalf("ResolvePlayback: %v", err)
	}
	if !ref.Ready() || ref.PlaybackID != "pb-1" || ref.AssetID != "asset-1" {
		t.Fatalf("unexpected ref %+v", ref)
	}
}

func TestResolvePlaybackFallsBackToFirstID(t *testing.T) {
	svc := &fakeService{
		getPlayback: playbackFor("asset-1"),
		getAsset: func(id string) (*mux.Asset, error) {
			return &mux.Asset{ID: id, Status: mux.AssetStatusReady, PlaybackIDs: []mux.PlaybackID{{ID: "first"}}}, nil
		},
	}
	ref, err := NewResolver(svc, nil).ResolvePlayback(context.Background(), "stale")
	if err != nil || ref.PlaybackID != "first" {
		t.Fatalf("unexpected result %+v, %v", ref, err)
	}
}

func TestResolvePlaybackDistinguishesMissingFromNotReady(t *testing.T) {
	missing := &fakeService{getPlayback: func(string) (*mux.PlaybackIDInfo, error) { return nil, notFound() }}
	if _, err := NewResolver(missing, nil).ResolvePlayback(context.Background(), "pb-1"); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}

	gone := &fakeService{getPlayback: playbackFor("asset-1"), getAsset: func(string) (*mux.Asset, error) { return nil, notFound() }}
	if _, err := NewResolver(gone, nil).ResolvePlayback(context.Background(), "pb-1"); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound for deleted asset, got %v", err)
	}

	preparing := &fakeService{getPlayback: playbackFor("asset-1"), getAsset: processing}
	ref, err := NewResolver(preparing, nil).ResolvePlayback(context.Background(), "pb-1")
	if !errors.Is(err, domain.ErrAssetNotReady) {
		t.Fatalf("expected ErrAssetNotReady, got %v", err)
	}
	if errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("not-ready must not look like not-found")
	}
	if ref.Status != domain.AssetStatusProcessing || ref.AssetID != "asset-1" {
		t.Fatalf("expected processing ref, got %+v", ref)
	}
}

func TestResolvePlaybackUpstreamFailures(t *testing.T) {
	down := &fakeService{getPlayback: func(string) (*mux.PlaybackIDInfo, error) { return nil, &mux.APIError{StatusCode: 500} }}
	if _, err := NewResolver(down, nil).ResolvePlayback(context.Background(), "pb-1"); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}

	errored := &fakeService{
		getPlayback: playbackFor("asset-1"),
		getAsset: func(id string) (*mux.Asset, error) {
			return &mux.Asset{ID: id, Status: mux.AssetStatusErrored}, nil
		},
	}
	if _, err := NewResolver(errored, nil).ResolvePlayback(context.Background(), "pb-1"); !errors.Is(err, domain.ErrUpstreamError) {
		t.Fatalf("expected ErrUpstreamError, got %v", err)
	}

	if _, err := NewResolver(&fakeService{}, nil).ResolvePlayback(context.Background(), ""); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound for empty id, got %v", err)
	}
}

func TestResolvePlaybackDoesNotCache(t *testing.T) {
	svc := &fakeService{getPlayback: playbackFor("asset-1"), getAsset: processing}
	r := NewResolver(svc, nil)
	for i := 0; i < 3; i++ {
		_, _ = r.ResolvePlayback(context.Background(), "pb-1")
	}
	if svc.playbackCalls != 3 || svc.assetCalls != 3 {
		t.Fatalf("expected a live lookup per call, got %d/%d", svc.playbackCalls, svc.assetCalls)
	}
}
