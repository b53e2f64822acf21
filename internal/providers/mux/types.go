package mux

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	PlaybackPolicyPublic = "public"

	UploadStatusWaiting      = "waiting"
	UploadStatusAssetCreated = "asset_created"
	UploadStatusErrored      = "errored"
	UploadStatusCancelled    = "cancelled"
	UploadStatusTimedOut     = "timed_out"

	AssetStatusPreparing = "preparing"
	AssetStatusReady     = "ready"
	AssetStatusErrored   = "errored"
)

// CreateUploadRequest describes a new direct upload slot.
type CreateUploadRequest struct {
	CORSOrigin     string
	PlaybackPolicy string
	TimeoutSeconds int
}

// Upload is a direct upload as reported by the API.
type Upload struct {
	ID      string       `json:"id"`
	URL     string       `json:"url"`
	Status  string       `json:"status"`
	AssetID string       `json:"asset_id,omitempty"`
	Timeout int          `json:"timeout,omitempty"`
	Error   *UploadError `json:"error,omitempty"`
}

// UploadError is the failure detail attached to an errored upload.
type UploadError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Asset is a transcoded media object.
type Asset struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	PlaybackIDs []PlaybackID `json:"playback_ids,omitempty"`
	Duration    float64      `json:"duration,omitempty"`
	Errors      *AssetErrors `json:"errors,omitempty"`
}

// FirstPlaybackID returns the first playback id, or "".
func (a *Asset) FirstPlaybackID() string {
	if a == nil {
		return ""
	}
	for _, p := range a.PlaybackIDs {
		if p.ID != "" {
			return p.ID
		}
	}
	return ""
}

// HasPlaybackID reports whether id is one of the asset's playback ids.
func (a *Asset) HasPlaybackID(id string) bool {
	if a == nil || id == "" {
		return false
	}
	for _, p := range a.PlaybackIDs {
		if p.ID == id {
			return true
		}
	}
	return false
}

// AssetErrors holds processing failures for an errored asset.
type AssetErrors struct {
	Type     string   `json:"type"`
	Messages []string `json:"messages"`
}

// PlaybackID is a streamable handle on an asset.
type PlaybackID struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
}

// PlaybackIDInfo is the lookup result for a playback id.
type PlaybackIDInfo struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
	Object struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"object"`
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Type       string
	Messages   []string
}

func (e *APIError) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Type != "" {
		return fmt.Sprintf("mux: %s (%s, status %d)", msg, e.Type, e.StatusCode)
	}
	return fmt.Sprintf("mux: %s (status %d)", msg, e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type createUploadPayload struct {
	CORSOrigin       string           `json:"cors_origin,omitempty"`
	NewAssetSettings newAssetSettings `json:"new_asset_settings"`
	Timeout          int              `json:"timeout,omitempty"`
}

type newAssetSettings struct {
	PlaybackPolicy []string `json:"playback_policy"`
}

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Type     string   `json:"type"`
		Messages []string `json:"messages"`
	} `json:"error"`
}
