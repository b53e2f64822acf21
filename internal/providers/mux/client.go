// Package mux is a small client for the Mux Video API: direct uploads,
// assets and playback ids. Only the calls the ingestion pipeline needs are
// implemented.
package mux

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coursemedia/internal/infra"
)

// ErrMissingCredentials indicates that the client was configured without a token pair.
var ErrMissingCredentials = errors.New("mux: token id and secret are required")

// Options configures the Mux client.
type Options struct {
	TokenID        string
	TokenSecret    string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs authenticated calls against the Mux Video API. A single
// instance is safe for concurrent use.
type Client struct {
	tokenID     string
	tokenSecret string
	baseURL     string
	httpClient  *http.Client
	logger      *infra.Logger
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	tokenID := strings.TrimSpace(opts.TokenID)
	tokenSecret := strings.TrimSpace(opts.TokenSecret)
	if tokenID == "" || tokenSecret == "" {
		return nil, ErrMissingCredentials
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.mux.com"
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Client{
		tokenID:     tokenID,
		tokenSecret: tokenSecret,
		baseURL:     baseURL,
		httpClient:  httpClient,
		logger:      logger,
	}, nil
}

// CreateUpload creates a direct upload slot. The returned URL accepts one PUT.
func (c *Client) CreateUpload(ctx context.Context, req CreateUploadRequest) (*Upload, error) {
	policy := req.PlaybackPolicy
	if policy == "" {
		policy = PlaybackPolicyPublic
	}
	payload := createUploadPayload{
		CORSOrigin:       req.CORSOrigin,
		NewAssetSettings: newAssetSettings{PlaybackPolicy: []string{policy}},
		Timeout:          req.TimeoutSeconds,
	}
	var upload Upload
	if err := c.do(ctx, http.MethodPost, "/video/v1/uploads", payload, &upload); err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("upload_id", upload.ID).
		Str("status", upload.Status).
		Msg("mux: created direct upload")
	return &upload, nil
}

// GetUpload returns the current state of a direct upload.
func (c *Client) GetUpload(ctx context.Context, uploadID string) (*Upload, error) {
	if strings.TrimSpace(uploadID) == "" {
		return nil, errors.New("mux: upload id is required")
	}
	var upload Upload
	if err := c.do(ctx, http.MethodGet, "/video/v1/uploads/"+url.PathEscape(uploadID), nil, &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

// GetAsset returns the current state of an asset.
func (c *Client) GetAsset(ctx context.Context, assetID string) (*Asset, error) {
	if strings.TrimSpace(assetID) == "" {
		return nil, errors.New("mux: asset id is required")
	}
	var asset Asset
	if err := c.do(ctx, http.MethodGet, "/video/v1/assets/"+url.PathEscape(assetID), nil, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetPlaybackID resolves a playback id to the object it streams.
func (c *Client) GetPlaybackID(ctx context.Context, playbackID string) (*PlaybackIDInfo, error) {
	if strings.TrimSpace(playbackID) == "" {
		return nil, errors.New("mux: playback id is required")
	}
	var info PlaybackIDInfo
	if err := c.do(ctx, http.MethodGet, "/video/v1/playback-ids/"+url.PathEscape(playbackID), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// DeleteAsset removes an asset and its playback ids.
func (c *Client) DeleteAsset(ctx context.Context, assetID string) error {
	if strings.TrimSpace(assetID) == "" {
		return errors.New("mux: asset id is required")
	}
	if err := c.do(ctx, http.MethodDelete, "/video/v1/assets/"+url.PathEscape(assetID), nil, nil); err != nil {
		return err
	}
	c.logger.Debug().Str("asset_id", assetID).Msg("mux: deleted asset")
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("mux: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("mux: build request: %w", err)
	}
	req.SetBasicAuth(c.tokenID, c.tokenSecret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mux: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("mux: read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var detail errorEnvelope
		if err := json.Unmarshal(raw, &detail); err == nil {
			apiErr.Type = detail.Error.Type
			apiErr.Messages = detail.Error.Messages
		}
		if len(apiErr.Messages) == 0 && len(raw) > 0 {
			apiErr.Messages = []string{strings.TrimSpace(string(raw))}
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	var envelope dataEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("mux: decode response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return errors.New("mux: response missing data")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("mux: decode response data: %w", err)
	}
	return nil
}
