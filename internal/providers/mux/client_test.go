package mux

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type captureTransport struct {
	responses map[string]responseStub
	requests  []*http.Request
	lastBody  []byte
}

type responseStub struct {
	status int
	body   []byte
}

func newCaptureTransport() *captureTransport {
	return &captureTransport{responses: map[string]responseStub{}}
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.requests = append(c.requests, req)
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		c.lastBody = body
	}
	if stub, ok := c.responses[req.Method+" "+req.URL.Path]; ok {
		return &http.Response{
			StatusCode: stub.status,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(bytes.NewReader(stub.body)),
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader(`{"error":{"type":"not_found","messages":["not found"]}}`)),
	}, nil
}

func (c *captureTransport) setJSON(method, path string, status int, payload any) {
	body, _ := json.Marshal(payload)
	c.responses[method+" "+path] = responseStub{status: status, body: body}
}

func newTestClient(t *testing.T, transport http.RoundTripper) *Client {
	t.Helper()
	client, err := NewClient(Options{
		TokenID:     "token-id",
		TokenSecret: "token-secret",
		BaseURL:     "https://api.mux.test/",
		HTTPClient:  &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(Options{TokenID: "id"}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestCreateUploadPayload(t *testing.T) {
	transport := newCaptureTransport()
	transport.setJSON(http.MethodPost, "/video/v1/uploads", http.StatusCreated, map[string]any{
		"data": map[string]any{
			"id":     "upl-1",
			"url":    "https://storage.mux.test/upload/upl-1",
			"status": "waiting",
		},
	})
	client := newTestClient(t, transport)

	upload, err := client.CreateUpload(context.Background(), CreateUploadRequest{CORSOrigin: "*"})
	if err != nil {
		t.Fatalf("CreateUpload error: %v", err)
	}
	if upload.ID != "upl-1" || upload.URL == "" || upload.Status != UploadStatusWaiting {
		t.Fatalf("unexpected upload %+v", upload)
	}

	req := transport.requests[0]
	user, pass, ok := req.BasicAuth()
	if !ok || user != "token-id" || pass != "token-secret" {
		t.Fatalf("basic auth = %q/%q (%v)", user, pass, ok)
	}
	if req.URL.Host != "api.mux.test" {
		t.Fatalf("host = %q", req.URL.Host)
	}

	var payload map[string]any
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["cors_origin"] != "*" {
		t.Fatalf("cors_origin = %v", payload["cors_origin"])
	}
	settings := payload["new_asset_settings"].(map[string]any)
	policies := settings["playback_policy"].([]any)
	if len(policies) != 1 || policies[0] != PlaybackPolicyPublic {
		t.Fatalf("playback_policy = %v", policies)
	}
}

func TestGetUploadAndAsset(t *testing.T) {
	transport := newCaptureTransport()
	transport.setJSON(http.MethodGet, "/video/v1/uploads/upl-1", http.StatusOK, map[string]any{
		"data": map[string]any{"id": "upl-1", "status": "asset_created", "asset_id": "as-1"},
	})
	transport.setJSON(http.MethodGet, "/video/v1/assets/as-1", http.StatusOK, map[string]any{
		"data": map[string]any{
			"id":           "as-1",
			"status":       "ready",
			"playback_ids": []any{map[string]any{"id": "pb-1", "policy": "public"}},
		},
	})
	client := newTestClient(t, transport)

	upload, err := client.GetUpload(context.Background(), "upl-1")
	if err != nil {
		t.Fatalf("GetUpload error: %v", err)
	}
	if upload.AssetID != "as-1" {
		t.Fatalf("asset id = %q", upload.AssetID)
	}
	asset, err := client.GetAsset(context.Background(), upload.AssetID)
	if err != nil {
		t.Fatalf("GetAsset error: %v", err)
	}
	if asset.FirstPlaybackID() != "pb-1" || !asset.HasPlaybackID("pb-1") || asset.HasPlaybackID("pb-2") {
		t.Fatalf("unexpected playback ids %+v", asset.PlaybackIDs)
	}
}

func TestGetPlaybackID(t *testing.T) {
	transport := newCaptureTransport()
	transport.setJSON(http.MethodGet, "/video/v1/playback-ids/pb-1", http.StatusOK, map[string]any{
		"data": map[string]any{
			"id":     "pb-1",
			"policy": "public",
			"object": map[string]any{"type": "asset", "id": "as-1"},
		},
	})
	client := newTestClient(t, transport)

	info, err := client.GetPlaybackID(context.Background(), "pb-1")
	if err != nil {
		t.Fatalf("GetPlaybackID error: %v", err)
	}
	if info.Object.Type != "asset" || info.Object.ID != "as-1" {
		t.Fatalf("unexpected object %+v", info.Object)
	}
}

func TestAPIErrorNotFound(t *testing.T) {
	client := newTestClient(t, newCaptureTransport())

	_, err := client.GetAsset(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Type != "not_found" {
		t.Fatalf("unexpected api error %#v", err)
	}
}

func TestDeleteAssetNoContent(t *testing.T) {
	transport := newCaptureTransport()
	transport.responses["DELETE /video/v1/assets/as-1"] = responseStub{status: http.StatusNoContent}
	client := newTestClient(t, transport)

	if err := client.DeleteAsset(context.Background(), "as-1"); err != nil {
		t.Fatalf("DeleteAsset error: %v", err)
	}
	if transport.requests[0].Method != http.MethodDelete {
		t.Fatalf("method = %s", transport.requests[0].Method)
	}
}

func TestServerErrorWithoutJSONBody(t *testing.T) {
	transport := newCaptureTransport()
	transport.responses["GET /video/v1/uploads/upl-1"] = responseStub{status: http.StatusBadGateway, body: []byte("bad gateway")}
	client := newTestClient(t, transport)

	_, err := client.GetUpload(context.Background(), "upl-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("err = %v, want 502 APIError", err)
	}
	if IsNotFound(err) {
		t.Fatalf("502 must not be reported as not found")
	}
}
