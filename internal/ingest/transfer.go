package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coursemedia/internal/domain"
	"coursemedia/internal/infra"
)

// Transferer streams payloads straight to an upload target. The application
// server never sees the bytes when a browser performs the same PUT.
type Transferer struct {
	httpClient *http.Client
	logger     *infra.Logger
}

// NewTransferer builds a transfer client. A nil HTTP client gets a generous
// timeout suited to large video files.
func NewTransferer(httpClient *http.Client, logger *infra.Logger) *Transferer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Transferer{httpClient: httpClient, logger: logger}
}

// Transfer performs one PUT of the full payload. contentType and
// contentLength must describe body exactly; a mismatch is a caller error and
// surfaces as a failed transfer. Nothing is retried: upload targets are
// single use.
func (t *Transferer) Transfer(ctx context.Context, uploadTarget string, body io.Reader, contentType string, contentLength int64) error {
	target, err := url.Parse(strings.TrimSpace(uploadTarget))
	if err != nil || target.Scheme == "" || target.Host == "" {
		return fmt.Errorf("%w: invalid upload target", domain.ErrInvalidPayload)
	}
	if strings.TrimSpace(contentType) == "" {
		return fmt.Errorf("%w: content type is required", domain.ErrInvalidPayload)
	}
	if contentLength < 0 {
		return fmt.Errorf("%w: content length must be known", domain.ErrInvalidPayload)
	}
	if body == nil || contentLength == 0 {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.String(), body)
	if err != nil {
		return fmt.Errorf("ingest: build transfer request: %w", err)
	}
	req.ContentLength = contentLength
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &domain.TransferFailedError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.logger.Warn().
			Int("status", resp.StatusCode).
			Int64("bytes", contentLength).
			Msg("ingest: upload target rejected payload")
		return &domain.TransferFailedError{StatusCode: resp.StatusCode}
	}

	t.logger.Info().
		Int64("bytes", contentLength).
		Dur("elapsed", time.Since(start)).
		Msg("ingest: payload transferred")
	return nil
}
