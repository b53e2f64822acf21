package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coursemedia/internal/domain"
	"coursemedia/internal/infra"
	"coursemedia/internal/providers/mux"
)

// Broker requests one-time upload targets from the transcoding service.
type Broker struct {
	service    Service
	corsOrigin string
	logger     *infra.Logger
	now        func() time.Time
}

// NewBroker builds a broker. corsOrigin is forwarded to the service so that
// browsers may PUT directly to the returned target.
func NewBroker(service Service, corsOrigin string, logger *infra.Logger) *Broker {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Broker{service: service, corsOrigin: corsOrigin, logger: logger, now: time.Now}
}

// RequestSession creates a short-lived upload slot with a public playback
// policy. Failures are not retried here; callers restart the whole flow.
func (b *Broker) RequestSession(ctx context.Context) (domain.UploadSession, error) {
	upload, err := b.service.CreateUpload(ctx, mux.CreateUploadRequest{
		CORSOrigin:     b.corsOrigin,
		PlaybackPolicy: mux.PlaybackPolicyPublic,
	})
	if err != nil {
		return domain.UploadSession{}, unavailable(ctx, "create upload", err)
	}
	if upload == nil || strings.TrimSpace(upload.ID) == "" || strings.TrimSpace(upload.URL) == "" {
		return domain.UploadSession{}, fmt.Errorf("%w: create upload: response missing upload url or id", domain.ErrUpstreamUnavailable)
	}

	session := domain.UploadSession{
		SessionID:    upload.ID,
		UploadTarget: upload.URL,
		CreatedAt:    b.now().UTC(),
	}
	b.logger.Info().Str("session_id", session.SessionID).Msg("ingest: upload session created")
	return session, nil
}
