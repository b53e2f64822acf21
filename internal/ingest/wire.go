package ingest

import (
	"context"
	"fmt"
	"net/http"

	"coursemedia/internal/domain"
	"coursemedia/internal/infra"
	"coursemedia/internal/infra/credentials"
	"coursemedia/internal/providers/mux"
)

// NewServiceClient builds the transcoding client from configured credentials,
// falling back to the token stored with mediactl.
func NewServiceClient(ctx context.Context, cfg *infra.Config, store *credentials.Store, logger *infra.Logger) (*mux.Client, error) {
	token, err := store.ResolveMuxToken(ctx, credentials.MuxToken{ID: cfg.MuxTokenID, Secret: cfg.MuxTokenSecret})
	if err != nil {
		return nil, fmt.Errorf("ingest: resolve service credentials: %w", err)
	}
	return mux.NewClient(mux.Options{
		TokenID:        token.ID,
		TokenSecret:    token.Secret,
		BaseURL:        cfg.MuxBaseURL,
		Logger:         logger,
		RequestTimeout: cfg.MuxRequestTimeout(),
	})
}

// Components is the ingestion stack assembled around one service client.
type Components struct {
	Broker    *Broker
	Transfer  *Transferer
	Poller    *Poller
	Resolver  *Resolver
	Lifecycle *Lifecycle
	Pipeline  *Pipeline
}

func NewComponents(service Service, courses domain.CourseRepository, cfg *infra.Config, logger *infra.Logger) *Components {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	c := &Components{
		Broker:    NewBroker(service, cfg.MuxCORSOrigin, logger),
		Transfer:  NewTransferer(&http.Client{Timeout: cfg.TransferTimeoutDuration()}, logger),
		Poller:    NewPoller(service, cfg.PollAttempts, cfg.PollInterval(), logger),
		Resolver:  NewResolver(service, logger),
		Lifecycle: NewLifecycle(service, courses, cfg.CleanupTimeoutDuration(), logger),
	}
	c.Pipeline = NewPipeline(PipelineDeps{
		Courses:   courses,
		Broker:    c.Broker,
		Transfer:  c.Transfer,
		Poller:    c.Poller,
		Lifecycle: c.Lifecycle,
		MaxBytes:  cfg.MaxUploadBytes,
		Logger:    logger,
	})
	return c
}
