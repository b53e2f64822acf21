package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"coursemedia/internal/infra"
	"coursemedia/internal/sqlinline"
)

const (
	ProviderMux = "mux"
)

// MuxToken is the access token pair used for the transcoding API.
type MuxToken struct {
	ID     string
	Secret string
}

// Valid reports whether both halves of the token are present.
func (t MuxToken) Valid() bool {
	return t.ID != "" && t.Secret != ""
}

// Store keeps integration credentials in the integration_tokens table. The
// token column holds the secret; the token id travels in properties.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// MuxToken loads the stored transcoder token. A missing row yields a zero token.
func (s *Store) MuxToken(ctx context.Context) (MuxToken, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, ProviderMux)
	var (
		secret string
		props  []byte
	)
	if err := row.Scan(&secret, &props); err != nil {
		if infra.IsNoRows(err) {
			return MuxToken{}, nil
		}
		return MuxToken{}, err
	}
	var meta struct {
		TokenID string `json:"token_id"`
	}
	if len(props) > 0 {
		if err := json.Unmarshal(props, &meta); err != nil {
			return MuxToken{}, err
		}
	}
	return MuxToken{ID: strings.TrimSpace(meta.TokenID), Secret: strings.TrimSpace(secret)}, nil
}

func (s *Store) SetMuxToken(ctx context.Context, token MuxToken) error {
	token.ID = strings.TrimSpace(token.ID)
	token.Secret = strings.TrimSpace(token.Secret)
	if !token.Valid() {
		return errors.New("mux token id and secret are required")
	}
	return s.upsert(ctx, ProviderMux, token.Secret, map[string]any{"token_id": token.ID})
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}

// ResolveMuxToken prefers an explicitly configured token and falls back to
// the stored one.
func (s *Store) ResolveMuxToken(ctx context.Context, configured MuxToken) (MuxToken, error) {
	configured.ID = strings.TrimSpace(configured.ID)
	configured.Secret = strings.TrimSpace(configured.Secret)
	if configured.Valid() {
		return configured, nil
	}
	stored, err := s.MuxToken(ctx)
	if err != nil {
		return MuxToken{}, err
	}
	if !stored.Valid() {
		return MuxToken{}, errors.New("mux token is not configured")
	}
	return stored, nil
}
