package handlers

import (
	"errors"
	"net/http"
	"strings"

	"coursemedia/internal/domain"
)

// videoField is the multipart field carrying the selected file.
const videoField = "videoUrl"

type sessionResponse struct {
	UploadTarget string `json:"uploadTarget"`
	SessionID    string `json:"sessionId"`
}

type statusResponse struct {
	Status     string `json:"status"`
	PlaybackID string `json:"playbackId,omitempty"`
	AssetID    string `json:"assetId,omitempty"`
	Message    string `json:"message,omitempty"`
}

// IngestSession opens an upload session once the request proves a file was
// selected. The file bytes are not read; the client PUTs them to the target.
func (a *App) IngestSession(w http.ResponseWriter, r *http.Request) {
	if !hasFilePart(r) {
		a.error(w, r, http.StatusBadRequest, msgMissingFile, "")
		return
	}

	session, err := a.Broker.RequestSession(r.Context())
	if err != nil {
		a.log(r).Error().Err(err).Msg("ingest: request session failed")
		a.error(w, r, http.StatusInternalServerError, msgUpstreamUnavailable, "")
		return
	}
	a.json(w, http.StatusOK, sessionResponse{UploadTarget: session.UploadTarget, SessionID: session.SessionID})
}

// hasFilePart stops at the file part header and leaves its body unread.
func hasFilePart(r *http.Request) bool {
	mr, err := r.MultipartReader()
	if err != nil {
		return false
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			return false
		}
		if part.FormName() == videoField {
			return true
		}
		_ = part.Close()
	}
}

// IngestStatus reports a single readiness check for a session.
func (a *App) IngestStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessionID := strings.TrimSpace(q.Get("sessionId"))
	if sessionID == "" {
		sessionID = strings.TrimSpace(q.Get("uploadId"))
	}
	if sessionID == "" {
		a.error(w, r, http.StatusBadRequest, msgMissingSession, "")
		return
	}

	progress, err := a.Status.Check(r.Context(), sessionID)
	if err != nil {
		var upstream *domain.UpstreamError
		switch {
		case errors.As(err, &upstream):
			a.log(r).Warn().Err(err).Str("session_id", sessionID).Msg("ingest: upstream reported failure")
			a.error(w, r, http.StatusInternalServerError, msgUpstreamError, upstream.Message)
		case errors.Is(err, domain.ErrInvalidPayload):
			a.error(w, r, http.StatusBadRequest, msgMissingSession, "")
		default:
			a.log(r).Error().Err(err).Str("session_id", sessionID).Msg("ingest: status check failed")
			a.error(w, r, http.StatusInternalServerError, msgUpstreamUnavailable, "")
		}
		return
	}

	if progress.PlaybackID != "" {
		a.json(w, http.StatusOK, statusResponse{
			Status:     string(domain.AssetStatusReady),
			PlaybackID: progress.PlaybackID,
			AssetID:    progress.AssetID,
		})
		return
	}
	a.json(w, http.StatusOK, statusResponse{
		Status:  string(progress.Status),
		AssetID: progress.AssetID,
		Message: localizeFor(r, msgStillProcessing),
	})
}
