package domain

import "time"

// AssetStatus is the transcoding service's view of a media object.
type AssetStatus string

const (
	AssetStatusPending    AssetStatus = "pending"
	AssetStatusProcessing AssetStatus = "processing"
	AssetStatusReady      AssetStatus = "ready"
	AssetStatusFailed     AssetStatus = "failed"
)

// UploadSession is a single-use transfer slot. It lives only for one ingestion attempt.
type UploadSession struct {
	SessionID    string
	UploadTarget string
	CreatedAt    time.Time
}

// AssetRef is a live snapshot of a remote asset; PlaybackID is set only when Status is ready.
type AssetRef struct {
	AssetID    string
	Status     AssetStatus
	PlaybackID string
}

// Ready reports whether the asset can be streamed.
func (a AssetRef) Ready() bool {
	return a.Status == AssetStatusReady && a.PlaybackID != ""
}

// Progress is the outcome of a single readiness check for an upload session.
type Progress struct {
	Status     AssetStatus
	AssetID    string
	PlaybackID string
}
