package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrTransferFailed      = errors.New("transfer failed")
	ErrUpstreamError       = errors.New("upstream error")
	ErrTimeout             = errors.New("timed out waiting for media processing")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrAssetNotReady       = errors.New("asset not ready")
	ErrCleanupFailed       = errors.New("asset cleanup failed")
)

// TransferFailedError reports a payload rejected by the upload target.
// StatusCode is zero when no HTTP response was received.
type TransferFailedError struct {
	StatusCode int
	Err        error
}

func (e *TransferFailedError) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return fmt.Sprintf("transfer failed: %v", e.Err)
	}
	return fmt.Sprintf("transfer failed with status %d", e.StatusCode)
}

func (e *TransferFailedError) Is(target error) bool { return target == ErrTransferFailed }

func (e *TransferFailedError) Unwrap() error { return e.Err }

// UpstreamError is a processing failure reported by the transcoding service itself.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return "upstream reported a processing failure"
	}
	return "upstream reported a processing failure: " + e.Message
}

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamError }

// TransferStatus extracts the HTTP status of a failed transfer, if any.
func TransferStatus(err error) (int, bool) {
	var tf *TransferFailedError
	if errors.As(err, &tf) {
		return tf.StatusCode, true
	}
	return 0, false
}
