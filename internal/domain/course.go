package domain

import "time"

// Course is a catalog entry that is either static or carries one attached video.
// MediaAssetID holds the playback identifier returned by a successful ingestion;
// readiness is never stored and is always resolved live.
type Course struct {
	ID           int64
	Title        string
	ImageSrc     string
	IsQuiz       bool
	MediaAssetID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasMedia reports whether the course references a remote asset.
func (c *Course) HasMedia() bool {
	return c != nil && c.MediaAssetID != nil && *c.MediaAssetID != ""
}

// CourseInput carries the writable fields of a course.
type CourseInput struct {
	Title        string
	ImageSrc     string
	IsQuiz       bool
	MediaAssetID *string
}
