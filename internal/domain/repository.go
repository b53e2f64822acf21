package domain

import "context"

// CourseRepository persists course entities.
type CourseRepository interface {
	List(ctx context.Context, limit, offset int) ([]Course, error)
	GetByID(ctx context.Context, id int64) (*Course, error)
	Create(ctx context.Context, in CourseInput) (*Course, error)
	Update(ctx context.Context, id int64, in CourseInput) (*Course, error)
	SetMediaAssetID(ctx context.Context, id int64, mediaAssetID string) error
	Delete(ctx context.Context, id int64) (*Course, error)
}
