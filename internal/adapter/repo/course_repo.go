package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"coursemedia/internal/domain"
	"coursemedia/internal/infra"
	"coursemedia/internal/sqlinline"
)

// CourseRepositoryPG implements domain.CourseRepository on PostgreSQL.
type CourseRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewCourseRepository constructs a course repository over an audited executor.
func NewCourseRepository(sql infra.SQLExecutor) *CourseRepositoryPG {
	return &CourseRepositoryPG{sql: sql}
}

// List returns courses ordered by id.
func (r *CourseRepositoryPG) List(ctx context.Context, limit, offset int) ([]domain.Course, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListCourses, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	courses := make([]domain.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, *course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// GetByID fetches a course by its identifier.
func (r *CourseRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	course, err := scanCourse(r.sql.QueryRow(ctx, sqlinline.QSelectCourseByID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return course, nil
}

// Create inserts a new course.
func (r *CourseRepositoryPG) Create(ctx context.Context, in domain.CourseInput) (*domain.Course, error) {
	course, err := scanCourse(r.sql.QueryRow(ctx, sqlinline.QInsertCourse, in.Title, in.ImageSrc, in.IsQuiz, in.MediaAssetID))
	if err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}
	return course, nil
}

// Update overwrites the writable fields. A nil MediaAssetID keeps the stored reference.
func (r *CourseRepositoryPG) Update(ctx context.Context, id int64, in domain.CourseInput) (*domain.Course, error) {
	course, err := scanCourse(r.sql.QueryRow(ctx, sqlinline.QUpdateCourse, id, in.Title, in.ImageSrc, in.IsQuiz, in.MediaAssetID))
	if err != nil {
		return nil, notFound(err)
	}
	return course, nil
}

// SetMediaAssetID binds a ready asset to a course, replacing any previous reference.
func (r *CourseRepositoryPG) SetMediaAssetID(ctx context.Context, id int64, mediaAssetID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QSetCourseMediaAsset, id, mediaAssetID)
	if err != nil {
		return fmt.Errorf("set course media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a course and returns the deleted record.
func (r *CourseRepositoryPG) Delete(ctx context.Context, id int64) (*domain.Course, error) {
	course, err := scanCourse(r.sql.QueryRow(ctx, sqlinline.QDeleteCourse, id))
	if err != nil {
		return nil, notFound(err)
	}
	return course, nil
}

func scanCourse(row pgx.Row) (*domain.Course, error) {
	var c domain.Course
	if err := row.Scan(&c.ID, &c.Title, &c.ImageSrc, &c.IsQuiz, &c.MediaAssetID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func notFound(err error) error {
	if infra.IsNoRows(err) {
		return domain.ErrNotFound
	}
	return err
}

var _ domain.CourseRepository = (*CourseRepositoryPG)(nil)
