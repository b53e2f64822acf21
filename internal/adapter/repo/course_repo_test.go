package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"coursemedia/internal/domain"
	"coursemedia/internal/sqlinline"
)

type courseRow struct {
	id        int64
	title     string
	imageSrc  string
	isQuiz    bool
	media     *string
	createdAt time.Time
}

func (c courseRow) scan(dest ...any) error {
	if len(dest) != 7 {
		return fmt.Errorf("unexpected scan args: %d", len(dest))
	}
	*dest[0].(*int64) = c.id
	*dest[1].(*string) = c.title
	*dest[2].(*string) = c.imageSrc
	*dest[3].(*bool) = c.isQuiz
	*dest[4].(**string) = c.media
	*dest[5].(*time.Time) = c.createdAt
	*dest[6].(*time.Time) = c.createdAt
	return nil
}

type funcRow func(dest ...any) error

func (f funcRow) Scan(dest ...any) error { return f(dest...) }

type fakeSQL struct {
	rows      []courseRow
	row       *courseRow
	rowErr    error
	tag       pgconn.CommandTag
	lastQuery string
	lastArgs  []any
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.lastQuery, f.lastArgs = query, args
	return f.tag, nil
}

func (f *fakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.lastQuery, f.lastArgs = query, args
	return funcRow(func(dest ...any) error {
		if f.rowErr != nil {
			return f.rowErr
		}
		if f.row == nil {
			return pgx.ErrNoRows
		}
		return f.row.scan(dest...)
	})
}

func (f *fakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.lastQuery, f.lastArgs = query, args
	return &courseRows{rows: f.rows}, nil
}

type courseRows struct {
	rows []courseRow
	idx  int
}

func (r *courseRows) Close()                                       {}
func (r *courseRows) Err() error                                   { return nil }
func (r *courseRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *courseRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *courseRows) Values() ([]any, error)                       { return nil, errors.New("not supported") }
func (r *courseRows) RawValues() [][]byte                          { return nil }
func (r *courseRows) Conn() *pgx.Conn                              { return nil }

func (r *courseRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *courseRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.rows) {
		return pgx.ErrNoRows
	}
	return r.rows[r.idx-1].scan(dest...)
}

func strPtr(s string) *string { return &s }

func TestCourseRepositoryList(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	sql := &fakeSQL{rows: []courseRow{
		{id: 1, title: "Hindi basics", isQuiz: true, createdAt: created},
		{id: 2, title: "Greetings", media: strPtr("pb-1"), createdAt: created},
	}}
	repo := NewCourseRepository(sql)

	courses, err := repo.List(context.Background(), 0, -3)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if sql.lastQuery != sqlinline.QListCourses {
		t.Fatalf("unexpected query")
	}
	if sql.lastArgs[0] != 50 || sql.lastArgs[1] != 0 {
		t.Fatalf("limit/offset args = %v", sql.lastArgs)
	}
	if len(courses) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(courses))
	}
	if courses[0].HasMedia() {
		t.Fatalf("course 1 should be static")
	}
	if !courses[1].HasMedia() || *courses[1].MediaAssetID != "pb-1" {
		t.Fatalf("course 2 media = %v", courses[1].MediaAssetID)
	}
}

func TestCourseRepositoryGetByIDNotFound(t *testing.T) {
	repo := NewCourseRepository(&fakeSQL{})
	if _, err := repo.GetByID(context.Background(), 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCourseRepositoryGetByIDPropagatesErrors(t *testing.T) {
	boom := errors.New("conn reset")
	repo := NewCourseRepository(&fakeSQL{rowErr: boom})
	if _, err := repo.GetByID(context.Background(), 42); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestCourseRepositorySetMediaAssetID(t *testing.T) {
	sql := &fakeSQL{tag: pgconn.NewCommandTag("UPDATE 1")}
	repo := NewCourseRepository(sql)
	if err := repo.SetMediaAssetID(context.Background(), 7, "pb-7"); err != nil {
		t.Fatalf("SetMediaAssetID error: %v", err)
	}
	if sql.lastQuery != sqlinline.QSetCourseMediaAsset {
		t.Fatalf("unexpected query")
	}
	if sql.lastArgs[0] != int64(7) || sql.lastArgs[1] != "pb-7" {
		t.Fatalf("args = %v", sql.lastArgs)
	}

	sql.tag = pgconn.NewCommandTag("UPDATE 0")
	if err := repo.SetMediaAssetID(context.Background(), 8, "pb-8"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCourseRepositoryDeleteReturnsRecord(t *testing.T) {
	sql := &fakeSQL{row: &courseRow{id: 3, title: "Numbers", media: strPtr("pb-3")}}
	repo := NewCourseRepository(sql)
	course, err := repo.Delete(context.Background(), 3)
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if sql.lastQuery != sqlinline.QDeleteCourse {
		t.Fatalf("unexpected query")
	}
	if course.ID != 3 || *course.MediaAssetID != "pb-3" {
		t.Fatalf("unexpected course %+v", course)
	}
}
