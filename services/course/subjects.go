// Package course manages subjects, courses and their modules.
package course

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"educa/apperr"
	"educa/logger"
	courseModels "educa/models/course"
	"educa/ordering"
	"educa/services/content"
)

type Service struct {
	db       *gorm.DB
	orders   *ordering.Assigner
	contents *content.Service
	log      *logger.Logger
}

func NewService(db *gorm.DB, orders *ordering.Assigner, contents *content.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{db: db, orders: orders, contents: contents, log: log.With("service", "CourseService")}
}

// SubjectSummary is a subject with the number of courses filed under it.
type SubjectSummary struct {
	courseModels.Subject
	TotalCourses int64 `json:"total_courses"`
}

func (s *Service) CreateSubject(ctx context.Context, title, slug string) (*courseModels.Subject, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Invalid("title", "is required")
	}
	if slug = strings.TrimSpace(slug); slug == "" {
		slug = Slugify(title)
	}
	if err := s.slugFree(ctx, &courseModels.Subject{}, slug); err != nil {
		return nil, err
	}
	sub := &courseModels.Subject{Title: title, Slug: slug}
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, err
	}
	s.log.Info("subject created", "subject_id", sub.ID, "slug", slug)
	return sub, nil
}

// Subjects lists every subject by title with its course count.
func (s *Service) Subjects(ctx context.Context) ([]SubjectSummary, error) {
	var out []SubjectSummary
	err := s.db.WithContext(ctx).
		Model(&courseModels.Subject{}).
		Select("subjects.*, COUNT(courses.id) AS total_courses").
		Joins("LEFT JOIN courses ON courses.subject_id = subjects.id").
		Group("subjects.id").
		Order("subjects.title asc").
		Scan(&out).Error
	return out, err
}

func (s *Service) Subject(ctx context.Context, id uint) (*SubjectSummary, error) {
	return s.subjectWhere(ctx, "subjects.id = ?", id)
}

func (s *Service) SubjectBySlug(ctx context.Context, slug string) (*SubjectSummary, error) {
	return s.subjectWhere(ctx, "subjects.slug = ?", slug)
}

func (s *Service) subjectWhere(ctx context.Context, cond string, arg any) (*SubjectSummary, error) {
	var out []SubjectSummary
	err := s.db.WithContext(ctx).
		Model(&courseModels.Subject{}).
		Select("subjects.*, COUNT(courses.id) AS total_courses").
		Joins("LEFT JOIN courses ON courses.subject_id = subjects.id").
		Where(cond, arg).
		Group("subjects.id").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, apperr.NotFound("subject", arg)
	}
	return &out[0], nil
}

// slugFree reports Conflict when a row of model's table already uses slug.
func (s *Service) slugFree(ctx context.Context, model any, slug string, exceptID ...uint) error {
	if slug == "" {
		return apperr.Invalid("slug", "is required")
	}
	q := s.db.WithContext(ctx).Model(model).Where("slug = ?", slug)
	if len(exceptID) > 0 {
		q = q.Where("id <> ?", exceptID[0])
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("slug %q already taken: %w", slug, apperr.ErrConflict)
	}
	return nil
}
