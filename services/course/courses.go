package course

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"educa/apperr"
	courseModels "educa/models/course"
	"educa/services/content"
)

type CourseInput struct {
	SubjectID uint
	Title     string
	Slug      string
	Overview  string
}

// ModuleContents is a module together with its rendered collection.
type ModuleContents struct {
	courseModels.Module
	Contents []content.Entry `json:"contents"`
}

// CourseDetail is a course with every module and its contents, in order.
type CourseDetail struct {
	courseModels.Course
	Modules []ModuleContents `json:"modules"`
}

func (s *Service) CreateCourse(ctx context.Context, owner uint, in CourseInput) (*courseModels.Course, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Invalid("title", "is required")
	}
	if err := s.subjectExists(ctx, in.SubjectID); err != nil {
		return nil, err
	}
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if err := s.slugFree(ctx, &courseModels.Course{}, slug); err != nil {
		return nil, err
	}

	c := &courseModels.Course{
		OwnerID:   owner,
		SubjectID: in.SubjectID,
		Title:     title,
		Slug:      slug,
		Overview:  strings.TrimSpace(in.Overview),
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	s.log.Info("course created", "course_id", c.ID, "owner_id", owner, "slug", slug)
	return c, nil
}

// UpdateCourse changes the non-empty fields of in.
func (s *Service) UpdateCourse(ctx context.Context, id, actor uint, in CourseInput) (*courseModels.Course, error) {
	c, err := s.ownedCourse(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if in.SubjectID != 0 && in.SubjectID != c.SubjectID {
		if err := s.subjectExists(ctx, in.SubjectID); err != nil {
			return nil, err
		}
		c.SubjectID = in.SubjectID
	}
	if t := strings.TrimSpace(in.Title); t != "" {
		c.Title = t
	}
	if slug := strings.TrimSpace(in.Slug); slug != "" && slug != c.Slug {
		if err := s.slugFree(ctx, &courseModels.Course{}, slug, c.ID); err != nil {
			return nil, err
		}
		c.Slug = slug
	}
	if o := strings.TrimSpace(in.Overview); o != "" {
		c.Overview = o
	}
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCourse removes the course with its modules, their contents and its
// memberships. Concrete content items are kept.
func (s *Service) DeleteCourse(ctx context.Context, id, actor uint) error {
	c, err := s.ownedCourse(ctx, id, actor)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		modules := tx.Model(&courseModels.Module{}).Select("id").Where("course_id = ?", c.ID)
		if err := tx.Where("module_id IN (?)", modules).Delete(&courseModels.Content{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", c.ID).Delete(&courseModels.Module{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", c.ID).Delete(&courseModels.CourseStudent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&courseModels.Course{}, c.ID).Error
	})
	if err != nil {
		return err
	}
	s.log.Info("course deleted", "course_id", c.ID)
	return nil
}

// Courses lists courses newest first, optionally only those of one subject.
func (s *Service) Courses(ctx context.Context, subjectSlug string) ([]courseModels.Course, error) {
	q := s.db.WithContext(ctx).Model(&courseModels.Course{})
	if subjectSlug = strings.TrimSpace(subjectSlug); subjectSlug != "" {
		q = q.Joins("JOIN subjects ON subjects.id = courses.subject_id").Where("subjects.slug = ?", subjectSlug)
	}
	var out []courseModels.Course
	err := q.Order("courses.created_at desc, courses.id desc").Find(&out).Error
	return out, err
}

func (s *Service) OwnedCourses(ctx context.Context, owner uint) ([]courseModels.Course, error) {
	var out []courseModels.Course
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", owner).
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

func (s *Service) Course(ctx context.Context, id uint) (*courseModels.Course, error) {
	var c courseModels.Course
	err := s.db.WithContext(ctx).Preload("Modules", orderedModules).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("course", id)
	}
	return &c, err
}

func (s *Service) CourseBySlug(ctx context.Context, slug string) (*courseModels.Course, error) {
	var c courseModels.Course
	err := s.db.WithContext(ctx).Preload("Modules", orderedModules).Where("slug = ?", slug).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("course", slug)
	}
	return &c, err
}

// WithContents loads a course with each module's rendered contents.
// Callers check enrollment first.
func (s *Service) WithContents(ctx context.Context, id uint) (*CourseDetail, error) {
	c, err := s.Course(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(c.Modules))
	for i, m := range c.Modules {
		ids[i] = m.ID
	}
	entries, err := s.contents.ListByModules(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := &CourseDetail{Course: *c, Modules: make([]ModuleContents, len(c.Modules))}
	out.Course.Modules = nil
	for i, m := range c.Modules {
		list := entries[m.ID]
		if list == nil {
			list = []content.Entry{}
		}
		out.Modules[i] = ModuleContents{Module: m, Contents: list}
	}
	return out, nil
}

func orderedModules(db *gorm.DB) *gorm.DB {
	return db.Order("order_index asc, id asc")
}

func (s *Service) ownedCourse(ctx context.Context, id, actor uint) (*courseModels.Course, error) {
	var c courseModels.Course
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("course", id)
	}
	if err != nil {
		return nil, err
	}
	if c.OwnerID != actor {
		return nil, apperr.Forbidden("course belongs to another instructor")
	}
	return &c, nil
}

func (s *Service) subjectExists(ctx context.Context, id uint) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&courseModels.Subject{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("subject", id)
	}
	return nil
}
