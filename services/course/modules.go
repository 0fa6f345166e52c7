package course

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"educa/apperr"
	courseModels "educa/models/course"
)

type ModuleInput struct {
	Title       string
	Description string
}

// CreateModule appends a module at the end of the course.
func (s *Service) CreateModule(ctx context.Context, courseID, actor uint, in ModuleInput) (*courseModels.Module, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Invalid("title", "is required")
	}
	if _, err := s.ownedCourse(ctx, courseID, actor); err != nil {
		return nil, err
	}
	m := &courseModels.Module{CourseID: courseID, Title: title, Description: strings.TrimSpace(in.Description)}
	err := s.orders.Append(ctx, s.db, m, func(tx *gorm.DB) error {
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("module created", "course_id", courseID, "module_id", m.ID, "order", m.Order())
	return m, nil
}

// UpdateModule edits title and description. The order only changes
// through ReorderModules.
func (s *Service) UpdateModule(ctx context.Context, moduleID, actor uint, in ModuleInput) (*courseModels.Module, error) {
	m, err := s.ownedModule(ctx, moduleID, actor)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if t := strings.TrimSpace(in.Title); t != "" {
		updates["title"] = t
		m.Title = t
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		updates["description"] = d
		m.Description = d
	}
	if len(updates) == 0 {
		return m, nil
	}
	if err := s.db.WithContext(ctx).Model(&courseModels.Module{}).Where("id = ?", m.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteModule removes the module and its contents. Sibling orders are left
// as they are.
func (s *Service) DeleteModule(ctx context.Context, moduleID, actor uint) error {
	m, err := s.ownedModule(ctx, moduleID, actor)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", m.ID).Delete(&courseModels.Content{}).Error; err != nil {
			return err
		}
		return tx.Delete(&courseModels.Module{}, m.ID).Error
	})
}

func (s *Service) Modules(ctx context.Context, courseID uint) ([]courseModels.Module, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&courseModels.Course{}).Where("id = ?", courseID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.NotFound("course", courseID)
	}
	var out []courseModels.Module
	err := orderedModules(s.db.WithContext(ctx)).Where("course_id = ?", courseID).Find(&out).Error
	return out, err
}

// Module returns a module by id without checking ownership.
func (s *Service) Module(ctx context.Context, moduleID uint) (*courseModels.Module, error) {
	var m courseModels.Module
	err := s.db.WithContext(ctx).First(&m, moduleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("module", moduleID)
	}
	return &m, err
}

func (s *Service) ReorderModules(ctx context.Context, courseID, actor uint, positions map[uint]int) error {
	if _, err := s.ownedCourse(ctx, courseID, actor); err != nil {
		return err
	}
	return s.orders.Reorder(ctx, s.db, "modules", "course_id", courseID, positions)
}

func (s *Service) ownedModule(ctx context.Context, moduleID, actor uint) (*courseModels.Module, error) {
	m, err := s.Module(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedCourse(ctx, m.CourseID, actor); err != nil {
		return nil, err
	}
	return m, nil
}
