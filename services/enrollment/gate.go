// Package enrollment answers whether a user is a student of a course and
// records new enrollments.
package enrollment

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"educa/apperr"
	"educa/logger"
	"educa/models"
	courseModels "educa/models/course"
	"educa/notify"
)

type Gate struct {
	db     *gorm.DB
	notify notify.Notifier
	log    *logger.Logger
}

func NewGate(db *gorm.DB, n notify.Notifier, log *logger.Logger) *Gate {
	if log == nil {
		log = logger.Nop()
	}
	return &Gate{db: db, notify: n, log: log.With("service", "EnrollmentGate")}
}

func (g *Gate) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	var n int64
	err := g.db.WithContext(ctx).
		Model(&courseModels.CourseStudent{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Require returns Forbidden unless the user is enrolled in the course.
func (g *Gate) Require(ctx context.Context, userID, courseID uint) error {
	ok, err := g.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden("not enrolled in course")
	}
	return nil
}

// Enroll adds the user to the course's students. Enrolling twice is a no-op.
func (g *Gate) Enroll(ctx context.Context, userID, courseID uint) error {
	var course courseModels.Course
	if err := g.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("course", courseID)
		}
		return err
	}
	var user models.User
	if err := g.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("user", userID)
		}
		return err
	}

	res := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&courseModels.CourseStudent{CourseID: courseID, UserID: userID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	g.log.Info("student enrolled", "user_id", userID, "course_id", courseID)
	if g.notify != nil {
		err := g.notify.Enrolled(ctx, notify.Enrollment{
			Email:       user.Email,
			Username:    user.Username,
			CourseTitle: course.Title,
			CourseSlug:  course.Slug,
		})
		if err != nil {
			g.log.Warn("enrollment notification failed", "user_id", userID, "course_id", courseID, "error", err)
		}
	}
	return nil
}

// CoursesJoined lists the courses a student is enrolled in, newest
// enrollment first.
func (g *Gate) CoursesJoined(ctx context.Context, userID uint) ([]courseModels.Course, error) {
	var courses []courseModels.Course
	err := g.db.WithContext(ctx).
		Joins("JOIN course_students ON course_students.course_id = courses.id").
		Where("course_students.user_id = ?", userID).
		Order("course_students.created_at desc, courses.id desc").
		Find(&courses).Error
	return courses, err
}

func (g *Gate) Students(ctx context.Context, courseID uint) ([]models.User, error) {
	var users []models.User
	err := g.db.WithContext(ctx).
		Joins("JOIN course_students ON course_students.user_id = users.id").
		Where("course_students.course_id = ?", courseID).
		Order("users.username asc").
		Find(&users).Error
	return users, err
}
