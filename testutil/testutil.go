// Package testutil opens migrated in-memory databases and seeds fixtures for
// package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"educa/database"
	"educa/logger"
	"educa/models"
	courseModels "educa/models/course"
)

var dbSeq atomic.Int64

// DB returns a fresh migrated sqlite database private to the test. A single
// connection is used so that concurrent writers queue instead of failing
// with SQLITE_BUSY.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.RunMigrations(db, logger.Nop()); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	l, err := logger.New("test")
	if err != nil {
		tb.Fatalf("init logger: %v", err)
	}
	return l
}

// Password is the plain password of every seeded user.
const Password = "secret-pass"

func SeedUser(tb testing.TB, db *gorm.DB, username string) *models.User {
	tb.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	u := &models.User{Username: username, Email: username + "@example.com", Password: string(hash)}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSubject(tb testing.TB, db *gorm.DB, title string) *courseModels.Subject {
	tb.Helper()
	s := &courseModels.Subject{Title: title, Slug: slug(title)}
	if err := db.Create(s).Error; err != nil {
		tb.Fatalf("seed subject: %v", err)
	}
	return s
}

func SeedCourse(tb testing.TB, db *gorm.DB, ownerID, subjectID uint, title string) *courseModels.Course {
	tb.Helper()
	c := &courseModels.Course{OwnerID: ownerID, SubjectID: subjectID, Title: title, Slug: slug(title), Overview: "overview of " + title}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

// SeedModule inserts a module with an explicit order.
func SeedModule(tb testing.TB, db *gorm.DB, courseID uint, order int, title string) *courseModels.Module {
	tb.Helper()
	m := &courseModels.Module{CourseID: courseID, Title: title, OrderIndex: &order}
	if err := db.Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func slug(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}
