package course

import (
	"time"

	"educa/models"
)

// Course represents a learning course owned by an instructor
type Course struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OwnerID   uint      `json:"owner" gorm:"index;not null"`
	SubjectID uint      `json:"subject" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"type:varchar(200);not null"`
	Slug      string    `json:"slug" gorm:"type:varchar(200);uniqueIndex;not null"`
	Overview  string    `json:"overview" gorm:"type:text"`
	CreatedAt time.Time `json:"created" gorm:"index"`

	Owner   *models.User `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Subject *Subject     `json:"-" gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE"`
	Modules []Module     `json:"modules,omitempty" gorm:"foreignKey:CourseID"`
}

// CourseStudent is the membership relation behind a course's student set.
// The composite primary key makes enrollment a set insert.
type CourseStudent struct {
	CourseID  uint      `json:"course_id" gorm:"primaryKey;autoIncrement:false"`
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `json:"enrolled_at"`
}
