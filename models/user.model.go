package models

import (
	"time"
)

// User is the acting identity for every course operation. Instructors own
// courses and content items; students join courses.
type User struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Username  string     `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email     string     `json:"email" gorm:"type:varchar(254);default:''"`
	Password  string     `json:"-" gorm:"not null"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
