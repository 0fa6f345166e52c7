package course

// Subject groups courses by topic. Listed by title.
type Subject struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Title string `json:"title" gorm:"type:varchar(200);not null"`
	Slug  string `json:"slug" gorm:"type:varchar(200);uniqueIndex;not null"`
}
