package course

import (
	"time"

	"gorm.io/datatypes"
)

// Renderable is the one capability callers need from a content item.
type Renderable interface {
	Render() (string, error)
}

// Item is a concrete content row of any kind.
type Item interface {
	Renderable
	Kind() Kind
	Base() *ItemBase
}

// ItemBase holds the columns shared by every concrete item table.
type ItemBase struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OwnerID   uint      `json:"owner" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"type:varchar(250);not null"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

func (b *ItemBase) Base() *ItemBase { return b }

type Text struct {
	ItemBase
	Content string `json:"content" gorm:"type:text"`
}

func (*Text) Kind() Kind { return KindText }

type Video struct {
	ItemBase
	URL       string `json:"url" gorm:"type:varchar(500)"`
	EmbedHTML string `json:"-" gorm:"type:text"`
}

func (*Video) Kind() Kind { return KindVideo }

// Image and File keep the blob key in File and the public address in FileURL.
type Image struct {
	ItemBase
	File    string            `json:"file" gorm:"type:varchar(500)"`
	FileURL string            `json:"file_url" gorm:"type:varchar(1000)"`
	Meta    datatypes.JSONMap `json:"meta"`
}

func (*Image) Kind() Kind { return KindImage }

type File struct {
	ItemBase
	File    string            `json:"file" gorm:"type:varchar(500)"`
	FileURL string            `json:"file_url" gorm:"type:varchar(1000)"`
	Meta    datatypes.JSONMap `json:"meta"`
}

func (*File) Kind() Kind { return KindFile }
