package course

import (
	"fmt"
	"strings"

	"educa/apperr"
	"educa/ordering"
)

// Kind is the discriminant of a content item reference.
type Kind string

const (
	KindText  Kind = "text"
	KindVideo Kind = "video"
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

// Kinds lists every supported item kind.
var Kinds = []Kind{KindText, KindVideo, KindImage, KindFile}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("content type %q: %w", s, apperr.ErrInvalidContentType)
	}
	return k, nil
}

func (k Kind) Valid() bool {
	switch k {
	case KindText, KindVideo, KindImage, KindFile:
		return true
	}
	return false
}

// Content places one concrete item, named by (ItemType, ItemID), at a
// position inside a module.
type Content struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	ModuleID   uint `json:"module_id" gorm:"index;not null"`
	ItemType   Kind `json:"item_type" gorm:"type:varchar(16);not null;index:idx_content_item"`
	ItemID     uint `json:"item_id" gorm:"not null;index:idx_content_item"`
	OrderIndex *int `json:"order" gorm:"column:order_index;index"`
}

func (c *Content) OrderScope() ordering.Scope {
	return ordering.Scope{Table: "contents", Fields: []ordering.Field{{Column: "module_id", Value: c.ModuleID}}}
}

func (c *Content) CurrentOrder() *int { return c.OrderIndex }

func (c *Content) SetOrder(n int) { c.OrderIndex = &n }

func (c *Content) Order() int {
	if c.OrderIndex == nil {
		return -1
	}
	return *c.OrderIndex
}
