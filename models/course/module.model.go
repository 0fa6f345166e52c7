package course

import "educa/ordering"

// Module represents a section within a course. OrderIndex is nil until the
// module is first persisted.
type Module struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	CourseID    uint   `json:"-" gorm:"index;not null"`
	Title       string `json:"title" gorm:"type:varchar(200);not null"`
	Description string `json:"description" gorm:"type:text"`
	OrderIndex  *int   `json:"order" gorm:"column:order_index;index"`

	Contents []Content `json:"-" gorm:"foreignKey:ModuleID"`
}

func (m *Module) OrderScope() ordering.Scope {
	return ordering.Scope{Table: "modules", Fields: []ordering.Field{{Column: "course_id", Value: m.CourseID}}}
}

func (m *Module) CurrentOrder() *int { return m.OrderIndex }

func (m *Module) SetOrder(n int) { m.OrderIndex = &n }

// Order returns the assigned order, or -1 before assignment.
func (m *Module) Order() int {
	if m.OrderIndex == nil {
		return -1
	}
	return *m.OrderIndex
}
