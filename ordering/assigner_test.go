package ordering

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"educa/apperr"
)

type lesson struct {
	ID         uint `gorm:"primaryKey"`
	UnitID     uint
	OrderIndex *int `gorm:"column:order_index"`
}

func (l *lesson) OrderScope() Scope {
	return Scope{Table: "lessons", Fields: []Field{{Column: "unit_id", Value: l.UnitID}}}
}
func (l *lesson) CurrentOrder() *int { return l.OrderIndex }
func (l *lesson) SetOrder(n int)     { l.OrderIndex = &n }

type unscoped struct{ lesson }

func (u *unscoped) OrderScope() Scope { return Scope{Table: "lessons"} }

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&lesson{}))
	return db
}

func appendLesson(t *testing.T, a *Assigner, db *gorm.DB, unit uint) *lesson {
	t.Helper()
	l := &lesson{UnitID: unit}
	require.NoError(t, a.Append(context.Background(), db, l, func(tx *gorm.DB) error {
		return tx.Create(l).Error
	}))
	return l
}

func orders(t *testing.T, db *gorm.DB, unit uint) []int {
	t.Helper()
	var rows []lesson
	require.NoError(t, db.Where("unit_id = ?", unit).Order("order_index asc, id asc").Find(&rows).Error)
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r.OrderIndex)
	}
	return out
}

func TestAppendNumbersFromZeroInCreationOrder(t *testing.T) {
	db := openDB(t)
	a := NewAssigner(nil)

	var created []*lesson
	for i := 0; i < 5; i++ {
		created = append(created, appendLesson(t, a, db, 1))
	}
	for i, l := range created {
		assert.Equal(t, i, *l.OrderIndex)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, orders(t, db, 1))
}

func TestScopesAreIndependent(t *testing.T) {
	db := openDB(t)
	a := NewAssigner(nil)

	appendLesson(t, a, db, 1)
	appendLesson(t, a, db, 1)
	first := appendLesson(t, a, db, 2)
	appendLesson(t, a, db, 1)

	assert.Equal(t, 0, *first.OrderIndex)
	assert.Equal(t, []int{0, 1, 2}, orders(t, db, 1))
	assert.Equal(t, []int{0}, orders(t, db, 2))
}

func TestExplicitOrderPassesThrough(t *testing.T) {
	db := openDB(t)
	a := NewAssigner(nil)
	appendLesson(t, a, db, 1)

	n := 42
	l := &lesson{UnitID: 1, OrderIndex: &n}
	got, err := a.Assign(context.Background(), db, l)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestDeleteLeavesGap(t *testing.T) {
	db := openDB(t)
	a := NewAssigner(nil)
	appendLesson(t, a, db, 1)
	middle := appendLesson(t, a, db, 1)
	appendLesson(t, a, db, 1)

	require.NoError(t, db.Delete(&lesson{}, middle.ID).Error)
	assert.Equal(t, []int{0, 2}, orders(t, db, 1))

	next := appendLesson(t, a, db, 1)
	assert.Equal(t, 3, *next.OrderIndex)
}

func TestUnscopedIsRejected(t *testing.T) {
	db := openDB(t)
	a := NewAssigner(nil)
	err := a.Append(context.Background(), db, &unscoped{}, func(tx *gorm.DB) error { return nil })
	assert.ErrorIs(t, err, ErrUnscoped)
}

func TestReorderAppliesMapping(t *testing.T) {
	db := openDB(t)
	a := NewAssigner(nil)
	la := appendLesson(t, a, db, 1)
	lb := appendLesson(t, a, db, 1)
	lc := appendLesson(t, a, db, 1)

	err := a.Reorder(context.Background(), db, "lessons", "unit_id", 1, map[uint]int{la.ID: 5, lb.ID: 1, lc.ID: 3})
	require.NoError(t, err)

	var rows []lesson
	require.NoError(t, db.Where("unit_id = ?", 1).Order("order_index asc, id asc").Find(&rows).Error)
	require.Len(t, rows, 3)
	assert.Equal(t, []uint{lb.ID, lc.ID, la.ID}, []uint{rows[0].ID, rows[1].ID, rows[2].ID})
	assert.Equal(t, []int{1, 3, 5}, orders(t, db, 1))
}

func TestReorderIsAllOrNothing(t *testing.T) {
	db := openDB(t)
	a := NewAssigner(nil)
	la := appendLesson(t, a, db, 1)
	foreign := appendLesson(t, a, db, 2)

	err := a.Reorder(context.Background(), db, "lessons", "unit_id", 1, map[uint]int{la.ID: 9, foreign.ID: 0})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, []int{0}, orders(t, db, 1))
	assert.Equal(t, []int{0}, orders(t, db, 2))
}

func TestConcurrentAppendsNeverShareAnOrder(t *testing.T) {
	db := openDB(t)
	a := NewAssigner(nil)

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := &lesson{UnitID: 7}
			errs <- a.Append(context.Background(), db, l, func(tx *gorm.DB) error {
				return tx.Create(l).Error
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got := orders(t, db, 7)
	sort.Ints(got)
	want := make([]int, n)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 0, a.locks.size())
}

func TestPositions(t *testing.T) {
	assert.Equal(t, map[uint]int{9: 0, 4: 1, 6: 2}, Positions([]uint{9, 4, 6}))
}
