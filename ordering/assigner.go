// Package ordering numbers siblings inside a parent collection. New rows are
// appended at max(order)+1 of their scope (or 0 for the first one); explicit
// reorders write caller-chosen values as one batch.
package ordering

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"gorm.io/gorm"

	"educa/apperr"
	"educa/logger"
)

// Column is the order column shared by every ordered table.
const Column = "order_index"

var ErrUnscoped = errors.New("ordering: scope has no fields")

// Field is one parent-identifying column of a scope key.
type Field struct {
	Column string
	Value  any
}

// Scope identifies a sibling group, e.g. the modules of one course.
type Scope struct {
	Table  string
	Fields []Field
}

// Key renders the scope as a stable string used for in-process and
// database locks.
func (s Scope) Key() string {
	parts := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		parts = append(parts, fmt.Sprintf("%s=%v", f.Column, f.Value))
	}
	sort.Strings(parts)
	return s.Table + "|" + strings.Join(parts, ",")
}

func (s Scope) validate() error {
	if strings.TrimSpace(s.Table) == "" || len(s.Fields) == 0 {
		return ErrUnscoped
	}
	return nil
}

// Ordered is implemented by rows numbered within a scope. OrderScope must
// return every field the entity is scoped by.
type Ordered interface {
	OrderScope() Scope
	CurrentOrder() *int
	SetOrder(int)
}

type Assigner struct {
	locks *keyLock
	log   *logger.Logger
}

func NewAssigner(log *logger.Logger) *Assigner {
	if log == nil {
		log = logger.Nop()
	}
	return &Assigner{locks: newKeyLock(), log: log.With("component", "OrderAssigner")}
}

// Next returns max(order)+1 among the scope's rows, or 0 when it has none.
func (a *Assigner) Next(ctx context.Context, tx *gorm.DB, scope Scope) (int, error) {
	if err := scope.validate(); err != nil {
		return 0, err
	}
	q := tx.WithContext(ctx).Table(scope.Table)
	for _, f := range scope.Fields {
		q = q.Where(fmt.Sprintf("%s = ?", f.Column), f.Value)
	}
	var max sql.NullInt64
	if err := q.Select(fmt.Sprintf("MAX(%s)", Column)).Row().Scan(&max); err != nil {
		return 0, fmt.Errorf("ordering: max %s: %w", scope.Key(), err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// Assign leaves an explicit order untouched and otherwise sets Next.
func (a *Assigner) Assign(ctx context.Context, tx *gorm.DB, e Ordered) (int, error) {
	if cur := e.CurrentOrder(); cur != nil {
		return *cur, nil
	}
	next, err := a.Next(ctx, tx, e.OrderScope())
	if err != nil {
		return 0, err
	}
	e.SetOrder(next)
	return next, nil
}

// Append assigns e its order and runs create in the same transaction while
// holding the scope lock. The lock is taken before the transaction opens so
// that waiting callers never hold a connection.
func (a *Assigner) Append(ctx context.Context, db *gorm.DB, e Ordered, create func(tx *gorm.DB) error) error {
	scope := e.OrderScope()
	if err := scope.validate(); err != nil {
		return err
	}
	key := scope.Key()
	unlock := a.locks.lock(key)
	defer unlock()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := advisoryLock(tx, key); err != nil {
			return err
		}
		order, err := a.Assign(ctx, tx, e)
		if err != nil {
			return err
		}
		if err := create(tx); err != nil {
			return err
		}
		a.log.Debug("order assigned", "scope", key, "order", order)
		return nil
	})
}

// advisoryLock serialises appends to one scope across processes. Only
// PostgreSQL offers transaction-scoped advisory locks; other dialects rely
// on the in-process lock.
func advisoryLock(tx *gorm.DB, key string) error {
	if tx.Dialector == nil || tx.Dialector.Name() != "postgres" {
		return nil
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(h.Sum64())).Error; err != nil {
		return fmt.Errorf("ordering: advisory lock %s: %w", key, err)
	}
	return nil
}

// Reorder writes the given id → order mapping for rows of table whose
// parentColumn equals parentID. It is all-or-nothing: an id outside the
// parent rolls the whole batch back with ErrNotFound. Values are not checked
// for uniqueness or contiguity.
func (a *Assigner) Reorder(ctx context.Context, db *gorm.DB, table, parentColumn string, parentID uint, positions map[uint]int) error {
	if len(positions) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	key := Scope{Table: table, Fields: []Field{{Column: parentColumn, Value: parentID}}}.Key()
	unlock := a.locks.lock(key)
	defer unlock()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := advisoryLock(tx, key); err != nil {
			return err
		}
		var count int64
		if err := tx.Table(table).
			Where(fmt.Sprintf("%s = ? AND id IN ?", parentColumn), parentID, ids).
			Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(ids) {
			return fmt.Errorf("reorder %s: %d of %d ids not in %s %d: %w",
				table, len(ids)-int(count), len(ids), parentColumn, parentID, apperr.ErrNotFound)
		}
		for _, id := range ids {
			if err := tx.Table(table).
				Where(fmt.Sprintf("id = ? AND %s = ?", parentColumn), id, parentID).
				Update(Column, positions[id]).Error; err != nil {
				return err
			}
		}
		a.log.Debug("scope reordered", "scope", key, "count", len(ids))
		return nil
	})
}

// Positions turns an ordered id list into an id → order mapping.
func Positions(ids []uint) map[uint]int {
	out := make(map[uint]int, len(ids))
	for i, id := range ids {
		out[id] = i
	}
	return out
}
