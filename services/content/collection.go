// Package content manages the ordered, heterogeneous item list of a module.
// A Content row references one concrete Text, Video, Image or File row
// through its (ItemType, ItemID) pair.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gorm.io/gorm"

	"educa/apperr"
	"educa/logger"
	courseModels "educa/models/course"
	"educa/oembed"
	"educa/ordering"
	"educa/storage"
)

// Fields carries the user-editable item fields. Only the ones relevant to
// the item kind are read.
type Fields struct {
	Title   string
	Content string
	URL     string
	Upload  *Upload
}

type Upload struct {
	Filename string
	Body     io.Reader
}

type SaveRequest struct {
	ModuleID  uint
	Kind      string
	ContentID *uint // nil creates a new item
	Fields    Fields
	Actor     uint
}

type Saved struct {
	Content *courseModels.Content
	Item    courseModels.Item
}

// Entry is one rendered position of a module's collection.
type Entry struct {
	ID     uint              `json:"id"`
	Order  int               `json:"order"`
	Kind   courseModels.Kind `json:"item_type"`
	ItemID uint              `json:"item_id"`
	Title  string            `json:"title"`
	HTML   string            `json:"item"`
}

type Service struct {
	db     *gorm.DB
	orders *ordering.Assigner
	blobs  storage.Store
	embeds oembed.Resolver
	log    *logger.Logger
}

func NewService(db *gorm.DB, orders *ordering.Assigner, blobs storage.Store, embeds oembed.Resolver, log *logger.Logger) *Service {
	if embeds == nil {
		embeds = oembed.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{db: db, orders: orders, blobs: blobs, embeds: embeds, log: log.With("service", "ContentService")}
}

// Save creates a new item and its association, or updates the item behind
// an existing association in place.
func (s *Service) Save(ctx context.Context, req SaveRequest) (*Saved, error) {
	kind, err := courseModels.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	spec, err := specFor(kind)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedModule(ctx, s.db, req.ModuleID, req.Actor); err != nil {
		return nil, err
	}
	if req.ContentID == nil {
		return s.create(ctx, kind, spec, req)
	}
	return s.update(ctx, kind, spec, req)
}

func (s *Service) create(ctx context.Context, kind courseModels.Kind, spec kindSpec, req SaveRequest) (*Saved, error) {
	title := strings.TrimSpace(req.Fields.Title)
	if title == "" {
		return nil, apperr.Invalid("title", "is required")
	}

	item := spec.new()
	base := item.Base()
	base.OwnerID = req.Actor
	base.Title = title
	if _, err := spec.apply(ctx, s, item, req.Fields, true); err != nil {
		return nil, err
	}

	c := &courseModels.Content{ModuleID: req.ModuleID, ItemType: kind}
	err := s.orders.Append(ctx, s.db, c, func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("create %s: %w", kind, err)
		}
		c.ItemID = base.ID
		return tx.Create(c).Error
	})
	if err != nil {
		s.discardBlobOf(ctx, item)
		return nil, err
	}

	s.log.Info("content created", "module_id", req.ModuleID, "content_id", c.ID, "kind", kind, "order", c.Order())
	return &Saved{Content: c, Item: item}, nil
}

func (s *Service) update(ctx context.Context, kind courseModels.Kind, spec kindSpec, req SaveRequest) (*Saved, error) {
	var c courseModels.Content
	err := s.db.WithContext(ctx).
		Where("id = ? AND module_id = ?", *req.ContentID, req.ModuleID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && c.ItemType != kind) {
		return nil, apperr.NotFound("content", *req.ContentID)
	}
	if err != nil {
		return nil, err
	}

	item, err := s.Resolve(ctx, &c)
	if err != nil {
		return nil, err
	}
	base := item.Base()
	if base.OwnerID != req.Actor {
		return nil, apperr.Forbidden("item belongs to another user")
	}

	if title := strings.TrimSpace(req.Fields.Title); title != "" {
		base.Title = title
	}
	replaced, err := spec.apply(ctx, s, item, req.Fields, false)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, fmt.Errorf("update %s %d: %w", kind, base.ID, err)
	}
	for _, key := range replaced {
		s.discard(ctx, key)
	}

	s.log.Info("content updated", "content_id", c.ID, "kind", kind)
	return &Saved{Content: &c, Item: item}, nil
}

// Resolve loads the concrete item an association points at. A missing row
// is reported as NotFound.
func (s *Service) Resolve(ctx context.Context, c *courseModels.Content) (courseModels.Item, error) {
	spec, err := specFor(c.ItemType)
	if err != nil {
		return nil, err
	}
	item := spec.new()
	err = s.db.WithContext(ctx).First(item, c.ItemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(string(c.ItemType), c.ItemID)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Get returns one association with its resolved item.
func (s *Service) Get(ctx context.Context, contentID uint) (*Saved, error) {
	var c courseModels.Content
	err := s.db.WithContext(ctx).First(&c, contentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("content", contentID)
	}
	if err != nil {
		return nil, err
	}
	item, err := s.Resolve(ctx, &c)
	if err != nil {
		return nil, err
	}
	return &Saved{Content: &c, Item: item}, nil
}

// List returns the module's collection rendered, in order, to the owner of
// the module's course. Associations whose item has disappeared are skipped
// and logged.
func (s *Service) List(ctx context.Context, moduleID, actor uint) ([]Entry, error) {
	if _, err := s.ownedModule(ctx, s.db, moduleID, actor); err != nil {
		return nil, err
	}
	byModule, err := s.ListByModules(ctx, []uint{moduleID})
	if err != nil {
		return nil, err
	}
	return byModule[moduleID], nil
}

// ListByModules renders the collections of several modules with one query
// per item kind.
func (s *Service) ListByModules(ctx context.Context, moduleIDs []uint) (map[uint][]Entry, error) {
	out := make(map[uint][]Entry, len(moduleIDs))
	if len(moduleIDs) == 0 {
		return out, nil
	}
	var rows []courseModels.Content
	if err := s.db.WithContext(ctx).
		Where("module_id IN ?", moduleIDs).
		Order("order_index asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	idsByKind := map[courseModels.Kind][]uint{}
	for _, r := range rows {
		idsByKind[r.ItemType] = append(idsByKind[r.ItemType], r.ItemID)
	}
	items := map[courseModels.Kind]map[uint]courseModels.Item{}
	for kind, ids := range idsByKind {
		spec, err := specFor(kind)
		if err != nil {
			s.log.Warn("unknown content type in module", "kind", kind)
			continue
		}
		found, err := spec.find(s.db.WithContext(ctx), ids)
		if err != nil {
			return nil, fmt.Errorf("load %s items: %w", kind, err)
		}
		items[kind] = make(map[uint]courseModels.Item, len(found))
		for _, it := range found {
			items[kind][it.Base().ID] = it
		}
	}

	for _, r := range rows {
		it, ok := items[r.ItemType][r.ItemID]
		if !ok {
			s.log.Warn("dangling content reference", "content_id", r.ID, "kind", r.ItemType, "item_id", r.ItemID)
			continue
		}
		html, err := it.Render()
		if err != nil {
			s.log.Error("content render failed", "content_id", r.ID, "kind", r.ItemType, "error", err)
		}
		out[r.ModuleID] = append(out[r.ModuleID], Entry{
			ID:     r.ID,
			Order:  r.Order(),
			Kind:   r.ItemType,
			ItemID: r.ItemID,
			Title:  it.Base().Title,
			HTML:   html,
		})
	}
	return out, nil
}

// Delete removes the association only. The concrete item and the orders of
// the remaining siblings are left untouched.
func (s *Service) Delete(ctx context.Context, contentID, actor uint) error {
	var c courseModels.Content
	err := s.db.WithContext(ctx).First(&c, contentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("content", contentID)
	}
	if err != nil {
		return err
	}
	if _, err := s.ownedModule(ctx, s.db, c.ModuleID, actor); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&courseModels.Content{}, c.ID).Error; err != nil {
		return err
	}
	s.log.Info("content deleted", "content_id", c.ID, "module_id", c.ModuleID)
	return nil
}

// Reorder applies id → order for contents of one module as a single batch.
func (s *Service) Reorder(ctx context.Context, moduleID uint, positions map[uint]int, actor uint) error {
	if _, err := s.ownedModule(ctx, s.db, moduleID, actor); err != nil {
		return err
	}
	return s.orders.Reorder(ctx, s.db, "contents", "module_id", moduleID, positions)
}

// ownedModule loads a module and checks that actor owns its course.
func (s *Service) ownedModule(ctx context.Context, tx *gorm.DB, moduleID, actor uint) (*courseModels.Module, error) {
	var m courseModels.Module
	err := tx.WithContext(ctx).First(&m, moduleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("module", moduleID)
	}
	if err != nil {
		return nil, err
	}
	var c courseModels.Course
	if err := tx.WithContext(ctx).Select("id", "owner_id").First(&c, m.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("course", m.CourseID)
		}
		return nil, err
	}
	if c.OwnerID != actor {
		return nil, apperr.Forbidden("module belongs to another instructor's course")
	}
	return &m, nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if key == "" || s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.log.Warn("failed to delete blob", "key", key, "error", err)
	}
}

// discardBlobOf removes the upload of an item that never got persisted.
func (s *Service) discardBlobOf(ctx context.Context, item courseModels.Item) {
	switch it := item.(type) {
	case *courseModels.Image:
		s.discard(ctx, it.File)
	case *courseModels.File:
		s.discard(ctx, it.File)
	}
}
