package content

import (
	"context"
	"fmt"
	"sort"

	courseModels "educa/models/course"
)

// FindDangling returns associations whose concrete item row no longer
// exists, or whose item type is not a known kind.
func (s *Service) FindDangling(ctx context.Context) ([]courseModels.Content, error) {
	var out []courseModels.Content
	known := make([]string, 0, len(kinds))
	for kind, spec := range kinds {
		known = append(known, string(kind))
		var rows []courseModels.Content
		err := s.db.WithContext(ctx).
			Table("contents").
			Select("contents.*").
			Joins(fmt.Sprintf("LEFT JOIN %[1]s ON %[1]s.id = contents.item_id", spec.table)).
			Where(fmt.Sprintf("contents.item_type = ? AND %s.id IS NULL", spec.table), string(kind)).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("scan dangling %s: %w", kind, err)
		}
		out = append(out, rows...)
	}

	var unknown []courseModels.Content
	if err := s.db.WithContext(ctx).Where("item_type NOT IN ?", known).Find(&unknown).Error; err != nil {
		return nil, fmt.Errorf("scan unknown kinds: %w", err)
	}
	out = append(out, unknown...)

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Prune deletes the given associations and reports how many rows went away.
func (s *Service) Prune(ctx context.Context, dangling []courseModels.Content) (int64, error) {
	if len(dangling) == 0 {
		return 0, nil
	}
	ids := make([]uint, len(dangling))
	for i, c := range dangling {
		ids[i] = c.ID
	}
	res := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&courseModels.Content{})
	if res.Error != nil {
		return 0, res.Error
	}
	s.log.Info("pruned dangling contents", "count", res.RowsAffected)
	return res.RowsAffected, nil
}
