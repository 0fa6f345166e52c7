package content

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"educa/apperr"
	courseModels "educa/models/course"
	"educa/storage"
)

// kindSpec is the per-kind entry of the dispatch table. Nothing outside this
// file switches on a Kind.
type kindSpec struct {
	table string
	new   func() courseModels.Item
	find  func(tx *gorm.DB, ids []uint) ([]courseModels.Item, error)
	// apply copies kind-specific fields onto item. Blob uploads happen here;
	// the returned keys are blobs replaced by the update.
	apply func(ctx context.Context, s *Service, item courseModels.Item, f Fields, creating bool) (replaced []string, err error)
}

var kinds = map[courseModels.Kind]kindSpec{
	courseModels.KindText: {
		table: "texts",
		new:   newItem[courseModels.Text],
		find:  finder[courseModels.Text],
		apply: applyText,
	},
	courseModels.KindVideo: {
		table: "videos",
		new:   newItem[courseModels.Video],
		find:  finder[courseModels.Video],
		apply: applyVideo,
	},
	courseModels.KindImage: {
		table: "images",
		new:   newItem[courseModels.Image],
		find:  finder[courseModels.Image],
		apply: applyImage,
	},
	courseModels.KindFile: {
		table: "files",
		new:   newItem[courseModels.File],
		find:  finder[courseModels.File],
		apply: applyFile,
	},
}

func specFor(k courseModels.Kind) (kindSpec, error) {
	spec, ok := kinds[k]
	if !ok {
		return kindSpec{}, fmt.Errorf("content type %q: %w", k, apperr.ErrInvalidContentType)
	}
	return spec, nil
}

type itemPtr[T any] interface {
	*T
	courseModels.Item
}

func newItem[T any, P itemPtr[T]]() courseModels.Item {
	return P(new(T))
}

func finder[T any, P itemPtr[T]](tx *gorm.DB, ids []uint) ([]courseModels.Item, error) {
	var rows []T
	if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]courseModels.Item, len(rows))
	for i := range rows {
		out[i] = P(&rows[i])
	}
	return out, nil
}

func applyText(_ context.Context, _ *Service, item courseModels.Item, f Fields, creating bool) ([]string, error) {
	t := item.(*courseModels.Text)
	body := strings.TrimSpace(f.Content)
	if body == "" {
		if creating {
			return nil, apperr.Invalid("content", "is required")
		}
		return nil, nil
	}
	t.Content = body
	return nil, nil
}

func applyVideo(ctx context.Context, s *Service, item courseModels.Item, f Fields, creating bool) ([]string, error) {
	v := item.(*courseModels.Video)
	raw := strings.TrimSpace(f.URL)
	if raw == "" {
		if creating {
			return nil, apperr.Invalid("url", "is required")
		}
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperr.Invalid("url", "must be an http(s) URL")
	}
	v.URL = u.String()
	embed, err := s.embeds.Resolve(ctx, v.URL)
	if err != nil {
		s.log.Warn("video embed lookup failed", "url", v.URL, "error", err)
		embed = ""
	}
	v.EmbedHTML = embed
	return nil, nil
}

func applyImage(ctx context.Context, s *Service, item courseModels.Item, f Fields, creating bool) ([]string, error) {
	img := item.(*courseModels.Image)
	obj, ok, err := s.upload(ctx, storage.CategoryImages, f.Upload, creating)
	if err != nil || !ok {
		return nil, err
	}
	if !strings.HasPrefix(obj.ContentType, "image/") {
		s.discard(ctx, obj.Key)
		return nil, apperr.Invalid("file", "must be an image")
	}
	old := img.File
	img.File, img.FileURL, img.Meta = obj.Key, obj.URL, blobMeta(obj)
	return nonEmpty(old), nil
}

func applyFile(ctx context.Context, s *Service, item courseModels.Item, f Fields, creating bool) ([]string, error) {
	file := item.(*courseModels.File)
	obj, ok, err := s.upload(ctx, storage.CategoryFiles, f.Upload, creating)
	if err != nil || !ok {
		return nil, err
	}
	old := file.File
	file.File, file.FileURL, file.Meta = obj.Key, obj.URL, blobMeta(obj)
	return nonEmpty(old), nil
}

func (s *Service) upload(ctx context.Context, category storage.Category, up *Upload, creating bool) (storage.Object, bool, error) {
	if up == nil || up.Body == nil {
		if creating {
			return storage.Object{}, false, apperr.Invalid("file", "is required")
		}
		return storage.Object{}, false, nil
	}
	obj, err := s.blobs.Save(ctx, category, up.Filename, up.Body)
	if err != nil {
		return storage.Object{}, false, fmt.Errorf("store upload: %w", err)
	}
	return obj, true, nil
}

func blobMeta(obj storage.Object) datatypes.JSONMap {
	return datatypes.JSONMap{
		"content_type":  obj.ContentType,
		"size":          obj.Size,
		"original_name": obj.OriginalName,
	}
}

func nonEmpty(keys ...string) []string {
	out := keys[:0]
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
