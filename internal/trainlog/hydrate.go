package trainlog

import (
	"context"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
	"go.uber.org/zap"
)

// Hydrate attaches tags to each page, one lookup per page. A page whose
// lookup fails is logged and returned with no tags; the listing as a whole
// does not fail.
func (s *Service) Hydrate(ctx context.Context, pages []*db.TrainingPage) []*PageWithTags {
	out := make([]*PageWithTags, 0, len(pages))
	for _, page := range pages {
		tags, err := s.pageTags(ctx, page.ID)
		if err != nil {
			s.logger.Warn("failed to load tags for training page",
				zap.String("page_id", page.ID),
				zap.Error(err),
			)
			tags = []*db.UserTag{}
		}
		out = append(out, &PageWithTags{Page: page, Tags: tags})
	}
	return out
}

// HydrateBatch attaches tags to all pages with a single lookup.
func (s *Service) HydrateBatch(ctx context.Context, pages []*db.TrainingPage) ([]*PageWithTags, error) {
	if len(pages) == 0 {
		return []*PageWithTags{}, nil
	}

	ids := make([]string, len(pages))
	for i, page := range pages {
		ids[i] = page.ID
	}
	rows, err := s.store.SelectTagsForPages(ctx, ids)
	if err != nil {
		return nil, storeError("hydrate pages", err)
	}

	byPage := make(map[string][]*db.UserTag, len(pages))
	for _, row := range rows {
		byPage[row.TrainingPageID] = append(byPage[row.TrainingPageID], row.Tag)
	}

	out := make([]*PageWithTags, len(pages))
	for i, page := range pages {
		tags := byPage[page.ID]
		if tags == nil {
			tags = []*db.UserTag{}
		}
		out[i] = &PageWithTags{Page: page, Tags: tags}
	}
	return out, nil
}

// hydrate prefers the batched lookup and falls back to per-page lookups so a
// transient failure still yields whatever can be loaded.
func (s *Service) hydrate(ctx context.Context, pages []*db.TrainingPage) []*PageWithTags {
	out, err := s.HydrateBatch(ctx, pages)
	if err == nil {
		return out
	}
	s.logger.Warn("batched tag lookup failed, loading tags per page",
		zap.Int("pages", len(pages)),
		zap.Error(err),
	)
	return s.Hydrate(ctx, pages)
}

func (s *Service) pageTags(ctx context.Context, pageID string) ([]*db.UserTag, error) {
	rows, err := s.store.SelectTagsForPages(ctx, []string{pageID})
	if err != nil {
		return nil, err
	}
	tags := make([]*db.UserTag, len(rows))
	for i, row := range rows {
		tags[i] = row.Tag
	}
	return tags, nil
}
