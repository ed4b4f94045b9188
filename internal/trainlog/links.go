package trainlog

import (
	"context"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
)

// LinkTags attaches the tags to the page with one batched insert. Repeated
// ids produce a single association row. An empty set is a no-op.
func (s *Service) LinkTags(ctx context.Context, pageID string, tagIDs []string) error {
	return linkTags(ctx, s.store, pageID, tagIDs)
}

func linkTags(ctx context.Context, store db.Store, pageID string, tagIDs []string) error {
	ids := distinct(tagIDs)
	if len(ids) == 0 {
		return nil
	}

	links := make([]db.PageTag, len(ids))
	for i, id := range ids {
		links[i] = db.PageTag{TrainingPageID: pageID, UserTagID: id}
	}
	if err := store.InsertPageTags(ctx, links); err != nil {
		return associationWriteError("link tags", err)
	}
	return nil
}

// distinct returns values without repeats, keeping first occurrences in order.
func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
