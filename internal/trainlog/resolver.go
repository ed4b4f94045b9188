package trainlog

import (
	"context"
	"strings"
	"time"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
)

// TagsByCategory holds the tag names of a page, one list per facet.
type TagsByCategory struct {
	Tori []string `json:"tori"`
	Uke  []string `json:"uke"`
	Waza []string `json:"waza"`
}

// Pairs flattens the lists acting first, then receiving, then technique.
// Blank names are dropped and names are trimmed; duplicates are kept.
func (t TagsByCategory) Pairs() []TagPair {
	var pairs []TagPair
	add := func(names []string, category Category) {
		for _, name := range names {
			if name = strings.TrimSpace(name); name != "" {
				pairs = append(pairs, TagPair{Name: name, Category: category})
			}
		}
	}
	add(t.Tori, db.CategoryActing)
	add(t.Uke, db.CategoryReceiving)
	add(t.Waza, db.CategoryTechnique)
	return pairs
}

// ResolveTags returns one tag per pair, in input order, reusing the user's
// existing tag for a (name, category) and creating it otherwise. Repeated
// pairs resolve to the same tag.
func (s *Service) ResolveTags(ctx context.Context, userID string, pairs []TagPair) ([]*db.UserTag, error) {
	return resolveTags(ctx, s.store, userID, pairs, s.clock)
}

func resolveTags(ctx context.Context, store db.Store, userID string, pairs []TagPair, now func() time.Time) ([]*db.UserTag, error) {
	const op = "resolve tags"

	tags := make([]*db.UserTag, 0, len(pairs))
	for _, pair := range pairs {
		if !pair.Category.Valid() {
			return nil, validationError(op, "unknown tag category "+string(pair.Category), map[string]string{pair.Name: "has an unknown category"})
		}

		tag, err := store.FindTag(ctx, userID, pair.Name, pair.Category)
		if err != nil {
			return nil, tagResolutionError(op, pair, err)
		}
		if tag == nil {
			tag, err = store.InsertTag(ctx, &db.UserTag{
				UserID:    userID,
				Name:      pair.Name,
				Category:  pair.Category,
				CreatedAt: now(),
			})
			if err != nil {
				return nil, tagResolutionError(op, pair, err)
			}
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
