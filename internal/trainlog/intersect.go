package trainlog

import (
	"context"
	"sort"
	"strings"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
)

// IntersectPageIDs returns, in ascending order, the pages that are linked to
// every tag in tagIDs. Links to other tags are ignored and a repeated link
// counts once.
//
// This is the in-memory form of
//
//	SELECT training_page_id FROM training_page_tags WHERE user_tag_id IN (...)
//	GROUP BY training_page_id HAVING COUNT(DISTINCT user_tag_id) = N
func IntersectPageIDs(links []db.PageTag, tagIDs []string) []string {
	want := make(map[string]bool, len(tagIDs))
	for _, id := range tagIDs {
		want[id] = true
	}
	if len(want) == 0 {
		return []string{}
	}

	matched := make(map[string]map[string]bool)
	for _, link := range links {
		if !want[link.UserTagID] {
			continue
		}
		tags := matched[link.TrainingPageID]
		if tags == nil {
			tags = make(map[string]bool, len(want))
			matched[link.TrainingPageID] = tags
		}
		tags[link.UserTagID] = true
	}

	ids := []string{}
	for pageID, tags := range matched {
		if len(tags) == len(want) {
			ids = append(ids, pageID)
		}
	}
	sort.Strings(ids)
	return ids
}

// FindPageIDsWithAllTags returns the ids of the user's pages linked to every
// tag named in names (AND, not OR). Names are trimmed and de-duplicated.
// A name held by tags in several categories requires a link to each of them.
//
// A nil result means names was empty and no filter applies. A non-nil empty
// result means the filter matched nothing, which includes the case where one
// of the names is not a tag of this user.
func (s *Service) FindPageIDsWithAllTags(ctx context.Context, userID string, names []string) ([]string, error) {
	const op = "find pages with tags"

	names = normalizeNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	tags, err := s.store.SelectTags(ctx, db.TagFilter{UserID: userID, Names: names})
	if err != nil {
		return nil, storeError(op, err)
	}

	tagIDs := make([]string, 0, len(tags))
	found := make(map[string]bool, len(names))
	for _, tag := range tags {
		tagIDs = append(tagIDs, tag.ID)
		found[tag.Name] = true
	}
	// A missing name must not be masked by another name's extra tag.
	if len(found) < len(names) {
		return []string{}, nil
	}

	links, err := s.store.SelectPageTags(ctx, db.PageTagFilter{TagIDs: tagIDs})
	if err != nil {
		return nil, storeError(op, err)
	}

	return IntersectPageIDs(links, tagIDs), nil
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return distinct(out)
}
