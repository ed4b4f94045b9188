package trainlog_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
	"github.com/Tomoya-Sonok/aikinote-sub000/internal/trainlog"
	"github.com/Tomoya-Sonok/aikinote-sub000/testutil"
	"github.com/stretchr/testify/require"
)

var (
	base    = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	errBoom = errors.New("boom")
)

// steppingClock returns a clock that advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	}
}

func setupService(t *testing.T, opts ...trainlog.Option) (*trainlog.Service, *db.DB) {
	t.Helper()
	store := testutil.SetupTestDB(t)
	opts = append([]trainlog.Option{trainlog.WithClock(steppingClock(base, time.Second))}, opts...)
	return trainlog.New(store, opts...), store
}

func createPage(t *testing.T, svc *trainlog.Service, userID, title string, tags trainlog.TagsByCategory) *trainlog.PageWithTags {
	t.Helper()
	res, err := svc.CreatePage(context.Background(), trainlog.PageInput{
		UserID:  userID,
		Title:   title,
		Content: "content of " + title,
	}, tags)
	require.NoError(t, err)
	return res
}

func tagNames(tags []*db.UserTag) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names
}

func pageTitles(pages []*trainlog.PageWithTags) []string {
	titles := make([]string, len(pages))
	for i, p := range pages {
		titles[i] = p.Page.Title
	}
	return titles
}

// faultyStore fails selected Store methods. Method names key the fail map.
type faultyStore struct {
	db.Store
	fail map[string]error
	// failPages makes SelectTagsForPages fail for lookups of these pages.
	failPages map[string]bool
}

func (f *faultyStore) err(method string) error {
	return f.fail[method]
}

func (f *faultyStore) WithTx(ctx context.Context, fn func(db.Store) error) error {
	return f.Store.WithTx(ctx, func(tx db.Store) error {
		return fn(&faultyStore{Store: tx, fail: f.fail, failPages: f.failPages})
	})
}

func (f *faultyStore) InsertPage(ctx context.Context, page *db.TrainingPage) error {
	if err := f.err("InsertPage"); err != nil {
		return err
	}
	return f.Store.InsertPage(ctx, page)
}

func (f *faultyStore) UpdatePage(ctx context.Context, patch db.PagePatch) (*db.TrainingPage, error) {
	if err := f.err("UpdatePage"); err != nil {
		return nil, err
	}
	return f.Store.UpdatePage(ctx, patch)
}

func (f *faultyStore) SelectPages(ctx context.Context, filter db.PageFilter) ([]*db.TrainingPage, error) {
	if err := f.err("SelectPages"); err != nil {
		return nil, err
	}
	return f.Store.SelectPages(ctx, filter)
}

func (f *faultyStore) FindTag(ctx context.Context, userID, name string, category db.Category) (*db.UserTag, error) {
	if err := f.err("FindTag"); err != nil {
		return nil, err
	}
	return f.Store.FindTag(ctx, userID, name, category)
}

func (f *faultyStore) InsertTag(ctx context.Context, tag *db.UserTag) (*db.UserTag, error) {
	if err := f.err("InsertTag"); err != nil {
		return nil, err
	}
	return f.Store.InsertTag(ctx, tag)
}

func (f *faultyStore) InsertPageTags(ctx context.Context, links []db.PageTag) error {
	if err := f.err("InsertPageTags"); err != nil {
		return err
	}
	return f.Store.InsertPageTags(ctx, links)
}

func (f *faultyStore) DeletePageTags(ctx context.Context, pageID string) error {
	if err := f.err("DeletePageTags"); err != nil {
		return err
	}
	return f.Store.DeletePageTags(ctx, pageID)
}

func (f *faultyStore) SelectTags(ctx context.Context, filter db.TagFilter) ([]*db.UserTag, error) {
	if err := f.err("SelectTags"); err != nil {
		return nil, err
	}
	return f.Store.SelectTags(ctx, filter)
}

func (f *faultyStore) SelectPageTags(ctx context.Context, filter db.PageTagFilter) ([]db.PageTag, error) {
	if err := f.err("SelectPageTags"); err != nil {
		return nil, err
	}
	return f.Store.SelectPageTags(ctx, filter)
}

func (f *faultyStore) SelectTagsForPages(ctx context.Context, pageIDs []string) ([]db.PageTagRow, error) {
	if len(pageIDs) > 1 {
		if err := f.err("SelectTagsForPages/batch"); err != nil {
			return nil, err
		}
	}
	for _, id := range pageIDs {
		if f.failPages[id] {
			return nil, errBoom
		}
	}
	return f.Store.SelectTagsForPages(ctx, pageIDs)
}

func setupStore(t *testing.T) *db.DB {
	t.Helper()
	return testutil.SetupTestDB(t)
}
