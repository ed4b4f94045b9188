package trainlog_test

import (
	"context"
	"testing"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
	"github.com/Tomoya-Sonok/aikinote-sub000/internal/trainlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagsByCategoryPairs(t *testing.T) {
	tags := trainlog.TagsByCategory{
		Waza: []string{"四方投げ"},
		Tori: []string{" 立技 ", ""},
		Uke:  []string{"正面打ち", "正面打ち"},
	}

	assert.Equal(t, []trainlog.TagPair{
		{Name: "立技", Category: db.CategoryActing},
		{Name: "正面打ち", Category: db.CategoryReceiving},
		{Name: "正面打ち", Category: db.CategoryReceiving},
		{Name: "四方投げ", Category: db.CategoryTechnique},
	}, tags.Pairs())
}

func TestResolveTags_ReusesExisting(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	pairs := []trainlog.TagPair{{Name: "立技", Category: db.CategoryActing}}

	first, err := svc.ResolveTags(ctx, "user-1", pairs)
	require.NoError(t, err)
	second, err := svc.ResolveTags(ctx, "user-1", pairs)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)

	tags, err := store.SelectTags(ctx, db.TagFilter{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestResolveTags_InputOrderAndDuplicates(t *testing.T) {
	svc, _ := setupService(t)

	tags, err := svc.ResolveTags(context.Background(), "user-1", []trainlog.TagPair{
		{Name: "b", Category: db.CategoryTechnique},
		{Name: "a", Category: db.CategoryActing},
		{Name: "b", Category: db.CategoryTechnique},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "b"}, tagNames(tags))
	assert.Equal(t, tags[0].ID, tags[2].ID)
	assert.NotEqual(t, tags[0].ID, tags[1].ID)
}

func TestResolveTags_SameNameDifferentCategory(t *testing.T) {
	svc, _ := setupService(t)

	tags, err := svc.ResolveTags(context.Background(), "user-1", []trainlog.TagPair{
		{Name: "x", Category: db.CategoryActing},
		{Name: "x", Category: db.CategoryReceiving},
	})
	require.NoError(t, err)
	assert.NotEqual(t, tags[0].ID, tags[1].ID)
}

func TestResolveTags_ScopedToUser(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	pairs := []trainlog.TagPair{{Name: "x", Category: db.CategoryActing}}

	mine, err := svc.ResolveTags(ctx, "user-1", pairs)
	require.NoError(t, err)
	theirs, err := svc.ResolveTags(ctx, "user-2", pairs)
	require.NoError(t, err)

	assert.NotEqual(t, mine[0].ID, theirs[0].ID)
	assert.Equal(t, "user-2", theirs[0].UserID)
}

func TestResolveTags_InvalidCategory(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.ResolveTags(context.Background(), "user-1", []trainlog.TagPair{{Name: "x", Category: "weapon"}})
	assert.ErrorIs(t, err, trainlog.ErrValidation)
}

func TestResolveTags_StoreFailureCarriesPair(t *testing.T) {
	for _, method := range []string{"FindTag", "InsertTag"} {
		t.Run(method, func(t *testing.T) {
			store := &faultyStore{Store: setupStore(t), fail: map[string]error{method: errBoom}}
			svc := trainlog.New(store)

			_, err := svc.ResolveTags(context.Background(), "user-1", []trainlog.TagPair{
				{Name: "x", Category: db.CategoryTechnique},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, trainlog.ErrTagResolution)
			assert.ErrorIs(t, err, errBoom)

			var engineErr *trainlog.Error
			require.ErrorAs(t, err, &engineErr)
			require.NotNil(t, engineErr.Pair)
			assert.Equal(t, trainlog.TagPair{Name: "x", Category: db.CategoryTechnique}, *engineErr.Pair)
		})
	}
}

func TestLinkTags(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	page := createPage(t, svc, "user-1", "p", trainlog.TagsByCategory{})
	tags, err := svc.ResolveTags(ctx, "user-1", []trainlog.TagPair{
		{Name: "a", Category: db.CategoryActing},
		{Name: "b", Category: db.CategoryReceiving},
	})
	require.NoError(t, err)

	require.NoError(t, svc.LinkTags(ctx, page.Page.ID, []string{tags[0].ID, tags[1].ID, tags[0].ID}))

	links, err := store.SelectPageTags(ctx, db.PageTagFilter{PageIDs: []string{page.Page.ID}})
	require.NoError(t, err)
	assert.Len(t, links, 2)
}

func TestLinkTags_EmptyIsNoop(t *testing.T) {
	store := &faultyStore{Store: setupStore(t), fail: map[string]error{"InsertPageTags": errBoom}}
	svc := trainlog.New(store)

	assert.NoError(t, svc.LinkTags(context.Background(), "page", nil))
}

func TestLinkTags_Failure(t *testing.T) {
	store := &faultyStore{Store: setupStore(t), fail: map[string]error{"InsertPageTags": errBoom}}
	svc := trainlog.New(store)

	err := svc.LinkTags(context.Background(), "page", []string{"tag"})
	assert.ErrorIs(t, err, trainlog.ErrAssociationWrite)
	assert.True(t, trainlog.KindOf(err).Partial())
}
