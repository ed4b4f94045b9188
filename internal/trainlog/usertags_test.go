package trainlog_test

import (
	"context"
	"testing"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
	"github.com/Tomoya-Sonok/aikinote-sub000/internal/trainlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserTags_Empty(t *testing.T) {
	svc, _ := setupService(t)

	tags, err := svc.GetUserTags(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}

func TestGetUserTags_Ordering(t *testing.T) {
	svc, _ := setupService(t)

	createPage(t, svc, "user-1", "p", trainlog.TagsByCategory{
		Waza: []string{"b", "a"},
		Uke:  []string{"z"},
		Tori: []string{"y", "c"},
	})

	tags, err := svc.GetUserTags(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "y", "z", "a", "b"}, tagNames(tags))
}

func TestCheckDuplicateTag(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	tag, err := svc.CheckDuplicateTag(ctx, "user-1", "立技", db.CategoryActing)
	require.NoError(t, err)
	assert.Nil(t, tag)

	created, err := svc.CreateUserTag(ctx, "user-1", "立技", db.CategoryActing)
	require.NoError(t, err)

	tag, err = svc.CheckDuplicateTag(ctx, "user-1", " 立技 ", db.CategoryActing)
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.Equal(t, created.ID, tag.ID)

	tag, err = svc.CheckDuplicateTag(ctx, "user-1", "立技", db.CategoryTechnique)
	require.NoError(t, err)
	assert.Nil(t, tag)
}

func TestCreateUserTag_Conflict(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateUserTag(ctx, "user-1", "正面打ち", db.CategoryReceiving)
	require.NoError(t, err)

	_, err = svc.CreateUserTag(ctx, "user-1", "正面打ち", db.CategoryReceiving)
	assert.ErrorIs(t, err, trainlog.ErrConflict)

	_, err = svc.CreateUserTag(ctx, "user-2", "正面打ち", db.CategoryReceiving)
	assert.NoError(t, err)
}

func TestCreateUserTag_ReusedByPages(t *testing.T) {
	svc, _ := setupService(t)

	tag, err := svc.CreateUserTag(context.Background(), "user-1", "四方投げ", db.CategoryTechnique)
	require.NoError(t, err)

	page := createPage(t, svc, "user-1", "p", trainlog.TagsByCategory{Waza: []string{"四方投げ"}})
	assert.Equal(t, tag.ID, page.Tags[0].ID)
}

func TestCreateUserTag_Validation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateUserTag(ctx, "user-1", "x", "weapon")
	assert.ErrorIs(t, err, trainlog.ErrValidation)

	_, err = svc.CreateUserTag(ctx, "user-1", "  ", db.CategoryActing)
	assert.ErrorIs(t, err, trainlog.ErrValidation)

	_, err = svc.CreateUserTag(ctx, "", "x", db.CategoryActing)
	assert.ErrorIs(t, err, trainlog.ErrValidation)
}
