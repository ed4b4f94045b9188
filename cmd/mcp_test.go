package cmd

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/config"
)

func setupMCPTest(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = config.DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "test.db")
	cfg.User = "user-1"
	t.Cleanup(func() { cfg = prev })
}

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	return result.Content[0].(mcp.TextContent).Text
}

var pageIDPattern = regexp.MustCompile(`page (\S+) `)

func createTestPage(t *testing.T, args map[string]interface{}) string {
	t.Helper()
	result, err := handleCreatePage(context.Background(), makeReq(args))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	m := pageIDPattern.FindStringSubmatch(resultText(t, result))
	require.Len(t, m, 2)
	return m[1]
}

func TestHandleCreatePage(t *testing.T) {
	setupMCPTest(t)

	result, err := handleCreatePage(context.Background(), makeReq(map[string]interface{}{
		"title":   "Saturday keiko",
		"content": "Worked on ikkyo omote and ura",
		"tori":    "相半身",
		"waza":    "一教, 二教",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Recorded page")
	assert.Contains(t, resultText(t, result), "3 tags")
}

func TestHandleCreatePage_MissingTitle(t *testing.T) {
	setupMCPTest(t)

	result, err := handleCreatePage(context.Background(), makeReq(map[string]interface{}{
		"content": "some content",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleCreatePage_TooLong(t *testing.T) {
	setupMCPTest(t)

	long := make([]rune, 101)
	for i := range long {
		long[i] = 'a'
	}
	result, err := handleCreatePage(context.Background(), makeReq(map[string]interface{}{
		"title":   string(long),
		"content": "content",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "validation failed")
}

func TestHandleListPages(t *testing.T) {
	setupMCPTest(t)
	createTestPage(t, map[string]interface{}{"title": "kokyu ho", "content": "c", "tori": "立技", "waza": "呼吸法"})
	createTestPage(t, map[string]interface{}{"title": "ikkyo", "content": "c", "tori": "立技", "waza": "一教"})

	result, err := handleListPages(context.Background(), makeReq(map[string]interface{}{}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Found 2 page(s)")

	result, err = handleListPages(context.Background(), makeReq(map[string]interface{}{
		"tags": "立技,呼吸法",
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Found 1 page(s)")
	assert.Contains(t, text, "kokyu ho")
	assert.Contains(t, text, "tori: 立技 | waza: 呼吸法")
}

func TestHandleListPages_Filter(t *testing.T) {
	setupMCPTest(t)
	createTestPage(t, map[string]interface{}{"title": "kokyu ho", "content": "c", "tori": "立技", "waza": "呼吸法"})
	createTestPage(t, map[string]interface{}{"title": "suwari kokyu", "content": "c", "tori": "座技", "waza": "呼吸法"})

	result, err := handleListPages(context.Background(), makeReq(map[string]interface{}{
		"filter": "tag:呼吸法 AND title:suwari",
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Found 1 page(s)")
	assert.Contains(t, text, "suwari kokyu")

	result, err = handleListPages(context.Background(), makeReq(map[string]interface{}{
		"filter": "tag:a OR tag:b",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleListPages_NoResults(t *testing.T) {
	setupMCPTest(t)

	result, err := handleListPages(context.Background(), makeReq(map[string]interface{}{
		"tags": "nothing",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "No training pages found")
}

func TestHandleListPages_BadDate(t *testing.T) {
	setupMCPTest(t)

	result, err := handleListPages(context.Background(), makeReq(map[string]interface{}{
		"date": "yesterday",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleShowPage(t *testing.T) {
	setupMCPTest(t)
	id := createTestPage(t, map[string]interface{}{
		"title":   "Weapons",
		"content": "jo suburi",
		"comment": "slow down",
		"waza":    "杖",
	})

	result, err := handleShowPage(context.Background(), makeReq(map[string]interface{}{"id": id}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	text := resultText(t, result)
	assert.Contains(t, text, "Weapons")
	assert.Contains(t, text, "jo suburi")
	assert.Contains(t, text, "Comment: slow down")
	assert.Contains(t, text, "waza: 杖")

	// Another user sees nothing
	cfg.User = "user-2"
	result, err = handleShowPage(context.Background(), makeReq(map[string]interface{}{"id": id}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not found")
}

func TestHandleUpdatePage(t *testing.T) {
	setupMCPTest(t)
	id := createTestPage(t, map[string]interface{}{
		"title":   "Before",
		"content": "c",
		"tori":    "座技",
		"waza":    "一教",
	})

	// Only waza changes; title and tori are kept
	result, err := handleUpdatePage(context.Background(), makeReq(map[string]interface{}{
		"id":   id,
		"waza": "二教,三教",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.Contains(t, resultText(t, result), "3 tags")

	result, err = handleShowPage(context.Background(), makeReq(map[string]interface{}{"id": id}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Before")
	assert.Contains(t, text, "tori: 座技 | waza: ")
	assert.Contains(t, text, "二教")
	assert.Contains(t, text, "三教")
	assert.NotContains(t, text, "一教")

	result, err = handleUpdatePage(context.Background(), makeReq(map[string]interface{}{
		"id":    id,
		"title": "After",
		"tori":  "",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "2 tags")
}

func TestHandleUpdatePage_NotFound(t *testing.T) {
	setupMCPTest(t)

	result, err := handleUpdatePage(context.Background(), makeReq(map[string]interface{}{
		"id":    "missing",
		"title": "x",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleTags(t *testing.T) {
	setupMCPTest(t)

	result, err := handleTags(context.Background(), makeReq(map[string]interface{}{}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "No tags found")

	createTestPage(t, map[string]interface{}{"title": "t", "content": "c", "uke": "正面打ち", "waza": "四方投げ"})

	result, err = handleTags(context.Background(), makeReq(map[string]interface{}{}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "uke: 正面打ち")
	assert.Contains(t, text, "waza: 四方投げ")
}

func TestHandleCreateTag(t *testing.T) {
	setupMCPTest(t)

	result, err := handleCreateTag(context.Background(), makeReq(map[string]interface{}{
		"category": "waza",
		"name":     "小手返し",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Created tag waza/小手返し")

	result, err = handleCreateTag(context.Background(), makeReq(map[string]interface{}{
		"category": "waza",
		"name":     "小手返し",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "already exists")

	result, err = handleCreateTag(context.Background(), makeReq(map[string]interface{}{
		"category": "weapon",
		"name":     "x",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
