package blog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mo-Ibra/next-fullstack-jobs/shared/logger"
)

func writePost(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestBlog(t *testing.T) (*Reader, string) {
	t.Helper()
	dir := t.TempDir()

	writePost(t, dir, "go-interviews.md", `---
title: "Preparing for Go Interviews"
author: Jane Doe
date: 2024-03-10
tags: [go, career]
coverImage: /images/go.png
excerpt: Practical advice.
---

# Preparing

Know your **channels**.
`)

	writePost(t, dir, "remote-work.md", `---
title: Remote Work Tips
author: John Roe
date: "2024-05-01"
---

Working remotely takes discipline and a good desk.

Second paragraph.
`)

	writePost(t, dir, "first-post.md", `---
title: Hello
date: 2023-12-24
---
Welcome.
`)

	writePost(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "drafts"), 0o755))

	return NewReader(dir, logger.NewNop().Logger), dir
}

func TestReader_List(t *testing.T) {
	r, _ := newTestBlog(t)

	metas, err := r.List()
	require.NoError(t, err)
	require.Len(t, metas, 3)

	assert.Equal(t, "remote-work", metas[0].Slug)
	assert.Equal(t, "go-interviews", metas[1].Slug)
	assert.Equal(t, "first-post", metas[2].Slug)

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), metas[1].Date)
	assert.Equal(t, []string{"go", "career"}, metas[1].Tags)
	assert.Equal(t, "/images/go.png", metas[1].CoverImage)
	assert.Equal(t, "Practical advice.", metas[1].Excerpt)
}

func TestReader_Latest(t *testing.T) {
	r, _ := newTestBlog(t)

	metas, err := r.Latest(2)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "remote-work", metas[0].Slug)

	all, err := r.Latest(10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestReader_Get(t *testing.T) {
	r, _ := newTestBlog(t)

	post, err := r.Get("go-interviews")
	require.NoError(t, err)

	assert.Equal(t, "Preparing for Go Interviews", post.Title)
	assert.Equal(t, "Jane Doe", post.Author)
	assert.Contains(t, post.Content, "Know your **channels**.")
	assert.Contains(t, string(post.HTML), "<strong>channels</strong>")
	assert.Contains(t, string(post.HTML), "<h1")
}

func TestReader_ExcerptFallback(t *testing.T) {
	r, dir := newTestBlog(t)

	post, err := r.Get("remote-work")
	require.NoError(t, err)
	assert.Equal(t, "Working remotely takes discipline and a good desk.", post.Excerpt)

	long := strings.Repeat("word ", 60)
	writePost(t, dir, "long.md", "---\ntitle: Long\n---\n\n"+long+"\n")

	post, err = r.Get("long")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(post.Excerpt, "…"))
	assert.LessOrEqual(t, len([]rune(post.Excerpt)), excerptMaxRunes+1)
}

func TestReader_GetNotFound(t *testing.T) {
	r, _ := newTestBlog(t)

	for _, slug := range []string{"missing", "", "../secrets", `..\secrets`, ".hidden", "drafts/x"} {
		_, err := r.Get(slug)
		assert.ErrorIs(t, err, ErrPostNotFound, slug)
	}
}

func TestReader_RawHTMLIsEscaped(t *testing.T) {
	r, dir := newTestBlog(t)
	writePost(t, dir, "xss.md", "---\ntitle: X\n---\n\n<script>alert(1)</script>\n")

	post, err := r.Get("xss")
	require.NoError(t, err)
	assert.NotContains(t, string(post.HTML), "<script>")
}

func TestReader_NoFrontMatter(t *testing.T) {
	r, dir := newTestBlog(t)
	writePost(t, dir, "plain.md", "Just text.\n")

	post, err := r.Get("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", post.Title)
	assert.True(t, post.Date.IsZero())
	assert.Equal(t, "Just text.", post.Excerpt)
}

func TestReader_BrokenFrontMatter(t *testing.T) {
	r, dir := newTestBlog(t)
	writePost(t, dir, "broken.md", "---\ntitle: [unclosed\n")

	_, err := r.Get("broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPostNotFound)
}

func TestReader_ListSkipsBrokenPosts(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unterminated front matter", content: "---\ntitle: Bad\n"},
		{name: "invalid yaml", content: "---\ntitle: [unclosed\n---\nBody.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writePost(t, dir, "good.md", "---\ntitle: Good\ndate: 2024-01-02\n---\nFine.\n")
			writePost(t, dir, "bad.md", tt.content)
			r := NewReader(dir, logger.NewNop().Logger)

			metas, err := r.List()
			require.NoError(t, err)
			require.Len(t, metas, 1)
			assert.Equal(t, "good", metas[0].Slug)

			latest, err := r.Latest(5)
			require.NoError(t, err)
			assert.Len(t, latest, 1)
		})
	}
}

func TestReader_MissingDir(t *testing.T) {
	r := NewReader(filepath.Join(t.TempDir(), "nope"), logger.NewNop().Logger)

	metas, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, metas)
}
