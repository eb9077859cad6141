package blog

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

var ErrPostNotFound = errors.New("post not found")

const (
	postExt          = ".md"
	excerptMaxRunes  = 160
	frontMatterDelim = "---"
)

// PostMeta is what listings need
type PostMeta struct {
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	Date       time.Time `json:"date"`
	Tags       []string  `json:"tags"`
	CoverImage string    `json:"coverImage,omitempty"`
	Excerpt    string    `json:"excerpt"`
}

// Post is a full article
type Post struct {
	PostMeta
	Content string        `json:"content"`
	HTML    template.HTML `json:"html"`
}

type frontMatter struct {
	Title      string   `yaml:"title"`
	Author     string   `yaml:"author"`
	Date       string   `yaml:"date"`
	Tags       []string `yaml:"tags"`
	CoverImage string   `yaml:"coverImage"`
	Excerpt    string   `yaml:"excerpt"`
}

// Reader loads posts from a directory on every call, so edits show up without a restart
type Reader struct {
	dir    string
	md     goldmark.Markdown
	logger *slog.Logger
}

func NewReader(dir string, logger *slog.Logger) *Reader {
	return &Reader{
		dir:    dir,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger: logger,
	}
}

// List returns every post's metadata, newest first. A missing directory is an empty blog.
// A post that fails to load is logged and left out.
func (r *Reader) List() ([]PostMeta, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []PostMeta{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blog dir: %w", err)
	}

	metas := []PostMeta{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != postExt {
			continue
		}
		post, err := r.Get(strings.TrimSuffix(e.Name(), postExt))
		if err != nil {
			r.logger.Warn("Skipping blog post",
				slog.String("file", e.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}
		metas = append(metas, post.PostMeta)
	}

	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].Date.After(metas[j].Date)
	})
	return metas, nil
}

// Latest returns at most n posts, newest first
func (r *Reader) Latest(n int) ([]PostMeta, error) {
	metas, err := r.List()
	if err != nil {
		return nil, err
	}
	if len(metas) > n {
		metas = metas[:n]
	}
	return metas, nil
}

// Get loads one post by slug
func (r *Reader) Get(slug string) (*Post, error) {
	if slug == "" || strings.ContainsAny(slug, `/\`) || strings.HasPrefix(slug, ".") {
		return nil, ErrPostNotFound
	}

	raw, err := os.ReadFile(filepath.Join(r.dir, slug+postExt))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read post %q: %w", slug, err)
	}

	fm, body, err := splitFrontMatter(raw)
	if err != nil {
		return nil, fmt.Errorf("post %q: %w", slug, err)
	}

	var html bytes.Buffer
	if err := r.md.Convert(body, &html); err != nil {
		return nil, fmt.Errorf("failed to render post %q: %w", slug, err)
	}

	excerpt := strings.TrimSpace(fm.Excerpt)
	if excerpt == "" {
		excerpt = firstParagraph(html.String())
	}

	title := fm.Title
	if title == "" {
		title = slug
	}

	return &Post{
		PostMeta: PostMeta{
			Slug:       slug,
			Title:      title,
			Author:     fm.Author,
			Date:       parseDate(fm.Date),
			Tags:       fm.Tags,
			CoverImage: fm.CoverImage,
			Excerpt:    excerpt,
		},
		Content: string(body),
		// goldmark escapes raw HTML unless WithUnsafe is set
		HTML: template.HTML(html.String()),
	}, nil
}

func splitFrontMatter(raw []byte) (frontMatter, []byte, error) {
	var fm frontMatter

	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	if !strings.HasPrefix(text, frontMatterDelim+"\n") {
		return fm, []byte(text), nil
	}

	rest := text[len(frontMatterDelim)+1:]
	end := strings.Index(rest, "\n"+frontMatterDelim)
	if end < 0 {
		return fm, nil, fmt.Errorf("unterminated front matter")
	}

	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return fm, nil, fmt.Errorf("invalid front matter: %w", err)
	}

	body := rest[end+len(frontMatterDelim)+1:]
	body = strings.TrimPrefix(body, "\n")
	return fm, []byte(body), nil
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// firstParagraph returns the text of the first <p>, cut to excerptMaxRunes
func firstParagraph(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	text := strings.Join(strings.Fields(doc.Find("p").First().Text()), " ")
	if utf8.RuneCountInString(text) <= excerptMaxRunes {
		return text
	}

	runes := []rune(text)
	return strings.TrimSpace(string(runes[:excerptMaxRunes])) + "…"
}
