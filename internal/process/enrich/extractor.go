package enrich

import (
	"bytes"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Article is the readable core of a fetched news page.
type Article struct {
	Title       string
	Description string
	Content     string
	Author      string
	PublishedAt time.Time
	ImageURL    string
	WordCount   int
}

// ExtractArticle pulls the readable article body out of raw HTML. When the
// readability pass fails the meta tags still yield a title and description,
// which is often enough context for a one-line trend mention.
func ExtractArticle(htmlBytes []byte, rawURL string, maxLen int) *Article {
	u, _ := url.Parse(rawURL)
	meta := extractMetaTags(htmlBytes)

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), u)
	if err != nil {
		return &Article{
			Title:       coalesce(meta.OGTitle, meta.Title),
			Description: coalesce(meta.OGDescription, meta.Description),
		}
	}

	return &Article{
		Title:       coalesce(article.Title, meta.OGTitle, meta.Title),
		Description: coalesce(meta.OGDescription, meta.Description),
		Content:     truncateRunes(strings.TrimSpace(article.TextContent), maxLen),
		Author:      coalesce(article.Byline, meta.Author),
		PublishedAt: parseDate(meta.PublishedTime),
		ImageURL:    meta.OGImage,
		WordCount:   len(strings.Fields(article.TextContent)),
	}
}

type metaTags struct {
	Title         string
	Description   string
	OGTitle       string
	OGDescription string
	OGImage       string
	Author        string
	PublishedTime string
}

func extractMetaTags(htmlBytes []byte) metaTags {
	var meta metaTags

	doc, err := html.Parse(bytes.NewReader(htmlBytes))
	if err != nil {
		return meta
	}

	var traverse func(*html.Node)

	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					meta.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				name, content := metaAttrs(n)
				switch strings.ToLower(name) {
				case "description":
					meta.Description = content
				case "author":
					meta.Author = content
				case "og:title":
					meta.OGTitle = content
				case "og:description":
					meta.OGDescription = content
				case "og:image":
					meta.OGImage = content
				case "article:published_time":
					meta.PublishedTime = content
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}

	traverse(doc)

	return meta
}

func metaAttrs(n *html.Node) (string, string) {
	var name, content string

	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "name", "property":
			name = attr.Val
		case "content":
			content = attr.Val
		}
	}

	return name, content
}

func coalesce(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}

	return ""
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)

	return string(runes[:max]) + "..."
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}
	}

	return t
}
