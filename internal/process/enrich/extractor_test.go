package enrich

import (
	"strings"
	"testing"
	"time"
)

const fixtureHTML = `<!DOCTYPE html>
<html>
<head>
<title>Eclipse Dazzles Millions - Example News</title>
<meta name="description" content="Millions watched the total solar eclipse sweep across the continent.">
<meta name="author" content="Jane Example">
<meta property="og:title" content="Eclipse Dazzles Millions">
<meta property="og:description" content="A total solar eclipse crossed North America on Monday.">
<meta property="og:image" content="https://example.com/eclipse.jpg">
<meta property="article:published_time" content="2024-04-08T19:00:00Z">
</head>
<body>
<article>
<h1>Eclipse Dazzles Millions</h1>
<p>Millions of people gathered along the path of totality to watch the solar
eclipse on Monday afternoon. Schools closed early and traffic slowed to a
crawl in several states as the moon slid across the face of the sun.</p>
<p>Astronomers called the event the most watched eclipse in decades, with
viewing parties stretching from Texas to Maine.</p>
</article>
</body>
</html>`

func TestExtractMetaTags(t *testing.T) {
	meta := extractMetaTags([]byte(fixtureHTML))

	if meta.Title != "Eclipse Dazzles Millions - Example News" {
		t.Errorf("Title = %q", meta.Title)
	}

	if meta.OGTitle != "Eclipse Dazzles Millions" {
		t.Errorf("OGTitle = %q", meta.OGTitle)
	}

	if meta.OGDescription != "A total solar eclipse crossed North America on Monday." {
		t.Errorf("OGDescription = %q", meta.OGDescription)
	}

	if meta.Author != "Jane Example" {
		t.Errorf("Author = %q", meta.Author)
	}

	if meta.OGImage != "https://example.com/eclipse.jpg" {
		t.Errorf("OGImage = %q", meta.OGImage)
	}

	if meta.PublishedTime != "2024-04-08T19:00:00Z" {
		t.Errorf("PublishedTime = %q", meta.PublishedTime)
	}
}

func TestExtractArticle(t *testing.T) {
	article := ExtractArticle([]byte(fixtureHTML), "https://example.com/news/eclipse", 5000)

	if !strings.Contains(article.Title, "Eclipse Dazzles Millions") {
		t.Errorf("Title = %q", article.Title)
	}

	// Whether readability or the meta fallback won, some eclipse context
	// must survive.
	combined := article.Content + article.Description
	if !strings.Contains(combined, "eclipse") {
		t.Errorf("no usable context extracted: content=%q description=%q", article.Content, article.Description)
	}
}

func TestExtractArticleBadHTML(t *testing.T) {
	article := ExtractArticle([]byte("not really html"), "https://example.com/x", 100)
	if article == nil {
		t.Fatal("ExtractArticle returned nil")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short stays", "hello", 10, "hello"},
		{"exact stays", "hello", 5, "hello"},
		{"long truncated", "hello world", 5, "hello..."},
		{"multibyte safe", "héllo wörld", 5, "héllo..."},
		{"zero max disables", "hello world", 0, "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateRunes(tt.in, tt.max); got != tt.want {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got := parseDate("2024-04-08T19:00:00Z")
	want := time.Date(2024, 4, 8, 19, 0, 0, 0, time.UTC)

	if !got.Equal(want) {
		t.Errorf("parseDate() = %v, want %v", got, want)
	}

	if !parseDate("").IsZero() {
		t.Error("parseDate(\"\") should be zero")
	}

	if !parseDate("not a date").IsZero() {
		t.Error("parseDate(garbage) should be zero")
	}
}

func TestCoalesce(t *testing.T) {
	if got := coalesce("", "second", "third"); got != "second" {
		t.Errorf("coalesce() = %q, want second", got)
	}

	if got := coalesce(); got != "" {
		t.Errorf("coalesce() = %q, want empty", got)
	}
}
