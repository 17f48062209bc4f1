package render

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parse(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div>" + fragment + "</div>"))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestMessageHTML_MarkdownLink(t *testing.T) {
	out := MessageHTML("Mira [esta guía](https://example.com/guide) hoy.")
	doc := parse(t, out)

	links := doc.Find("a")
	if links.Length() != 1 {
		t.Fatalf("expected 1 link, got %d in %s", links.Length(), out)
	}
	if href, _ := links.Attr("href"); href != "https://example.com/guide" {
		t.Fatalf("unexpected href %q", href)
	}
	if rel, _ := links.Attr("rel"); rel != "noopener noreferrer" {
		t.Fatalf("unexpected rel %q", rel)
	}
	if links.Text() != "esta guía" {
		t.Fatalf("unexpected link text %q", links.Text())
	}
}

func TestMessageHTML_YouTubeEmbed(t *testing.T) {
	out := MessageHTML("Prueba esto:\n[YouTube Video: Box Breathing](https://www.youtube.com/watch?v=tEmt1Znux58)")
	doc := parse(t, out)

	container := doc.Find("div.youtube-embed-container")
	if container.Length() != 1 {
		t.Fatalf("expected embed container in %s", out)
	}
	if src, _ := container.Find("img.youtube-thumbnail").Attr("src"); src != "https://img.youtube.com/vi/tEmt1Znux58/hqdefault.jpg" {
		t.Fatalf("unexpected thumbnail %q", src)
	}
	if title := container.Find(".youtube-title").Text(); title != "Box Breathing" {
		t.Fatalf("unexpected title %q", title)
	}
	if doc.Find("br").Length() != 1 {
		t.Fatalf("expected newline converted to <br>")
	}
}

func TestMessageHTML_EscapesMarkup(t *testing.T) {
	out := MessageHTML(`<script>alert("x")</script>`)
	doc := parse(t, out)
	if doc.Find("script").Length() != 0 {
		t.Fatalf("expected script to be escaped, got %s", out)
	}
	if !strings.Contains(doc.Text(), `alert("x")`) {
		t.Fatalf("expected text preserved, got %q", doc.Text())
	}
}

func TestMessageHTML_IgnoresNonHTTPLinks(t *testing.T) {
	out := MessageHTML("[click](javascript:alert(1))")
	if strings.Contains(out, "<a") {
		t.Fatalf("expected no anchor for javascript url, got %s", out)
	}
}
