package preview

import (
	"strings"
	"testing"

	"github.com/ezppt/deckview/internal/backend"
)

func TestOutlineMarkdown(t *testing.T) {
	o := &backend.Outline{
		Topic:    "Fallback topic",
		Audience: "students",
		Style:    "a|b",
		PageNum:  4,
		OutlineJSON: backend.OutlineBody{
			Chapters: []backend.Chapter{{
				ChapterID:    2,
				ChapterTopic: "Basics",
				Slides:       []backend.OutlineSlide{{SlideID: "2-1", SlideTopic: "Intro", SlideContent: []string{"first"}}},
			}},
		},
	}
	got := OutlineMarkdown(o)

	for _, want := range []string{"# Fallback topic\n", "| students | a\\|b | 4 |", "## 2. Basics", "### 2-1 Intro", "- first"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in:\n%s", want, got)
		}
	}
}

func TestSourceMarkdownFence(t *testing.T) {
	got := SourceMarkdown("a.html", "<pre>```code```</pre>")
	if !strings.Contains(got, "````html\n") {
		t.Errorf("expected a longer fence, got:\n%s", got)
	}
}

func TestRenderMarkdownOmitsRawHTML(t *testing.T) {
	got, err := RenderMarkdown("hello <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw html passed through: %s", got)
	}
}

func TestRenderPlaceholderEscapes(t *testing.T) {
	got := renderPlaceholder("slide-error", placeholderData{File: "<b>x</b>.html", Message: "boom"})
	if strings.Contains(got, "<b>x</b>") {
		t.Errorf("file name not escaped: %s", got)
	}
	if !strings.Contains(got, "boom") {
		t.Errorf("expected message in placeholder: %s", got)
	}
}
