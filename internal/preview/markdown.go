package preview

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/ezppt/deckview/internal/backend"
)

// newMarkdown returns the renderer used for outlines and source views. Raw
// HTML is not passed through: outline text comes from user input.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
}

var markdown = newMarkdown()

// RenderMarkdown converts Markdown to an HTML fragment.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// OutlineMarkdown formats a project outline as Markdown: title, subtitle
// and audience, then one section per chapter with its slides and their
// bullet points.
func OutlineMarkdown(o *backend.Outline) string {
	var b strings.Builder
	body := o.OutlineJSON

	title := body.MainTitle
	if title == "" {
		title = o.Topic
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if body.Subtitle != "" {
		fmt.Fprintf(&b, "*%s*\n\n", body.Subtitle)
	}

	audience := body.TargetAudience
	if audience == "" {
		audience = o.Audience
	}
	if audience != "" || o.Style != "" {
		b.WriteString("| Audience | Style | Pages |\n|---|---|---|\n")
		fmt.Fprintf(&b, "| %s | %s | %d |\n\n", cell(audience), cell(o.Style), o.PageNum)
	}

	for _, ch := range body.Chapters {
		fmt.Fprintf(&b, "## %d. %s\n\n", ch.ChapterID, ch.ChapterTopic)
		for _, s := range ch.Slides {
			fmt.Fprintf(&b, "### %s %s\n\n", s.SlideID, s.SlideTopic)
			for _, point := range s.SlideContent {
				fmt.Fprintf(&b, "- %s\n", point)
			}
			if len(s.SlideContent) > 0 {
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// SourceMarkdown wraps slide markup in a fenced html code block for
// highlighted display.
func SourceMarkdown(file, markup string) string {
	fence := "```"
	for strings.Contains(markup, fence) {
		fence += "`"
	}
	return fmt.Sprintf("## %s\n\n%shtml\n%s\n%s\n", file, fence, markup, fence)
}
