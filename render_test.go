package mdpreview_test

// Notes:
// - These tests exercise the full pipeline: normalization, frontmatter,
//   alert expansion, goldmark rendering, and HTML post-processing.
// - Assertions use substring checks because goldmark controls attribute
//   order on some elements and the exact markup around them.

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mdpreview "github.com/mdpreview/go-mdpreview"
)

// ---------------------------------------------------------------------------
// Source-line mapping
// ---------------------------------------------------------------------------

func TestRenderParagraphLines(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("First.\n\nSecond.\n\nThird.\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		`<p data-source-line="1">First.</p>`,
		`<p data-source-line="3">Second.</p>`,
		`<p data-source-line="5">Third.</p>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestRenderThematicBreakLine(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("Above.\n\n---\n\nBelow.\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(got, `<hr data-source-line="3" />`) {
		t.Errorf("missing annotated hr in %q", got)
	}
}

func TestRenderFencedCodeLines(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("Intro.\n\n```go\nfmt.Println(\"hi\")\n```\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(got, `<pre data-source-line="3" data-source-line-start="4">`) {
		t.Errorf("missing annotated pre in %q", got)
	}
	if !strings.Contains(got, `class="language-go"`) {
		t.Errorf("missing language class in %q", got)
	}
}

func TestRenderCRLFInput(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("First.\r\n\r\nSecond.\r\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(got, `<p data-source-line="3">Second.</p>`) {
		t.Errorf("CRLF input mis-mapped: %q", got)
	}
}

// ---------------------------------------------------------------------------
// Frontmatter
// ---------------------------------------------------------------------------

func TestRenderFrontmatter(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("---\ntitle: Test\n---\n\n# Hello\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(got, `<details class="frontmatter">`) {
		t.Errorf("missing frontmatter table in %q", got)
	}
	if !strings.Contains(got, "title") || !strings.Contains(got, "Test") {
		t.Errorf("frontmatter fields missing in %q", got)
	}
	// The heading sits on line 5 of the original document, after the
	// three delimiter lines and the blank line.
	if !strings.Contains(got, `data-source-line="5"`) {
		t.Errorf("heading line not shifted past frontmatter: %q", got)
	}
	if !strings.Contains(got, `id="hello"`) {
		t.Errorf("heading anchor missing in %q", got)
	}
}

func TestRenderInvalidFrontmatterPassthrough(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("---\n: bad: [yaml\n---\n\nBody.\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if strings.Contains(got, `<details class="frontmatter">`) {
		t.Errorf("invalid frontmatter produced a table: %q", got)
	}
	if !strings.Contains(got, "Body.") {
		t.Errorf("content lost: %q", got)
	}
}

// ---------------------------------------------------------------------------
// Alerts
// ---------------------------------------------------------------------------

func TestRenderAlert(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("Intro.\n\n> [!NOTE]\n> Body text\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(got, `<div class="markdown-alert markdown-alert-note" data-source-line="3"`) {
		t.Errorf("missing alert container in %q", got)
	}
	if !strings.Contains(got, `<p class="markdown-alert-title"`) {
		t.Errorf("missing alert title in %q", got)
	}
	if !strings.Contains(got, `data-alert-type="note"`) {
		t.Errorf("missing icon placeholder in %q", got)
	}
	if !strings.Contains(got, `<p data-source-line="4">Body text</p>`) {
		t.Errorf("alert body mis-mapped in %q", got)
	}
}

func TestRenderConsecutiveAlerts(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("> [!TIP]\n> One\n\n> [!WARNING]\n> Two\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(got, `markdown-alert-tip" data-source-line="1"`) {
		t.Errorf("first alert mis-mapped in %q", got)
	}
	if !strings.Contains(got, `markdown-alert-warning" data-source-line="4"`) {
		t.Errorf("second alert mis-mapped in %q", got)
	}
}

func TestRenderAlertAfterFrontmatter(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("---\na: 1\n---\n\n> [!NOTE]\n> Hi\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(got, `markdown-alert-note" data-source-line="5"`) {
		t.Errorf("alert line not shifted past frontmatter: %q", got)
	}
	if !strings.Contains(got, `<p data-source-line="6">Hi</p>`) {
		t.Errorf("alert body not shifted past frontmatter: %q", got)
	}
}

// ---------------------------------------------------------------------------
// Tables
// ---------------------------------------------------------------------------

func TestRenderTableRanges(t *testing.T) {
	t.Parallel()

	source := "| a | b |\n|---|---|\n| 1 | 2 |\n\ntext\n\n| c | d |\n|---|---|\n| 3 | 4 |\n"
	got, err := mdpreview.Render(source, "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(got, `<table data-source-line="1" data-source-line-end="3">`) {
		t.Errorf("first table not stamped in %q", got)
	}
	if !strings.Contains(got, `<table data-source-line="7" data-source-line-end="9">`) {
		t.Errorf("second table not stamped in %q", got)
	}
	// Body rows carry their own lines; the header row does not.
	if !strings.Contains(got, `<tr data-source-line="3">`) {
		t.Errorf("body row not stamped in %q", got)
	}
}

// ---------------------------------------------------------------------------
// Headings and TOC
// ---------------------------------------------------------------------------

func TestRenderWithTOC(t *testing.T) {
	t.Parallel()

	source := "# Overview\n\n## Setup\n\n## Setup\n"
	result, err := mdpreview.RenderWithTOC(source, "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := []mdpreview.HeadingInfo{
		{Level: 1, Text: "Overview", ID: "overview"},
		{Level: 2, Text: "Setup", ID: "setup"},
		{Level: 2, Text: "Setup", ID: "setup-1"},
	}
	if len(result.Headings) != len(want) {
		t.Fatalf("got %d headings, want %d", len(result.Headings), len(want))
	}
	for i := range want {
		if result.Headings[i] != want[i] {
			t.Errorf("heading %d = %+v, want %+v", i, result.Headings[i], want[i])
		}
	}

	for _, id := range []string{`id="overview"`, `id="setup"`, `id="setup-1"`} {
		if !strings.Contains(result.HTML, id) {
			t.Errorf("missing %s in %q", id, result.HTML)
		}
	}
}

// ---------------------------------------------------------------------------
// Preprocessed blocks and math
// ---------------------------------------------------------------------------

func TestRenderMermaid(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("```mermaid\ngraph TD;\n  A-->B;\n```\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(got, `<pre class="preprocessed-mermaid" data-source-line="1" data-source-line-end="4"`) {
		t.Errorf("missing preprocessed block in %q", got)
	}
	if !strings.Contains(got, "A--&gt;B;") {
		t.Errorf("fence content not escaped in %q", got)
	}
}

func TestRenderDisplayMath(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("Intro.\n\n$$\nE = mc^2\n$$\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(got, `class="preprocessed-math-display"`) {
		t.Errorf("missing display math in %q", got)
	}
	if !strings.Contains(got, `data-source-line="3"`) || !strings.Contains(got, `data-source-line-end="5"`) {
		t.Errorf("math range missing in %q", got)
	}
	if !strings.Contains(got, "E = mc^2") {
		t.Errorf("math body missing in %q", got)
	}
}

func TestRenderInlineMath(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("Euler: $e^{i\\pi}+1=0$.\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(got, `class="preprocessed-math-inline"`) {
		t.Errorf("missing inline math in %q", got)
	}
}

func TestRenderCustomFencedTags(t *testing.T) {
	t.Parallel()

	r := mdpreview.New(mdpreview.WithFencedTags("graphviz"))
	got, err := r.Render("```mermaid\ngraph TD;\n```\n\n```graphviz\ndigraph {}\n```\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if strings.Contains(got, "preprocessed-mermaid") {
		t.Errorf("mermaid extracted despite custom tags: %q", got)
	}
	if !strings.Contains(got, `class="preprocessed-graphviz"`) {
		t.Errorf("graphviz not extracted: %q", got)
	}
}

// ---------------------------------------------------------------------------
// Local resources
// ---------------------------------------------------------------------------

func TestRenderEmbedsLocalImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	if err := os.WriteFile(filepath.Join(dir, "pic.png"), raw, 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	got, err := mdpreview.Render("![alt](pic.png)\n", filepath.Join(dir, "doc.md"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	wantURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
	if !strings.Contains(got, wantURI) {
		t.Errorf("image not embedded in %q", got)
	}
	canonical, err := filepath.EvalSymlinks(filepath.Join(dir, "pic.png"))
	if err != nil {
		t.Fatalf("resolving fixture path: %v", err)
	}
	if !strings.Contains(got, `data-original-src="`+canonical+`"`) {
		t.Errorf("canonical path not kept in %q", got)
	}
}

func TestRenderImageEmbeddingDisabled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pic.png"), []byte{1}, 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	r := mdpreview.New(mdpreview.WithoutImageEmbedding())
	got, err := r.Render("![alt](pic.png)\n", filepath.Join(dir, "doc.md"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(got, `src="pic.png"`) {
		t.Errorf("src rewritten despite disabled embedding: %q", got)
	}
}

func TestRenderInterceptsLocalLinks(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("[notes](notes.md) and [site](https://example.com)\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(got, `<span class="md-link"`) {
		t.Errorf("local link not intercepted in %q", got)
	}
	if !strings.Contains(got, "window.handleMarkdownLinkClick") {
		t.Errorf("missing click handler in %q", got)
	}
	if !strings.Contains(got, `<a href="https://example.com"`) {
		t.Errorf("remote link should pass through: %q", got)
	}
}

// ---------------------------------------------------------------------------
// Edge cases
// ---------------------------------------------------------------------------

func TestRenderEmptyInput(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "" {
		t.Errorf("empty input produced %q", got)
	}
}

func TestRenderFrontmatterOnly(t *testing.T) {
	t.Parallel()

	got, err := mdpreview.Render("---\ntitle: Only\n---\n", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(got, `<details class="frontmatter">`) {
		t.Errorf("missing frontmatter table in %q", got)
	}
}

func TestRendererConcurrentUse(t *testing.T) {
	t.Parallel()

	r := mdpreview.New()
	done := make(chan error, 8)
	for range 8 {
		go func() {
			_, err := r.Render("# Title\n\nBody $x$ text.\n\n> [!NOTE]\n> hi\n", "")
			done <- err
		}()
	}
	for range 8 {
		if err := <-done; err != nil {
			t.Errorf("concurrent render: %v", err)
		}
	}
}

func TestRenderIdempotent(t *testing.T) {
	t.Parallel()

	md := "---\ntitle: Doc\n---\n\n# One\n\n## Setup\n\n## Setup\n\n" +
		"| a | b |\n|---|---|\n| 1 | 2 |\n\n$$\nx^2\n$$\n"

	first, err := mdpreview.RenderWithTOC(md, "")
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := mdpreview.RenderWithTOC(md, "")
	if err != nil {
		t.Fatalf("second render: %v", err)
	}

	if first.HTML != second.HTML {
		t.Errorf("HTML differs between renders:\n%q\n%q", first.HTML, second.HTML)
	}
	if len(first.Headings) != len(second.Headings) {
		t.Fatalf("heading counts differ: %d vs %d", len(first.Headings), len(second.Headings))
	}
	for i := range first.Headings {
		if first.Headings[i] != second.Headings[i] {
			t.Errorf("heading %d differs: %+v vs %+v", i, first.Headings[i], second.Headings[i])
		}
	}
}
