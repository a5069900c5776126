// Package preview renders Markdown files into standalone HTML pages for
// the development server, so .md files under the served directory can be
// viewed in a browser with syntax highlighting and a table of contents.
package preview

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"go.abhg.dev/goldmark/toc"
)

// Renderer converts Markdown source into HTML using goldmark with GFM,
// footnotes, typographer, syntax highlighting, auto heading IDs, and
// attributes enabled.
type Renderer struct {
	md  goldmark.Markdown
	css string
}

// NewRenderer creates a Renderer. The chroma style name controls syntax
// highlighting colors; an unknown name falls back to chroma's default.
func NewRenderer(style string) (*Renderer, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	css, err := chromaCSS(style)
	if err != nil {
		return nil, err
	}

	return &Renderer{md: md, css: css}, nil
}

// Render converts Markdown source bytes into HTML.
func (r *Renderer) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderWithTOC converts Markdown source bytes into HTML and also
// produces a table of contents as a nested HTML list. It returns the
// rendered content HTML and the TOC HTML separately; the TOC is nil when
// the document has no headings.
func (r *Renderer) RenderWithTOC(source []byte) (htmlOut []byte, tocOut []byte, err error) {
	// Parse the markdown into an AST.
	doc := r.md.Parser().Parse(text.NewReader(source))

	// Extract the TOC tree from the AST.
	tocTree, err := toc.Inspect(doc, source)
	if err != nil {
		return nil, nil, fmt.Errorf("toc inspect: %w", err)
	}

	tocList := toc.RenderList(tocTree)
	if tocList != nil {
		var tocBuf bytes.Buffer
		if err := r.md.Renderer().Render(&tocBuf, source, tocList); err != nil {
			return nil, nil, fmt.Errorf("toc render: %w", err)
		}
		tocOut = tocBuf.Bytes()
	}

	// Render the full document.
	var contentBuf bytes.Buffer
	if err := r.md.Renderer().Render(&contentBuf, source, doc); err != nil {
		return nil, nil, fmt.Errorf("markdown render: %w", err)
	}

	return contentBuf.Bytes(), tocOut, nil
}

// chromaCSS produces CSS for syntax-highlighted code blocks in the given
// chroma style.
func chromaCSS(style string) (string, error) {
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	sty := styles.Get(style)

	var buf bytes.Buffer
	if err := formatter.WriteCSS(&buf, sty); err != nil {
		return "", fmt.Errorf("generate highlight CSS: %w", err)
	}
	return buf.String(), nil
}
