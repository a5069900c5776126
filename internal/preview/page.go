package preview

import (
	"bytes"
	"fmt"
	"html/template"
)

// pageTemplate is the HTML shell wrapped around rendered Markdown. The
// styling is deliberately minimal; this is a development preview, not a
// published page.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body {
  max-width: 48rem;
  margin: 2rem auto;
  padding: 0 1rem;
  font-family: system-ui, sans-serif;
  line-height: 1.6;
}
pre { padding: 1rem; overflow-x: auto; }
code { font-family: ui-monospace, monospace; }
nav.toc {
  border: 1px solid #ddd;
  border-radius: 4px;
  padding: 0.5rem 1rem;
  margin-bottom: 2rem;
}
{{.CSS}}
</style>
</head>
<body>
{{if .TOC}}<nav class="toc">{{.TOC}}</nav>
{{end}}<main>{{.Content}}</main>
</body>
</html>
`))

// pageData is the data passed to pageTemplate.
type pageData struct {
	Title   string
	TOC     template.HTML
	Content template.HTML
	CSS     template.CSS
}

// RenderPage converts a Markdown source file into a complete HTML page.
// Frontmatter (YAML or TOML) is stripped from the body; its title field,
// when present, becomes the page title, otherwise fallbackTitle is used.
func (r *Renderer) RenderPage(source []byte, fallbackTitle string) ([]byte, error) {
	metadata, body, err := ParseFrontmatter(source)
	if err != nil {
		return nil, err
	}

	content, tocHTML, err := r.RenderWithTOC(body)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, pageData{
		Title:   Title(metadata, fallbackTitle),
		TOC:     template.HTML(tocHTML),
		Content: template.HTML(content),
		CSS:     template.CSS(r.css),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering preview page: %w", err)
	}

	return buf.Bytes(), nil
}
