// Package templates renders the notification emails embedded next to it.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"sort"
	"strings"
	texttemplate "text/template"
)

//go:embed *.html *.txt
var templateFS embed.FS

const layoutFile = "layout.html"

// NotificationData contains the data every notification template receives.
type NotificationData struct {
	RecipientName string
	GroupName     string
	Description   string
	Amount        string
	Approved      bool
	MembersCount  int
	EndsAt        string
	AppURL        string
}

type pair struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// Renderer holds one parsed HTML and text template per notification kind.
type Renderer struct {
	templates map[string]pair
}

var funcs = map[string]any{
	"greeting": func(name string) string {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
		return "there"
	},
}

// NewRenderer parses the embedded templates. Every HTML template must have a text
// counterpart with the same base name.
func NewRenderer() (*Renderer, error) {
	htmlFiles, err := fs.Glob(templateFS, "*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{templates: make(map[string]pair)}
	for _, file := range htmlFiles {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(file, ".html")

		html, err := htmltemplate.New(file).Funcs(funcs).ParseFS(templateFS, file, layoutFile)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		text, err := texttemplate.New(name + ".txt").Funcs(funcs).ParseFS(templateFS, name+".txt")
		if err != nil {
			return nil, fmt.Errorf("template %s has no usable text version: %w", name, err)
		}
		r.templates[name] = pair{html: html, text: text}
	}
	return r, nil
}

// Names lists the templates the renderer knows, sorted.
func (r *Renderer) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render executes both versions of the named template.
func (r *Renderer) Render(name string, data NotificationData) (html string, text string, err error) {
	t, ok := r.templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := t.html.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s.html: %w", name, err)
	}
	if err := t.text.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s.txt: %w", name, err)
	}
	return htmlBuf.String(), textBuf.String(), nil
}
