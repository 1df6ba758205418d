package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"annodocs/internal/logging"
	"annodocs/internal/parser"
)

//go:embed templates/*.html
var templatesFS embed.FS

const templateExt = ".html"

// RequiredTemplates lists every template name a complete template set
// defines.
var RequiredTemplates = []string{
	string(parser.TypeSpeaker),
	string(parser.TypeSoundbite),
	string(parser.TypeOther),
	string(parser.TypeAnnotation),
	TemplatePage,
	TemplateEmbed,
	TemplateEmbedsIndex,
	TemplateShare,
}

// ErrUnknownTemplate is returned when a name has no template.
var ErrUnknownTemplate = errors.New("render: unknown template")

// Renderer maps a template name and its context to markup.
type Renderer interface {
	Render(name string, ctx Context) (string, error)
}

// TemplateRenderer executes the embedded html/template set.
type TemplateRenderer struct {
	set *template.Template
}

// NewTemplateRenderer parses the embedded templates and then, when dir is
// not empty, every *.html file in dir. A file in dir replaces the embedded
// template of the same name.
func NewTemplateRenderer(dir string, logger *slog.Logger) (*TemplateRenderer, error) {
	logger = logging.NewComponentLogger(logger, "render")
	set, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "templates/*"+templateExt)
	if err != nil {
		return nil, fmt.Errorf("render: parse embedded templates: %w", err)
	}
	if dir = strings.TrimSpace(dir); dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("render: templates dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("render: templates dir %s is not a directory", dir)
		}
		overrides, err := fs.Glob(os.DirFS(dir), "*"+templateExt)
		if err != nil {
			return nil, fmt.Errorf("render: list templates in %s: %w", dir, err)
		}
		if len(overrides) > 0 {
			if set, err = set.ParseFS(os.DirFS(dir), overrides...); err != nil {
				return nil, fmt.Errorf("render: parse templates in %s: %w", dir, err)
			}
		}
		logger.Debug("template overrides loaded",
			logging.String("dir", filepath.Clean(dir)),
			logging.Int("count", len(overrides)),
		)
	}
	for _, name := range RequiredTemplates {
		if set.Lookup(name+templateExt) == nil {
			return nil, fmt.Errorf("%w %q", ErrUnknownTemplate, name)
		}
	}
	return &TemplateRenderer{set: set}, nil
}

// Render executes the template called name.
func (r *TemplateRenderer) Render(name string, ctx Context) (string, error) {
	tmpl := r.set.Lookup(name + templateExt)
	if tmpl == nil {
		return "", fmt.Errorf("%w %q", ErrUnknownTemplate, name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("render: execute %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderAll renders every item with the template named after its type and
// returns copies carrying the markup. Output is forwarded unchanged.
func RenderAll(r Renderer, items []Item) ([]Item, error) {
	out := make([]Item, len(items))
	for i, it := range items {
		markup, err := r.Render(string(it.Type), it.Context)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", it.Position, err)
		}
		it.Markup = markup
		out[i] = it
	}
	return out, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"embedPath": EmbedFileName,
	}
}
