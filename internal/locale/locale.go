// Package locale resolves user-facing strings for a request's language.
// The language is chosen per call; there is no process-wide current locale.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var files embed.FS

// Translator renders message ids for one language.
type Translator interface {
	T(id string, data ...map[string]any) string
}

// Bundle holds every loaded language.
type Bundle struct {
	bundle   *i18n.Bundle
	fallback string
	langs    []string
}

// New loads the embedded message files. fallback is used for senders whose
// language is missing or unsupported.
func New(fallback string) (*Bundle, error) {
	return Load(files, "locales", fallback)
}

// Load reads every *.yaml file under dir of fsys; the file name is the language tag.
func Load(fsys fs.FS, dir, fallback string) (*Bundle, error) {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("locale: read %s: %w", dir, err)
	}
	var langs []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		if _, err := b.LoadMessageFileFS(fsys, path.Join(dir, e.Name())); err != nil {
			return nil, fmt.Errorf("locale: load %s: %w", e.Name(), err)
		}
		langs = append(langs, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	if len(langs) == 0 {
		return nil, fmt.Errorf("locale: no message files in %s", dir)
	}
	if strings.TrimSpace(fallback) == "" {
		fallback = language.English.String()
	}
	return &Bundle{bundle: b, fallback: fallback, langs: langs}, nil
}

// Languages lists the loaded language tags.
func (b *Bundle) Languages() []string {
	return append([]string(nil), b.langs...)
}

// Printer returns a Translator for a Telegram language_code such as "ru" or "en-US".
func (b *Bundle) Printer(lang string) *Printer {
	return &Printer{loc: i18n.NewLocalizer(b.bundle, lang, b.fallback)}
}

// Printers returns a Translator for every loaded language.
func (b *Bundle) Printers() []*Printer {
	out := make([]*Printer, 0, len(b.langs))
	for _, l := range b.langs {
		out = append(out, &Printer{loc: i18n.NewLocalizer(b.bundle, l)})
	}
	return out
}

// Printer localizes messages for one request.
type Printer struct {
	loc *i18n.Localizer
}

// T renders message id with optional template data. Unknown ids render as the id itself.
func (p *Printer) T(id string, data ...map[string]any) string {
	cfg := &i18n.LocalizeConfig{MessageID: id}
	if len(data) > 0 {
		cfg.TemplateData = data[0]
	}
	s, err := p.loc.Localize(cfg)
	if err != nil || s == "" {
		return id
	}
	return s
}
