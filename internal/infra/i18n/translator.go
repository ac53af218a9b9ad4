package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator resolves message keys for one language.
type Translator struct {
	lang         string
	translations map[string]string
}

// NewTranslator loads locales/<langCode>.yaml from fsys.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := path.Join("locales", langCode+".yaml")
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	t, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, err
	}
	t.lang = langCode
	return t, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

func (t *Translator) Lang() string { return t.lang }

// T returns the message for key, or key itself when missing.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Bundle holds one translator per supported language.
type Bundle struct {
	def   *Translator
	langs map[string]*Translator
}

// NewBundle loads every language in langs; defaultLang must be among them.
func NewBundle(fsys fs.FS, defaultLang string, langs ...string) (*Bundle, error) {
	b := &Bundle{langs: make(map[string]*Translator, len(langs))}
	for _, l := range langs {
		t, err := NewTranslator(fsys, l)
		if err != nil {
			return nil, err
		}
		b.langs[l] = t
	}
	def, ok := b.langs[defaultLang]
	if !ok {
		return nil, fmt.Errorf("default language %q not loaded", defaultLang)
	}
	b.def = def
	return b, nil
}

// For picks a translator from an Accept-Language header value, falling back to the default.
// Quality weights are ignored; the first supported tag wins.
func (b *Bundle) For(acceptLanguage string) *Translator {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		tag = strings.ToLower(tag)
		if t, ok := b.langs[tag]; ok {
			return t
		}
		if i := strings.IndexByte(tag, '-'); i > 0 {
			if t, ok := b.langs[tag[:i]]; ok {
				return t
			}
		}
	}
	return b.def
}
