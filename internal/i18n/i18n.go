package i18n

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

const (
	// DefaultLang matches the backend's default interface language.
	DefaultLang = "zh"

	// ErrorPrefix is the reserved namespace for backend error codes that the
	// client localizes; everything else is shown verbatim.
	ErrorPrefix = "error_"
)

// Translator resolves display strings and backend error codes for the
// current language. Unknown keys fall back to the default language and then
// to the key itself.
type Translator struct {
	mu   sync.RWMutex
	lang string
}

func New(lang string) *Translator {
	if _, ok := catalog[lang]; !ok {
		lang = DefaultLang
	}
	return &Translator{lang: lang}
}

func Languages() []string {
	langs := make([]string, 0, len(catalog))
	for l := range catalog {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

func (t *Translator) Lang() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

func (t *Translator) SetLang(lang string) error {
	if _, ok := catalog[lang]; !ok {
		return fmt.Errorf("unknown language %q (available: %v)", lang, Languages())
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lang = lang
	return nil
}

// T looks up key and substitutes {0}, {1}, ... placeholders with args.
func (t *Translator) T(key string, args ...any) string {
	t.mu.RLock()
	lang := t.lang
	t.mu.RUnlock()

	text, ok := catalog[lang][key]
	if !ok {
		text, ok = catalog[DefaultLang][key]
	}
	if !ok {
		text = key
	}

	for i, arg := range args {
		text = strings.ReplaceAll(text, fmt.Sprintf("{%d}", i), fmt.Sprint(arg))
	}
	return text
}

// TranslateError maps a backend error to display text: codes in the reserved
// error namespace are localized, anything else passes through unmodified as
// a human-readable fallback.
func (t *Translator) TranslateError(msg string) string {
	if strings.HasPrefix(msg, ErrorPrefix) {
		return t.T(msg)
	}
	return msg
}
