package field

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Message keys understood by the validator.
const (
	MsgRequired = "field.required"
	MsgEmail    = "field.email"
	MsgPhone    = "field.phone"
	MsgNumber   = "field.number"
	MsgMin      = "field.min"
	MsgMax      = "field.max"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "en"

var defaultMessages = map[string]string{
	MsgRequired: "This field is required.",
	MsgEmail:    "Enter a valid email address.",
	MsgPhone:    "Enter a valid mobile number.",
	MsgNumber:   "Enter a valid number.",
	MsgMin:      "Value must be at least %s.",
	MsgMax:      "Value must be at most %s.",
}

var (
	// ErrMissingTranslator is passed to MissingTranslationHandler when no
	// translator was configured.
	ErrMissingTranslator = errors.New("field: translator is not configured")
	// ErrMissingMessage reports an unknown locale/key pair.
	ErrMissingMessage = errors.New("field: message not found")
)

// Translator resolves a message key for a locale. args are applied as
// fmt verbs by implementations that support them.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides the string used when translation fails.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// MissingTranslationDefault falls back to the built-in English message.
func MissingTranslationDefault(_ string, key string, args []any, _ error) string {
	format, ok := defaultMessages[key]
	if !ok {
		return key
	}
	return sprintf(format, args)
}

// Catalog is an in-memory Translator keyed by locale then message key.
type Catalog struct {
	mu       sync.RWMutex
	messages map[string]map[string]string
}

// NewCatalog returns a catalog seeded with the English defaults.
func NewCatalog() *Catalog {
	c := &Catalog{messages: make(map[string]map[string]string)}
	c.Add(DefaultLocale, defaultMessages)
	return c
}

// Add merges messages for locale; later calls win on key collisions.
func (c *Catalog) Add(locale string, messages map[string]string) {
	locale = normalizeLocale(locale)
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket := c.messages[locale]
	if bucket == nil {
		bucket = make(map[string]string, len(messages))
		c.messages[locale] = bucket
	}
	for key, value := range messages {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			bucket[trimmed] = value
		}
	}
}

// Locales lists the loaded locales.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		out = append(out, locale)
	}
	return out
}

// Translate implements Translator. Lookups fall back from a regional locale
// ("zh-CN") to its base language ("zh") before failing.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, candidate := range localeChain(locale) {
		if format, ok := c.messages[candidate][key]; ok {
			return sprintf(format, args), nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrMissingMessage, locale, key)
}

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// LoadYAML reads a catalog file of the form {locale, messages} into c.
func (c *Catalog) LoadYAML(r io.Reader) error {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return fmt.Errorf("field: decode catalog: %w", err)
	}
	if strings.TrimSpace(file.Locale) == "" {
		return errors.New("field: catalog locale is required")
	}
	c.Add(file.Locale, file.Messages)
	return nil
}

//go:embed locales/*.yaml
var bundledLocales embed.FS

var (
	bundledOnce    sync.Once
	bundledCatalog *Catalog
	bundledErr     error
)

// BundledCatalog returns the English defaults plus every locale shipped with
// the package.
func BundledCatalog() (*Catalog, error) {
	bundledOnce.Do(func() {
		catalog := NewCatalog()
		bundledErr = fs.WalkDir(bundledLocales, "locales", func(path string, entry fs.DirEntry, err error) error {
			if err != nil || entry.IsDir() {
				return err
			}
			file, err := bundledLocales.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()
			return catalog.LoadYAML(file)
		})
		bundledCatalog = catalog
	})
	return bundledCatalog, bundledErr
}

func localeChain(locale string) []string {
	locale = normalizeLocale(locale)
	chain := []string{locale}
	if base, _, found := strings.Cut(locale, "-"); found {
		chain = append(chain, base)
	}
	return chain
}

func normalizeLocale(locale string) string {
	locale = strings.TrimSpace(strings.ReplaceAll(locale, "_", "-"))
	if locale == "" {
		return DefaultLocale
	}
	return locale
}

func sprintf(format string, args []any) string {
	if len(args) == 0 || !strings.Contains(format, "%") {
		return format
	}
	return fmt.Sprintf(format, args...)
}
