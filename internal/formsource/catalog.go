package formsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formguard/pkg/dom"
)

// ErrUnknownForm is returned when a page id is not in the catalog.
var ErrUnknownForm = errors.New("formsource: unknown form")

// Page is a ready-to-serve public-form document.
type Page struct {
	ID     string
	Title  string
	Markup []byte
}

// Summary lists a page in the index.
type Summary struct {
	ID    string
	Title string
}

// Catalog holds pages keyed by id. It is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	pages map[string]Page
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{pages: make(map[string]Page)}
}

// Add stores page, replacing any page with the same id.
func (c *Catalog) Add(page Page) error {
	id := strings.TrimSpace(page.ID)
	if id == "" {
		return errors.New("formsource: page id is required")
	}
	page.ID = id
	if page.Title == "" {
		page.Title = Label(id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[id] = page
	return nil
}

// Page returns the page stored under id.
func (c *Catalog) Page(id string) (Page, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	page, ok := c.pages[id]
	if !ok {
		return Page{}, fmt.Errorf("%w: %s", ErrUnknownForm, id)
	}
	return page, nil
}

// List returns page summaries sorted by id.
func (c *Catalog) List() []Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Summary, 0, len(c.pages))
	for _, page := range c.pages {
		out = append(out, Summary{ID: page.ID, Title: page.Title})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of pages.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}

// LoadDir adds every *.html file in dir. The page id is the file name without
// its extension and the title comes from the document <title>.
func (c *Catalog) LoadDir(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return 0, fmt.Errorf("formsource: scan %s: %w", dir, err)
	}
	sort.Strings(matches)
	for _, path := range matches {
		page, err := ReadPage(path)
		if err != nil {
			return 0, err
		}
		if err := c.Add(page); err != nil {
			return 0, err
		}
	}
	return len(matches), nil
}

// LoadOpenAPI renders every form operation in the OpenAPI file at path.
func (c *Catalog) LoadOpenAPI(ctx context.Context, path string, renderer *Renderer) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("formsource: read %s: %w", path, err)
	}
	forms, err := FormsFromOpenAPI(ctx, data, OpenAPIOptions{})
	if err != nil {
		return 0, err
	}
	for _, form := range forms {
		page, err := renderer.Page(form)
		if err != nil {
			return 0, err
		}
		if err := c.Add(page); err != nil {
			return 0, err
		}
	}
	return len(forms), nil
}

// ReadPage loads a static page from disk.
func ReadPage(path string) (Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Page{}, fmt.Errorf("formsource: read %s: %w", path, err)
	}
	doc, err := dom.Parse(bytes.NewReader(data))
	if err != nil {
		return Page{}, fmt.Errorf("formsource: parse %s: %w", path, err)
	}
	return Page{
		ID:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Title:  doc.Title(),
		Markup: data,
	}, nil
}
