// internal/stackexchange/catalog.go
package stackexchange

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrSiteNotFound is returned when a slug is not part of the catalog.
var ErrSiteNotFound = errors.New("site not found")

// Site is one Q&A community the bot can search. Static reference data,
// never mutated at runtime.
type Site struct {
	Name     string `json:"name" yaml:"name"`
	SiteURL  string `json:"site_url" yaml:"site_url"`
	Slug     string `json:"api_site_parameter" yaml:"api_site_parameter"`
	Audience string `json:"audience" yaml:"audience"`
	SiteType string `json:"site_type" yaml:"site_type"`
}

// Rarely updated snapshot of https://api.stackexchange.com/2.3/sites.
//
//go:embed sites.json
var rawSites []byte

// Catalog holds the ordered site list plus a slug index.
type Catalog struct {
	sites  []Site
	bySlug map[string]Site
}

// LoadCatalog builds the catalog from the embedded snapshot, or from an
// operator-supplied override file (.json, .yaml or .yml) when path is not
// empty. Only main sites are kept.
func LoadCatalog(path string) (*Catalog, error) {
	raw := rawSites
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("sites file: %w", err)
		}
		raw = b
	}

	var doc struct {
		Items []Site `json:"items" yaml:"items"`
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("sites yaml parse: %w", err)
		}
	} else {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("sites json parse: %w", err)
		}
	}

	c := &Catalog{bySlug: map[string]Site{}}
	for _, s := range doc.Items {
		if s.SiteType != "main_site" {
			continue
		}
		c.sites = append(c.sites, s)
		c.bySlug[s.Slug] = s
	}
	if len(c.sites) == 0 {
		return nil, errors.New("site catalog is empty")
	}
	return c, nil
}

// SiteBySlug resolves a slug, failing with ErrSiteNotFound for unknown ones.
func (c *Catalog) SiteBySlug(slug string) (Site, error) {
	if s, ok := c.bySlug[slug]; ok {
		return s, nil
	}
	return Site{}, fmt.Errorf("%w: %s", ErrSiteNotFound, slug)
}

// HasSlug reports whether slug names a catalog site.
func (c *Catalog) HasSlug(slug string) bool {
	_, ok := c.bySlug[slug]
	return ok
}

// Sites returns the catalog in load order.
func (c *Catalog) Sites() []Site { return c.sites }
