// Package catalog holds the immutable product catalog and its search filter.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sleekspace/storefront/internal/model"
)

//go:embed catalog.yaml
var seed []byte

// Store is the fixed set of purchasable products. The list never changes
// after New; all accessors return copies.
type Store struct {
	products []model.Product
}

// New parses the embedded product seed.
func New() (*Store, error) {
	var doc struct {
		Products []model.Product `yaml:"products"`
	}
	if err := yaml.Unmarshal(seed, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	return &Store{products: doc.Products}, nil
}

// Products returns the full catalog in original order.
func (s *Store) Products() []model.Product {
	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Filter returns the products whose name contains query
// case-insensitively, preserving catalog order. An empty query returns
// the full catalog; an empty result is valid.
func (s *Store) Filter(query string) []model.Product {
	q := strings.ToLower(query)
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

// Get looks up a product by id.
func (s *Store) Get(id int) (model.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// Slides derives the rotating-display entries from the catalog order,
// captioned with each product's description.
func (s *Store) Slides() []model.Slide {
	out := make([]model.Slide, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, model.Slide{ImageRef: p.ImageRef, Caption: p.Description})
	}
	return out
}
