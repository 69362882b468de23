// Package catalog loads the operator-maintained product list and screen copy.
package catalog

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"receipt-desk-bot/internal/domain/model"
)

type fileProduct struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Price       int64  `yaml:"price"`
	Description string `yaml:"description"`
}

type file struct {
	Currency     string        `yaml:"currency"`
	PaymentInfo  string        `yaml:"payment_info"`
	Faq          string        `yaml:"faq"`
	SpecialOffer string        `yaml:"special_offer"`
	Products     []fileProduct `yaml:"products"`
}

// Load reads a catalog from the local filesystem.
func Load(path string) (*model.Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(b)
}

// LoadFS reads name from fsys; a leading slash is ignored.
func LoadFS(fsys fs.FS, name string) (*model.Catalog, error) {
	b, err := fs.ReadFile(fsys, strings.TrimPrefix(name, "/"))
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", name, err)
	}
	return Parse(b)
}

// Parse decodes catalog YAML. Unknown keys are rejected so a typo in the
// operator file fails at startup instead of hiding a field.
func Parse(b []byte) (*model.Catalog, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	products := make([]model.Product, 0, len(f.Products))
	for _, p := range f.Products {
		products = append(products, model.Product{
			ID:          p.ID,
			Name:        strings.TrimSpace(p.Name),
			Price:       p.Price,
			Description: strings.TrimSpace(p.Description),
		})
	}
	c, err := model.NewCatalog(f.Currency, products)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	c.PaymentInfo = strings.TrimSpace(f.PaymentInfo)
	c.FaqText = strings.TrimSpace(f.Faq)
	c.SpecialOffer = strings.TrimSpace(f.SpecialOffer)
	return c, nil
}
