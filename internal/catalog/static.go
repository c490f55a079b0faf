package catalog

import (
	_ "embed"
	"fmt"

	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var staticCatalogYAML []byte

// StaticProducts returns the bundled catalog.
func StaticProducts() ([]domain.Product, error) {
	return ParseProducts(staticCatalogYAML)
}

// ParseProducts decodes a YAML product list.
func ParseProducts(data []byte) ([]domain.Product, error) {
	var products []domain.Product
	if err := yaml.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal catalog failed: %w", err)
	}
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog product %q has no id", p.Name)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate catalog product id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return products, nil
}
