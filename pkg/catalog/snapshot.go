package catalog

import (
	"regexp"
	"sort"
	"strings"

	"github.com/arthur-debert/simctl/pkg/product"
)

var hotfixPattern = regexp.MustCompile(`(?i)hotfix`)

// Snapshot is an immutable view of the catalog at one refresh.
type Snapshot struct {
	products []product.Product
	modules  []product.Product
	parser   *product.Parser
}

func newSnapshot(products []product.Product, parser *product.Parser) *Snapshot {
	s := &Snapshot{products: products, parser: parser}
	for _, p := range products {
		if !p.IsStandalone {
			s.modules = append(s.modules, p)
		}
	}
	return s
}

// Products returns all products in scan order.
func (s *Snapshot) Products() []product.Product {
	return append([]product.Product(nil), s.products...)
}

// Modules returns the products that are not standalone.
func (s *Snapshot) Modules() []product.Product {
	return append([]product.Product(nil), s.modules...)
}

// Len returns the number of products.
func (s *Snapshot) Len() int {
	return len(s.products)
}

// StandaloneProducts returns the standalone products, highest SortOrder first.
func (s *Snapshot) StandaloneProducts() []product.Product {
	var out []product.Product
	for _, p := range s.products {
		if p.IsStandalone {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder > out[j].SortOrder
	})
	return out
}

// GetProduct resolves a product by its display form, ignoring case.
//
// When no product matches and the name contains "hotfix", the lookup is
// retried with everything from the first "hotfix" onwards removed. If that
// fails too, the name is parsed as a fresh reference and the returned
// product is Synthetic.
func (s *Snapshot) GetProduct(name string) product.Product {
	if p, ok := s.find(name); ok {
		return p
	}

	if loc := hotfixPattern.FindStringIndex(name); loc != nil {
		if p, ok := s.find(strings.TrimRight(name[:loc[0]], " \t")); ok {
			return p
		}
	}

	return s.parser.Parse(name)
}

// Lookup resolves a product by display form without the fallbacks.
func (s *Snapshot) Lookup(name string) (product.Product, bool) {
	return s.find(name)
}

func (s *Snapshot) find(name string) (product.Product, bool) {
	for _, p := range s.products {
		if strings.EqualFold(p.String(), name) {
			return p, true
		}
	}
	return product.Product{}, false
}

// GetProducts returns the products matching every non-empty filter.
// Names compare case-insensitively; version and revision exactly.
func (s *Snapshot) GetProducts(name, version, revision string) []product.Product {
	var out []product.Product
	for _, p := range s.products {
		if name != "" && !strings.EqualFold(p.Name, name) {
			continue
		}
		if version != "" && p.Version != version {
			continue
		}
		if revision != "" && p.Revision != revision {
			continue
		}
		out = append(out, p)
	}
	return out
}

// CompatibleModules returns the modules released for the given standalone product.
func (s *Snapshot) CompatibleModules(standalone product.Product) []product.Product {
	var out []product.Product
	for _, m := range s.modules {
		if m.IsCompatibleWith(standalone) {
			out = append(out, m)
		}
	}
	return out
}
