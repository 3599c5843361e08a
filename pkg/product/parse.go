package product

import (
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultStandaloneNames lists the products installed as full instances.
var DefaultStandaloneNames = []string{"Sitecore CMS", "Sitecore XP", "Sitecore"}

var (
	archivePattern = regexp.MustCompile(`^(?P<name>.+?)\s+(?P<version>\d+(?:\.\d+)*)\s+rev\.\s*(?P<revision>\d+)(?:\s+(?P<label>.+))?$`)
	versionPattern = regexp.MustCompile(`^(?P<name>.+?)\s+(?P<version>\d+(?:\.\d+)*)$`)
)

// Parser turns archive names and free-form references into products.
type Parser struct {
	standalone map[string]bool
}

// NewParser creates a parser classifying the given names as standalone.
// An empty list falls back to DefaultStandaloneNames.
func NewParser(standaloneNames []string) *Parser {
	if len(standaloneNames) == 0 {
		standaloneNames = DefaultStandaloneNames
	}
	p := &Parser{standalone: make(map[string]bool, len(standaloneNames))}
	for _, name := range standaloneNames {
		p.standalone[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return p
}

var defaultParser = NewParser(nil)

// TryParse parses an archive path with the default parser.
func TryParse(path string) (Product, bool) {
	return defaultParser.TryParse(path)
}

// Parse parses a reference with the default parser.
func Parse(reference string) Product {
	return defaultParser.Parse(reference)
}

// TryParse parses an archive path. Files that do not follow the naming
// convention return false; this is an expected outcome, not an error.
func (p *Parser) TryParse(path string) (Product, bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	m := archivePattern.FindStringSubmatch(strings.TrimSpace(base))
	if m == nil {
		return Product{}, false
	}

	prod := p.build(
		m[archivePattern.SubexpIndex("name")],
		m[archivePattern.SubexpIndex("version")],
		m[archivePattern.SubexpIndex("revision")],
	)
	prod.Label = strings.TrimSpace(m[archivePattern.SubexpIndex("label")])
	prod.ArchivePath = path
	return prod, true
}

// Parse builds a product from a free-form reference such as
// "Sitecore 8.2 rev. 161221", "Sitecore 8.2" or "Sitecore". It never fails;
// the result is always marked Synthetic.
func (p *Parser) Parse(reference string) Product {
	ref := strings.TrimSpace(reference)

	var prod Product
	if m := archivePattern.FindStringSubmatch(ref); m != nil {
		prod = p.build(
			m[archivePattern.SubexpIndex("name")],
			m[archivePattern.SubexpIndex("version")],
			m[archivePattern.SubexpIndex("revision")],
		)
		prod.Label = strings.TrimSpace(m[archivePattern.SubexpIndex("label")])
	} else if m := versionPattern.FindStringSubmatch(ref); m != nil {
		prod = p.build(
			m[versionPattern.SubexpIndex("name")],
			m[versionPattern.SubexpIndex("version")],
			"",
		)
	} else {
		prod = p.build(ref, "", "")
	}

	prod.Synthetic = true
	return prod
}

// IsStandaloneName reports whether name is classified as a full product.
func (p *Parser) IsStandaloneName(name string) bool {
	return p.standalone[strings.ToLower(strings.TrimSpace(name))]
}

func (p *Parser) build(name, version, revision string) Product {
	name = strings.TrimSpace(name)
	return Product{
		Name:         name,
		Version:      version,
		Revision:     revision,
		IsStandalone: p.IsStandaloneName(name),
		SortOrder:    sortOrder(version, revision),
	}
}
