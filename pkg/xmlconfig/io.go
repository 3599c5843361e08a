package xmlconfig

import (
	"path/filepath"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/beevik/etree"
	"github.com/spf13/afero"
)

// ParseString parses an XML document from a string.
func ParseString(s string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return nil, errors.Wrap(err, errors.ErrXMLParse, "failed to parse XML")
	}
	if doc.Root() == nil {
		return nil, errors.New(errors.ErrXMLParse, "document has no root element")
	}
	return doc, nil
}

// MustParse is ParseString for fixtures known to be valid.
func MustParse(s string) *etree.Document {
	doc, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return doc
}

// Load reads and parses the XML file at path.
func Load(fs afero.Fs, path string) (*etree.Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		exists, _ := afero.Exists(fs, path)
		if !exists {
			return nil, errors.Wrap(err, errors.ErrFileNotFound, "configuration file not found").
				WithDetail("path", path)
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read configuration file").
			WithDetail("path", path)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(err, errors.ErrXMLParse, "failed to parse XML").
			WithDetail("path", path)
	}
	if doc.Root() == nil {
		return nil, errors.New(errors.ErrXMLParse, "document has no root element").
			WithDetail("path", path)
	}
	return doc, nil
}

// Save writes doc to path, indented, creating parent directories.
func Save(fs afero.Fs, path string, doc *etree.Document) error {
	out := doc.Copy()
	out.Indent(2)
	data, err := out.WriteToBytes()
	if err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to serialize XML").
			WithDetail("path", path)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create directory").
			WithDetail("path", filepath.Dir(path))
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write configuration file").
			WithDetail("path", path)
	}
	return nil
}

// String serializes an element without added whitespace.
func String(e *etree.Element) string {
	if e == nil {
		return ""
	}
	doc := etree.NewDocument()
	doc.SetRoot(e.Copy())
	s, _ := doc.WriteToString()
	return s
}

// Pretty serializes a document indented by two spaces.
func Pretty(doc *etree.Document) string {
	out := doc.Copy()
	out.Indent(2)
	s, _ := out.WriteToString()
	return s
}
