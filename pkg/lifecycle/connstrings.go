package lifecycle

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/sqlconn"
	"github.com/arthur-debert/simctl/pkg/xmlconfig"
	"github.com/beevik/etree"
	"github.com/spf13/afero"
)

// ConnectionStringsFile is the location of the connection strings document
// relative to a web root, slash separated.
const ConnectionStringsFile = "App_Config/ConnectionStrings.config"

// ConnectionStringsPath returns the connection strings document under webRoot.
func ConnectionStringsPath(webRoot string) string {
	return filepath.Join(webRoot, filepath.FromSlash(ConnectionStringsFile))
}

// ConnectionString is one named entry of the document.
type ConnectionString struct {
	Name  string
	Value string
}

// IsSQL reports whether the entry points at SQL Server rather than, say,
// MongoDB.
func (c ConnectionString) IsSQL() bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(c.Value)), "mongodb://") {
		return false
	}
	b, err := sqlconn.Parse(c.Value)
	return err == nil && b.IsSQL()
}

// ConnectionStrings is an editable connection strings document:
//
//	<connectionStrings>
//	  <add name="core" connectionString="..." />
//	</connectionStrings>
type ConnectionStrings struct {
	fs   afero.Fs
	path string
	doc  *etree.Document
}

// LoadConnectionStrings reads the document at path.
func LoadConnectionStrings(fs afero.Fs, path string) (*ConnectionStrings, error) {
	doc, err := xmlconfig.Load(fs, path)
	if err != nil {
		return nil, err
	}
	return &ConnectionStrings{fs: fs, path: path, doc: doc}, nil
}

// Path is where Save writes.
func (c *ConnectionStrings) Path() string { return c.path }

func (c *ConnectionStrings) adds() []*etree.Element {
	return c.doc.Root().SelectElements("add")
}

// Entries lists entries in document order.
func (c *ConnectionStrings) Entries() []ConnectionString {
	var out []ConnectionString
	for _, e := range c.adds() {
		out = append(out, ConnectionString{
			Name:  e.SelectAttrValue("name", ""),
			Value: e.SelectAttrValue("connectionString", ""),
		})
	}
	return out
}

// Get returns the value of the named entry.
func (c *ConnectionStrings) Get(name string) (string, bool) {
	for _, e := range c.adds() {
		if strings.EqualFold(e.SelectAttrValue("name", ""), name) {
			return e.SelectAttrValue("connectionString", ""), true
		}
	}
	return "", false
}

// Set updates the named entry or appends a new one.
func (c *ConnectionStrings) Set(name, value string) {
	for _, e := range c.adds() {
		if strings.EqualFold(e.SelectAttrValue("name", ""), name) {
			e.CreateAttr("connectionString", value)
			return
		}
	}
	add := c.doc.Root().CreateElement("add")
	add.CreateAttr("name", name)
	add.CreateAttr("connectionString", value)
}

// RewriteSQL repoints every SQL entry at creds and returns how many changed.
// A suffix other than -1 is appended to each catalog name.
func (c *ConnectionStrings) RewriteSQL(creds sqlconn.Credentials, suffix int) (int, error) {
	n := 0
	for _, entry := range c.Entries() {
		if !entry.IsSQL() {
			continue
		}
		b, err := sqlconn.Parse(entry.Value)
		if err != nil {
			return n, errors.Wrap(err, errors.ErrInvalidInput, "invalid connection string").
				WithDetail("name", entry.Name)
		}
		b.Rewrite(creds, suffix)
		c.Set(entry.Name, b.String())
		n++
	}
	return n, nil
}

// Save writes the document back to its path.
func (c *ConnectionStrings) Save() error {
	return xmlconfig.Save(c.fs, c.path, c.doc)
}
