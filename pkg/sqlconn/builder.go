// Package sqlconn parses and rewrites SQL Server connection strings.
//
// A connection string is a semicolon separated list of key=value pairs. Keys
// are case-insensitive and several have synonyms ("Server" and "Data Source",
// "Database" and "Initial Catalog"). The Builder keeps the original key order
// and writes synonyms back under their canonical names.
package sqlconn

import (
	"strconv"
	"strings"

	"github.com/arthur-debert/simctl/pkg/errors"
)

// Canonical key names.
const (
	KeyDataSource         = "Data Source"
	KeyInitialCatalog     = "Initial Catalog"
	KeyIntegratedSecurity = "Integrated Security"
	KeyUserID             = "User ID"
	KeyPassword           = "Password"
)

var synonyms = map[string]string{
	"data source":         KeyDataSource,
	"server":              KeyDataSource,
	"address":             KeyDataSource,
	"addr":                KeyDataSource,
	"network address":     KeyDataSource,
	"initial catalog":     KeyInitialCatalog,
	"database":            KeyInitialCatalog,
	"integrated security": KeyIntegratedSecurity,
	"trusted_connection":  KeyIntegratedSecurity,
	"user id":             KeyUserID,
	"uid":                 KeyUserID,
	"user":                KeyUserID,
	"password":            KeyPassword,
	"pwd":                 KeyPassword,
}

func canonical(key string) string {
	k := strings.ToLower(strings.Join(strings.Fields(key), " "))
	if c, ok := synonyms[k]; ok {
		return c
	}
	return strings.TrimSpace(key)
}

type pair struct {
	key   string
	value string
}

// Builder is an ordered set of connection string keywords.
type Builder struct {
	pairs []pair
}

// Parse reads a connection string.
func Parse(s string) (*Builder, error) {
	b := &Builder{}
	i := 0
	for i < len(s) {
		// skip separators and whitespace
		for i < len(s) && (s[i] == ';' || s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}
		eq := strings.IndexByte(s[i:], '=')
		if eq < 0 {
			return nil, errors.Newf(errors.ErrInvalidInput, "malformed connection string near %q", s[i:])
		}
		key := strings.TrimSpace(s[i : i+eq])
		if key == "" {
			return nil, errors.New(errors.ErrInvalidInput, "connection string has an empty keyword")
		}
		i += eq + 1
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}

		var value string
		if i < len(s) && (s[i] == '"' || s[i] == '\'') {
			quote := s[i]
			i++
			var sb strings.Builder
			closed := false
			for i < len(s) {
				if s[i] == quote {
					if i+1 < len(s) && s[i+1] == quote {
						sb.WriteByte(quote)
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				sb.WriteByte(s[i])
				i++
			}
			if !closed {
				return nil, errors.Newf(errors.ErrInvalidInput, "unterminated quoted value for %q", key)
			}
			value = sb.String()
			for i < len(s) && s[i] != ';' {
				i++
			}
		} else {
			end := strings.IndexByte(s[i:], ';')
			if end < 0 {
				end = len(s) - i
			}
			value = strings.TrimSpace(s[i : i+end])
			i += end
		}
		b.Set(key, value)
	}
	return b, nil
}

// Get returns the value for key or any of its synonyms.
func (b *Builder) Get(key string) (string, bool) {
	k := canonical(key)
	for _, p := range b.pairs {
		if strings.EqualFold(p.key, k) {
			return p.value, true
		}
	}
	return "", false
}

// Set replaces the value in place or appends the key.
func (b *Builder) Set(key, value string) {
	k := canonical(key)
	for i, p := range b.pairs {
		if strings.EqualFold(p.key, k) {
			b.pairs[i].value = value
			return
		}
	}
	b.pairs = append(b.pairs, pair{key: k, value: value})
}

// Remove deletes key if present.
func (b *Builder) Remove(key string) {
	k := canonical(key)
	for i, p := range b.pairs {
		if strings.EqualFold(p.key, k) {
			b.pairs = append(b.pairs[:i], b.pairs[i+1:]...)
			return
		}
	}
}

// Keys lists keywords in order.
func (b *Builder) Keys() []string {
	keys := make([]string, len(b.pairs))
	for i, p := range b.pairs {
		keys[i] = p.key
	}
	return keys
}

func (b *Builder) DataSource() string {
	v, _ := b.Get(KeyDataSource)
	return v
}

func (b *Builder) InitialCatalog() string {
	v, _ := b.Get(KeyInitialCatalog)
	return v
}

func (b *Builder) UserID() string {
	v, _ := b.Get(KeyUserID)
	return v
}

func (b *Builder) Password() string {
	v, _ := b.Get(KeyPassword)
	return v
}

// IntegratedSecurity reports whether Windows authentication is requested.
// "SSPI" counts as true.
func (b *Builder) IntegratedSecurity() bool {
	v, ok := b.Get(KeyIntegratedSecurity)
	if !ok {
		return false
	}
	if strings.EqualFold(v, "sspi") || strings.EqualFold(v, "yes") {
		return true
	}
	t, _ := strconv.ParseBool(v)
	return t
}

func (b *Builder) SetIntegratedSecurity(on bool) {
	if on {
		b.Set(KeyIntegratedSecurity, "True")
		return
	}
	b.Set(KeyIntegratedSecurity, "False")
}

// IsSQL reports whether the string looks like a SQL Server connection: it
// names a data source.
func (b *Builder) IsSQL() bool {
	_, ok := b.Get(KeyDataSource)
	return ok
}

// String serializes the keywords in order, quoting values when needed.
func (b *Builder) String() string {
	parts := make([]string, 0, len(b.pairs))
	for _, p := range b.pairs {
		parts = append(parts, p.key+"="+quote(p.value))
	}
	return strings.Join(parts, ";")
}

func quote(v string) string {
	if v == "" {
		return v
	}
	needs := strings.ContainsAny(v, ";'\"") || strings.TrimSpace(v) != v
	if !needs {
		return v
	}
	if !strings.Contains(v, `"`) {
		return `"` + v + `"`
	}
	if !strings.Contains(v, "'") {
		return "'" + v + "'"
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// Credentials are the server and SQL login used when rewriting a connection.
type Credentials struct {
	DataSource string
	UserID     string
	Password   string
}

// Rewrite points an existing connection at creds with SQL authentication.
// When suffix is not -1 the catalog name gets "_<suffix>" appended.
func (b *Builder) Rewrite(creds Credentials, suffix int) {
	b.SetIntegratedSecurity(false)
	b.Set(KeyDataSource, creds.DataSource)
	b.Set(KeyUserID, creds.UserID)
	b.Set(KeyPassword, creds.Password)
	if suffix != -1 {
		b.Set(KeyInitialCatalog, b.InitialCatalog()+"_"+strconv.Itoa(suffix))
	}
}
