// Package runtimeconfig computes the configuration an instance actually runs
// with: web.config layered with every include file under
// App_Config/Include, in sorted path order.
package runtimeconfig

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/lifecycle"
	"github.com/arthur-debert/simctl/pkg/logging"
	"github.com/arthur-debert/simctl/pkg/xmlconfig"
	"github.com/aymanbagabas/go-udiff"
	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	WebConfigFile = "web.config"
	IncludeDir    = "App_Config/Include"
	// DefaultDiffMaxLines caps Diff output; zero or less means no cap.
	DefaultDiffMaxLines = 400
)

// Options configures an Accessor.
type Options struct {
	FS     afero.Fs
	Logger zerolog.Logger
}

// Accessor reads the runtime settings of one web root.
type Accessor struct {
	fs      afero.Fs
	webRoot string
	logger  zerolog.Logger
}

// New creates an accessor for webRoot.
func New(webRoot string, opts Options) *Accessor {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("runtimeconfig")
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Accessor{fs: fsys, webRoot: webRoot, logger: logger}
}

// WebRoot is the directory the accessor reads.
func (a *Accessor) WebRoot() string { return a.webRoot }

// WebConfigPath is the base document location.
func (a *Accessor) WebConfigPath() string {
	return filepath.Join(a.webRoot, WebConfigFile)
}

func (a *Accessor) wrap(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, errors.GetErrorCode(err), "failed to %s of %s", fmt.Sprintf(format, args...), a.webRoot).
		WithDetail("web_root", a.webRoot)
}

// IncludeFiles lists the overlay files in the order they are applied.
func (a *Accessor) IncludeFiles() ([]string, error) {
	dir := filepath.Join(a.webRoot, filepath.FromSlash(IncludeDir))
	if exists, _ := afero.DirExists(a.fs, dir); !exists {
		return nil, nil
	}
	var rel []string
	err := afero.Walk(a.fs, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ".config") {
			return nil
		}
		r, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = append(rel, filepath.ToSlash(r))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to list include files").
			WithDetail("path", dir)
	}
	sort.Strings(rel)

	files := make([]string, len(rel))
	for i, r := range rel {
		files[i] = filepath.Join(dir, filepath.FromSlash(r))
	}
	return files, nil
}

// Base loads web.config alone.
func (a *Accessor) Base() (*etree.Document, error) {
	doc, err := xmlconfig.Load(a.fs, a.WebConfigPath())
	if err != nil {
		return nil, a.wrap(err, "load web config")
	}
	return doc, nil
}

// Effective returns web.config with every include file merged in.
func (a *Accessor) Effective() (*etree.Document, error) {
	done := logging.LogOperationStart(a.logger, "Computing showconfig")
	defer done()

	base, err := a.Base()
	if err != nil {
		return nil, err
	}
	files, err := a.IncludeFiles()
	if err != nil {
		return nil, a.wrap(err, "get showconfig")
	}

	overlays := make([]*etree.Document, 0, len(files))
	for _, f := range files {
		doc, err := xmlconfig.Load(a.fs, f)
		if err != nil {
			return nil, a.wrap(err, "get showconfig")
		}
		overlays = append(overlays, doc)
	}

	effective, err := xmlconfig.MergeDocuments(base, overlays...)
	if err != nil {
		return nil, a.wrap(err, "get showconfig")
	}
	a.logger.Debug().
		Str("web_root", a.webRoot).
		Int("includes", len(files)).
		Msg("Computed effective configuration")
	return effective, nil
}

// lastNamed returns the value attribute of the last element under
// sitecore matching tag and name. Later definitions override earlier ones.
func lastNamed(doc *etree.Document, path, name string) (string, bool) {
	value, found := "", false
	for _, e := range doc.Root().FindElements(path) {
		if strings.EqualFold(e.SelectAttrValue("name", ""), name) {
			if attr := e.SelectAttr("value"); attr != nil {
				value, found = attr.Value, true
			}
		}
	}
	return value, found
}

// Setting returns a Sitecore setting from the effective configuration.
func (a *Accessor) Setting(name string) (string, error) {
	doc, err := a.Effective()
	if err != nil {
		return "", err
	}
	if v, ok := lastNamed(doc, "./sitecore/settings/setting", name); ok {
		return v, nil
	}
	return "", a.wrap(errors.Newf(errors.ErrNotFound, "setting %q is not defined", name), "get %s sitecore setting", name)
}

// Variable returns an sc.variable from the effective configuration.
func (a *Accessor) Variable(name string) (string, error) {
	doc, err := a.Effective()
	if err != nil {
		return "", err
	}
	if v, ok := lastNamed(doc, "./sitecore/sc.variable", name); ok {
		return v, nil
	}
	return "", a.wrap(errors.Newf(errors.ErrNotFound, "variable %q is not defined", name), "get %s sc variable", name)
}

// Database is a named connection from the instance's connection strings.
type Database struct {
	Name             string
	ConnectionString string
	Mongo            bool
}

// Databases lists App_Config/ConnectionStrings.config entries.
func (a *Accessor) Databases() ([]Database, error) {
	path := lifecycle.ConnectionStringsPath(a.webRoot)
	cs, err := lifecycle.LoadConnectionStrings(a.fs, path)
	if err != nil {
		return nil, a.wrap(err, "get databases")
	}
	var out []Database
	for _, e := range cs.Entries() {
		out = append(out, Database{
			Name:             e.Name,
			ConnectionString: e.Value,
			Mongo:            strings.HasPrefix(strings.ToLower(strings.TrimSpace(e.Value)), "mongodb://"),
		})
	}
	return out, nil
}

// Diff renders a unified diff from web.config to the effective configuration,
// capped at maxLines lines.
func (a *Accessor) Diff(maxLines int) (string, bool, error) {
	base, err := a.Base()
	if err != nil {
		return "", false, err
	}
	effective, err := a.Effective()
	if err != nil {
		return "", false, err
	}
	diff := udiff.Unified(WebConfigFile, WebConfigFile+" (effective)", xmlconfig.Pretty(base), xmlconfig.Pretty(effective))
	text, truncated := truncateLines(diff, maxLines)
	return text, truncated, nil
}

func truncateLines(s string, maxLines int) (string, bool) {
	trimmed := strings.TrimRight(s, "\n")
	if trimmed == "" {
		return "", false
	}
	lines := strings.Split(trimmed, "\n")
	if maxLines <= 0 || len(lines) <= maxLines {
		return trimmed + "\n", false
	}
	kept := append(lines[:maxLines:maxLines], fmt.Sprintf("... (truncated to %d lines)", maxLines))
	return strings.Join(kept, "\n") + "\n", true
}
