package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/logging"
	"github.com/arthur-debert/simctl/pkg/product"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// DefaultExtensions are the archive extensions scanned in a repository.
var DefaultExtensions = []string{".zip"}

// Source is where a refresh reads archives from: a directory scanned
// recursively, or an explicit list of archive paths.
type Source struct {
	Dir   string
	Files []string
}

// DirSource returns a Source scanning dir recursively.
func DirSource(dir string) Source {
	return Source{Dir: dir}
}

// FileSource returns a Source over an explicit archive list.
func FileSource(files ...string) Source {
	return Source{Files: files}
}

// Options contains configuration for a Catalog
type Options struct {
	FS         afero.Fs
	Parser     *product.Parser
	Extensions []string
	Logger     zerolog.Logger
}

// RefreshReport summarizes one refresh.
type RefreshReport struct {
	Scanned    int
	Added      int
	NotProduct int
	Duplicates int
}

// InitializedFunc is called once after every refresh with the published snapshot.
type InitializedFunc func(*Snapshot, RefreshReport)

// Catalog is the process-wide collection of known products.
type Catalog struct {
	fs         afero.Fs
	parser     *product.Parser
	extensions []string
	logger     zerolog.Logger

	writer   sync.Mutex
	snapshot atomic.Pointer[Snapshot]
}

// New creates an empty catalog.
func New(opts Options) *Catalog {
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	parser := opts.Parser
	if parser == nil {
		parser = product.NewParser(nil)
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}

	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("catalog")
	}

	c := &Catalog{
		fs:         fs,
		parser:     parser,
		extensions: normalized,
		logger:     logger,
	}
	c.snapshot.Store(newSnapshot(nil, parser))
	return c
}

// Snapshot returns the currently published snapshot.
func (c *Catalog) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// Parser returns the parser used to classify archives.
func (c *Catalog) Parser() *product.Parser {
	return c.parser
}

// Refresh rebuilds the catalog from src and publishes the result.
//
// Archives that are not products and duplicates of an already seen identity
// are skipped. onInitialized, when non-nil, is called exactly once per call
// after the new snapshot is published, including when the scan found nothing
// or the repository directory is missing. In the latter case the published
// catalog is empty and a CONFIG_INVALID error is returned.
func (c *Catalog) Refresh(src Source, onInitialized InitializedFunc) (RefreshReport, error) {
	c.writer.Lock()
	defer c.writer.Unlock()

	done := logging.LogOperationStart(c.logger, "refresh catalog")
	defer done()

	files, listErr := c.listFiles(src)

	var report RefreshReport
	var products []product.Product
	seen := make(map[string]bool)

	for _, file := range files {
		report.Scanned++

		p, ok := c.parser.TryParse(file)
		if !ok {
			report.NotProduct++
			c.logger.Trace().Str("file", file).Msg("Skipped (not a product)")
			continue
		}

		if seen[p.Key()] {
			report.Duplicates++
			c.logger.Debug().Str("file", file).Str("product", p.String()).Msg("Skipped (already exists)")
			continue
		}

		seen[p.Key()] = true
		products = append(products, p)
		report.Added++
		c.logger.Trace().Str("file", file).Str("product", p.String()).Msg("Added")
	}

	snap := newSnapshot(products, c.parser)
	c.snapshot.Store(snap)

	c.logger.Info().
		Int("scanned", report.Scanned).
		Int("products", report.Added).
		Int("modules", len(snap.modules)).
		Int("duplicates", report.Duplicates).
		Msg("Catalog refreshed")

	if onInitialized != nil {
		onInitialized(snap, report)
	}

	return report, listErr
}

func (c *Catalog) listFiles(src Source) ([]string, error) {
	if src.Dir == "" {
		return src.Files, nil
	}

	info, err := c.fs.Stat(src.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrConfigValid, "the local repository folder (%s) doesn't exist", src.Dir).
				WithDetail("path", src.Dir)
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot access local repository").
			WithDetail("path", src.Dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrConfigValid, "the local repository (%s) is not a directory", src.Dir).
			WithDetail("path", src.Dir)
	}

	var files []string
	walkErr := afero.Walk(c.fs, src.Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			c.logger.Warn().Err(err).Str("path", path).Msg("Cannot read repository entry, skipping")
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if c.hasArchiveExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return files, errors.Wrap(walkErr, errors.ErrFileAccess, "failed to scan local repository").
			WithDetail("path", src.Dir)
	}
	return files, nil
}

func (c *Catalog) hasArchiveExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range c.extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// Products returns all products of the current snapshot.
func (c *Catalog) Products() []product.Product { return c.Snapshot().Products() }

// Modules returns the modules of the current snapshot.
func (c *Catalog) Modules() []product.Product { return c.Snapshot().Modules() }

// StandaloneProducts returns standalone products, highest SortOrder first.
func (c *Catalog) StandaloneProducts() []product.Product { return c.Snapshot().StandaloneProducts() }

// GetProduct resolves a product by name with hotfix and parse fallbacks.
func (c *Catalog) GetProduct(name string) product.Product { return c.Snapshot().GetProduct(name) }

// GetProducts filters products by name, version and revision.
func (c *Catalog) GetProducts(name, version, revision string) []product.Product {
	return c.Snapshot().GetProducts(name, version, revision)
}
