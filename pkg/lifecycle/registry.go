package lifecycle

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// RegistryEntry is the persisted installation record of an instance.
type RegistryEntry struct {
	Key               string `yaml:"key"`
	InstanceName      string `yaml:"instance_name"`
	InstanceDirectory string `yaml:"instance_directory"`
	Product           string `yaml:"product"`
}

// RegistryStore persists installation records.
type RegistryStore interface {
	// FindEntry returns the first entry matching pred.
	FindEntry(pred func(RegistryEntry) bool) (RegistryEntry, bool, error)
	// DeleteEntry removes entry; a missing entry is not an error.
	DeleteEntry(entry RegistryEntry) error
	// PutEntry adds entry or replaces the one with the same key.
	PutEntry(entry RegistryEntry) error
}

// MatchesInstance selects the entry recorded for a site name or install
// directory. Directories compare without trailing separators and ignoring
// case.
func MatchesInstance(name, dir string) func(RegistryEntry) bool {
	return func(e RegistryEntry) bool {
		if name != "" && strings.EqualFold(e.InstanceName, name) {
			return true
		}
		return dir != "" && e.InstanceDirectory != "" && SamePath(e.InstanceDirectory, dir)
	}
}

type registryFile struct {
	Entries []RegistryEntry `yaml:"entries"`
}

// FileRegistryOptions configures a FileRegistry.
type FileRegistryOptions struct {
	FS     afero.Fs
	Path   string
	Logger zerolog.Logger
}

// FileRegistry is a RegistryStore over a YAML file.
type FileRegistry struct {
	mu     sync.Mutex
	fs     afero.Fs
	path   string
	logger zerolog.Logger
}

var _ RegistryStore = (*FileRegistry)(nil)

// NewFileRegistry creates a registry backed by opts.Path.
func NewFileRegistry(opts FileRegistryOptions) *FileRegistry {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("lifecycle.registry")
	}
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileRegistry{fs: fs, path: opts.Path, logger: logger}
}

func (r *FileRegistry) load() (*registryFile, error) {
	file := &registryFile{}
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if exists, _ := afero.Exists(r.fs, r.path); !exists {
			return file, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read registry file").
			WithDetail("path", r.path)
	}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse registry file").
			WithDetail("path", r.path)
	}
	return file, nil
}

func (r *FileRegistry) save(file *registryFile) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode registry file")
	}
	if err := r.fs.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create state directory").
			WithDetail("path", filepath.Dir(r.path))
	}
	if err := afero.WriteFile(r.fs, r.path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write registry file").
			WithDetail("path", r.path)
	}
	return nil
}

func (r *FileRegistry) FindEntry(pred func(RegistryEntry) bool) (RegistryEntry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return RegistryEntry{}, false, err
	}
	for _, e := range file.Entries {
		if pred(e) {
			return e, true, nil
		}
	}
	return RegistryEntry{}, false, nil
}

func (r *FileRegistry) DeleteEntry(entry RegistryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return err
	}
	for i, e := range file.Entries {
		if e.Key == entry.Key {
			file.Entries = append(file.Entries[:i], file.Entries[i+1:]...)
			r.logger.Info().
				Str("key", e.Key).
				Str("site", e.InstanceName).
				Msg("Deleting registry entry")
			return r.save(file)
		}
	}
	r.logger.Debug().Str("key", entry.Key).Msg("Registry entry already absent")
	return nil
}

func (r *FileRegistry) PutEntry(entry RegistryEntry) error {
	if strings.TrimSpace(entry.Key) == "" {
		return errors.New(errors.ErrInvalidInput, "registry entry key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return err
	}
	replaced := false
	for i, e := range file.Entries {
		if e.Key == entry.Key {
			file.Entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		file.Entries = append(file.Entries, entry)
	}
	if err := r.save(file); err != nil {
		return err
	}
	r.logger.Info().
		Str("key", entry.Key).
		Str("site", entry.InstanceName).
		Bool("replaced", replaced).
		Msg("Registry entry written")
	return nil
}
