package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override configuration keys.
const EnvPrefix = "SIMCTL_"

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// DefaultContent returns the embedded defaults file.
func DefaultContent() string {
	return string(defaultConfig)
}

// LoadOptions controls which layers Load reads.
type LoadOptions struct {
	// ConfigFile is the user config file. Empty means the XDG location, which
	// may be absent; an explicit file must exist.
	ConfigFile string
	// Overrides are dotted keys applied last, typically from flags.
	Overrides map[string]interface{}
	// SkipFile ignores the user config file.
	SkipFile bool
	// SkipEnv ignores SIMCTL_ environment variables.
	SkipEnv bool
	// Paths resolves default state locations; nil means paths.New().
	Paths *paths.Paths
}

// Load builds the configuration from every layer, then post-processes and
// validates it.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config file
	p := opts.Paths
	if p == nil {
		p = paths.New()
	}
	configFile, explicit := opts.ConfigFile, opts.ConfigFile != ""
	if !explicit {
		configFile = p.ConfigFile()
	}
	configFile = paths.ExpandHome(configFile)
	if !opts.SkipFile {
		if err := loadFile(k, configFile, explicit); err != nil {
			return nil, err
		}
	}

	// 3. Environment
	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	postProcessConfig(cfg, p)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if required {
			return errors.Wrapf(err, errors.ErrConfigLoad, "config file %s does not exist", path).
				WithDetail("path", path)
		}
		return nil
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
			WithDetail("path", path)
	}
	return nil
}

// Default returns the configuration from the embedded defaults alone.
func Default() *Config {
	cfg, err := Load(LoadOptions{SkipFile: true, SkipEnv: true})
	if err != nil {
		panic("embedded defaults are invalid: " + err.Error())
	}
	return cfg
}

// envKey maps SIMCTL_INSTANCES__APP_POOL_IDENTITY to
// instances.app_pool_identity. Directory overrides owned by the paths
// package are skipped.
func envKey(s string) string {
	switch s {
	case paths.EnvConfigDir, paths.EnvDataDir, paths.EnvStateDir:
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	return &cfg, nil
}

func postProcessConfig(cfg *Config, p *paths.Paths) {
	cfg.Repository = absPath(cfg.Repository)
	cfg.Instances.Root = absPath(cfg.Instances.Root)

	if cfg.State.SitesFile == "" {
		cfg.State.SitesFile = p.SitesFile()
	}
	if cfg.State.RegistryFile == "" {
		cfg.State.RegistryFile = p.RegistryFile()
	}
	cfg.State.SitesFile = absPath(cfg.State.SitesFile)
	cfg.State.RegistryFile = absPath(cfg.State.RegistryFile)

	exts := make([]string, 0, len(cfg.Catalog.Extensions))
	for _, ext := range cfg.Catalog.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	cfg.Catalog.Extensions = exts
}

func absPath(p string) string {
	if p == "" {
		return ""
	}
	p = paths.ExpandHome(p)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
