package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
)

// Environment variable names
const (
	// EnvDataDir overrides the XDG data directory for simctl
	EnvDataDir = "SIMCTL_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for simctl
	EnvConfigDir = "SIMCTL_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for simctl
	EnvStateDir = "SIMCTL_STATE_DIR"
)

// Default directories and files
const (
	// AppDirName is the directory name for simctl-specific files
	AppDirName = "simctl"

	// ConfigFileName is the user configuration file
	ConfigFileName = "config.toml"

	// SitesFileName holds the provisioned sites
	SitesFileName = "sites.toml"

	// RegistryFileName holds the instance registry
	RegistryFileName = "registry.yaml"

	// LogFileName is the name of the log file
	LogFileName = "simctl.log"
)

// Paths resolves the directories simctl reads and writes.
type Paths struct {
	configDir string
	dataDir   string
	stateDir  string
}

// New resolves directories from the environment.
func New() *Paths {
	return &Paths{
		configDir: fromEnv(EnvConfigDir, xdg.ConfigHome),
		dataDir:   fromEnv(EnvDataDir, xdg.DataHome),
		stateDir:  fromEnv(EnvStateDir, xdg.StateHome),
	}
}

func fromEnv(name, xdgBase string) string {
	if dir := os.Getenv(name); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdgBase, AppDirName)
}

// ConfigDir returns the config directory path
func (p *Paths) ConfigDir() string { return p.configDir }

// DataDir returns the data directory path
func (p *Paths) DataDir() string { return p.dataDir }

// StateDir returns the state directory path
func (p *Paths) StateDir() string { return p.stateDir }

// ConfigFile returns the user configuration file path
func (p *Paths) ConfigFile() string { return filepath.Join(p.configDir, ConfigFileName) }

// SitesFile returns the default sites file path
func (p *Paths) SitesFile() string { return filepath.Join(p.stateDir, SitesFileName) }

// RegistryFile returns the default registry file path
func (p *Paths) RegistryFile() string { return filepath.Join(p.stateDir, RegistryFileName) }

// LogFile returns the log file path
func (p *Paths) LogFile() string { return filepath.Join(p.stateDir, LogFileName) }

// ExpandHome expands a leading ~ to the user's home directory. Paths that
// cannot be expanded are returned as-is.
func ExpandHome(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}
