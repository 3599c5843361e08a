// Package paths provides centralized path handling for simctl.
//
// Directories follow the XDG Base Directory specification, each one
// overridable through the environment:
//
//   - SIMCTL_CONFIG_DIR: user configuration (default: $XDG_CONFIG_HOME/simctl)
//   - SIMCTL_DATA_DIR: persistent data (default: $XDG_DATA_HOME/simctl)
//   - SIMCTL_STATE_DIR: sites file, registry and log (default: $XDG_STATE_HOME/simctl)
//
// # Usage
//
//	p := paths.New()
//	sites := p.SitesFile()       // ~/.local/state/simctl/sites.toml
//	cfg := p.ConfigFile()        // ~/.config/simctl/config.toml
package paths
