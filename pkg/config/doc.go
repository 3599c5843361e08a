// Package config handles configuration management for simctl.
//
// Configuration is layered with koanf, later layers overriding earlier ones:
// embedded defaults, the user config file, SIMCTL_ environment variables
// (a double underscore separates levels) and command-line overrides.
package config
