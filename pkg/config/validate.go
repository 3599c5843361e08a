package config

import (
	"os"
	"strings"

	"github.com/arthur-debert/simctl/pkg/errors"
)

type validator func(*Config) error

var validators = []validator{
	validateRepository,
	validateExtensions,
	validateStandaloneProducts,
	validateInstances,
	validateState,
}

// Validate runs every check and returns the first failure.
func Validate(cfg *Config) error {
	for _, v := range validators {
		if err := v(cfg); err != nil {
			return err
		}
	}
	return nil
}

func invalid(key, format string, args ...interface{}) error {
	return errors.Newf(errors.ErrConfigValid, format, args...).WithDetail("key", key)
}

// validateRepository accepts an unset or missing repository; the catalog
// reports those when it is refreshed.
func validateRepository(cfg *Config) error {
	if cfg.Repository == "" {
		return nil
	}
	info, err := os.Stat(cfg.Repository)
	if err == nil && !info.IsDir() {
		return invalid("repository", "repository %s is not a directory", cfg.Repository)
	}
	return nil
}

func validateExtensions(cfg *Config) error {
	if len(cfg.Catalog.Extensions) == 0 {
		return invalid("catalog.extensions", "at least one archive extension is required")
	}
	for _, ext := range cfg.Catalog.Extensions {
		if ext == "" || ext == "." || strings.ContainsAny(ext, `/\ `) {
			return invalid("catalog.extensions", "invalid archive extension %q", ext)
		}
	}
	return nil
}

func validateStandaloneProducts(cfg *Config) error {
	for _, name := range cfg.Catalog.StandaloneProducts {
		if strings.TrimSpace(name) == "" {
			return invalid("catalog.standalone_products", "standalone product names cannot be empty")
		}
	}
	return nil
}

func validateInstances(cfg *Config) error {
	if cfg.Instances.Root == "" {
		return invalid("instances.root", "instances root is required")
	}
	if strings.TrimSpace(cfg.Instances.AppPoolIdentity) == "" {
		return invalid("instances.app_pool_identity", "app pool identity is required")
	}
	if strings.ContainsAny(cfg.Instances.HostSuffix, " /\\") {
		return invalid("instances.host_suffix", "host suffix %q is not a valid host name part", cfg.Instances.HostSuffix)
	}
	return nil
}

func validateState(cfg *Config) error {
	if strings.EqualFold(cfg.State.SitesFile, cfg.State.RegistryFile) {
		return invalid("state", "sites file and registry file must differ")
	}
	return nil
}
