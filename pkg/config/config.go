package config

// Config is the resolved simctl configuration.
type Config struct {
	Repository string          `koanf:"repository"`
	Catalog    CatalogConfig   `koanf:"catalog"`
	Instances  InstancesConfig `koanf:"instances"`
	State      StateConfig     `koanf:"state"`
	SQL        SQLConfig       `koanf:"sql"`
}

// CatalogConfig controls how the repository is scanned.
type CatalogConfig struct {
	Extensions         []string `koanf:"extensions"`
	StandaloneProducts []string `koanf:"standalone_products"`
}

// InstancesConfig holds defaults for new instances.
type InstancesConfig struct {
	Root            string `koanf:"root"`
	HostSuffix      string `koanf:"host_suffix"`
	AppPoolIdentity string `koanf:"app_pool_identity"`
	Net4            bool   `koanf:"net4"`
	Classic         bool   `koanf:"classic"`
	Is32Bit         bool   `koanf:"is_32bit"`
}

// StateConfig locates the files simctl keeps its own state in.
type StateConfig struct {
	SitesFile    string `koanf:"sites_file"`
	RegistryFile string `koanf:"registry_file"`
}

// SQLConfig is the default server imported instances are pointed at.
type SQLConfig struct {
	DataSource string `koanf:"data_source"`
	UserID     string `koanf:"user_id"`
	Password   string `koanf:"password"`
}

// HostName returns the default host name for an instance.
func (c *Config) HostName(instance string) string {
	return instance + c.Instances.HostSuffix
}
