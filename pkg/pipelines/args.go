package pipelines

import (
	"path/filepath"

	"github.com/arthur-debert/simctl/pkg/lifecycle"
	"github.com/arthur-debert/simctl/pkg/pipeline"
	"github.com/arthur-debert/simctl/pkg/product"
	"github.com/arthur-debert/simctl/pkg/sqlconn"
)

// Layout of an instance root directory.
const (
	WebsiteDir   = "Website"
	DataDir      = "Data"
	DatabasesDir = "Databases"
)

// NoDatabaseSuffix leaves database names as they are when importing.
const NoDatabaseSuffix = -1

// InstallArgs drives the install pipeline.
type InstallArgs struct {
	pipeline.Cancellation

	Name            string
	HostName        string
	ProductName     string
	RootPath        string
	AppPoolIdentity string
	Net4            bool
	Classic         bool
	Is32Bit         bool

	// Set by the steps.
	Product   product.Product
	Instance  *lifecycle.Instance
	Extracted int
}

// Target implements pipeline.Args.
func (a *InstallArgs) Target() string { return a.Name }

// WebRootPath is the directory the site serves.
func (a *InstallArgs) WebRootPath() string { return filepath.Join(a.RootPath, WebsiteDir) }

// DataFolder is the instance data directory.
func (a *InstallArgs) DataFolder() string { return filepath.Join(a.RootPath, DataDir) }

func (a *InstallArgs) siteConfig() lifecycle.SiteConfig {
	return lifecycle.SiteConfig{
		Name:            a.Name,
		HostNames:       hostNames(a.HostName),
		RootPath:        a.RootPath,
		WebRootPath:     a.WebRootPath(),
		DataFolder:      a.DataFolder(),
		AppPoolIdentity: a.AppPoolIdentity,
		Net4:            a.Net4,
		Classic:         a.Classic,
		Is32Bit:         a.Is32Bit,
	}
}

// DeleteArgs drives the delete pipeline. RootPath is optional; when empty it
// is taken from the located instance.
type DeleteArgs struct {
	pipeline.Cancellation

	Name     string
	RootPath string

	Instance *lifecycle.Instance
}

// Target implements pipeline.Args.
func (a *DeleteArgs) Target() string { return a.Name }

// ReinstallArgs drives the reinstall pipeline. ProductName overrides the
// product recorded in the registry.
type ReinstallArgs struct {
	pipeline.Cancellation

	Name        string
	ProductName string

	// Filled by the locate step from the existing instance.
	Install InstallArgs
	Delete  DeleteArgs
}

// Target implements pipeline.Args.
func (a *ReinstallArgs) Target() string { return a.Name }

// ImportArgs drives the import pipeline for an unpacked instance directory.
type ImportArgs struct {
	pipeline.Cancellation

	Name            string
	HostName        string
	RootPath        string
	ProductName     string
	AppPoolIdentity string
	Net4            bool
	Classic         bool
	Is32Bit         bool
	Credentials     sqlconn.Credentials
	// DatabaseSuffix is appended to each catalog name unless it is
	// NoDatabaseSuffix.
	DatabaseSuffix int

	Instance  *lifecycle.Instance
	Rewritten int
}

// Target implements pipeline.Args.
func (a *ImportArgs) Target() string { return a.Name }

// WebRootPath is the directory the site serves.
func (a *ImportArgs) WebRootPath() string { return filepath.Join(a.RootPath, WebsiteDir) }

// DataFolder is the instance data directory.
func (a *ImportArgs) DataFolder() string { return filepath.Join(a.RootPath, DataDir) }

func (a *ImportArgs) siteConfig() lifecycle.SiteConfig {
	return lifecycle.SiteConfig{
		Name:            a.Name,
		HostNames:       hostNames(a.HostName),
		RootPath:        a.RootPath,
		WebRootPath:     a.WebRootPath(),
		DataFolder:      a.DataFolder(),
		AppPoolIdentity: a.AppPoolIdentity,
		Net4:            a.Net4,
		Classic:         a.Classic,
		Is32Bit:         a.Is32Bit,
	}
}

func hostNames(host string) []string {
	if host == "" {
		return nil
	}
	return []string{host}
}
