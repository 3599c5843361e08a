package pipelines

import (
	"github.com/arthur-debert/simctl/pkg/lifecycle"
	"github.com/arthur-debert/simctl/pkg/logging"
	"github.com/arthur-debert/simctl/pkg/product"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ProductResolver resolves product references; *catalog.Catalog satisfies it.
type ProductResolver interface {
	GetProduct(name string) product.Product
}

// Deps are the collaborators the steps drive.
type Deps struct {
	FS        afero.Fs
	Products  ProductResolver
	Instances lifecycle.InstanceProvider
	Registry  lifecycle.RegistryStore
	Security  lifecycle.SecurityProvider
	Logger    zerolog.Logger
}

func (d *Deps) logger() zerolog.Logger {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return logging.GetLogger("pipelines")
	}
	return d.Logger
}

func (d *Deps) fs() afero.Fs {
	if d.FS == nil {
		d.FS = afero.NewOsFs()
	}
	return d.FS
}
