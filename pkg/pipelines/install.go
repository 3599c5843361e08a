package pipelines

import (
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/lifecycle"
	"github.com/arthur-debert/simctl/pkg/pipeline"
	"github.com/arthur-debert/simctl/pkg/runtimeconfig"
	"github.com/arthur-debert/simctl/pkg/xmlconfig"
	"github.com/beevik/etree"
	"github.com/spf13/afero"
)

// Pipeline names.
const (
	NameInstall   = "install"
	NameDelete    = "delete"
	NameReinstall = "reinstall"
	NameImport    = "import"
)

// DataFolderInclude is the include file that points the instance at its data
// folder.
const DataFolderInclude = "DataFolder.config"

const seedWebConfig = `<configuration>
  <sitecore>
    <sc.variable name="dataFolder" value="/App_Data" />
  </sitecore>
</configuration>
`

var instanceName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

func validateName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "instance name is required")
	}
	if !instanceName.MatchString(name) {
		return errors.Newf(errors.ErrInvalidInput, "instance name %q may only contain letters, digits, '.', '-' and '_'", name).
			WithDetail("name", name)
	}
	return nil
}

// InstallPipeline extracts a product into a fresh instance and registers it.
func InstallPipeline(d *Deps) *pipeline.Pipeline[*InstallArgs] {
	return pipeline.New[*InstallArgs](NameInstall, installSteps(d, true)...).
		WithValidators(
			func(a *InstallArgs) error { return validateName(a.Name) },
			func(a *InstallArgs) error {
				if a.ProductName == "" {
					return errors.New(errors.ErrInvalidInput, "product is required")
				}
				if a.RootPath == "" {
					return errors.New(errors.ErrInvalidInput, "root path is required")
				}
				return nil
			},
			func(a *InstallArgs) error { return ensureAbsent(d, a.Name) },
			func(a *InstallArgs) error { return ensureEmptyDir(d, a.RootPath) },
		)
}

// installSteps returns the install chain. Reinstall resolves the product
// before deleting anything, so it asks for the chain without that step.
func installSteps(d *Deps, withResolve bool) []pipeline.Step[*InstallArgs] {
	var steps []pipeline.Step[*InstallArgs]
	if withResolve {
		steps = append(steps,
			pipeline.NewStep("resolve product", func(a *InstallArgs) error { return resolveProduct(d, a) }).
				WithParams(func(a *InstallArgs) map[string]string {
					return map[string]string{"product": a.ProductName}
				}).
				WithSummary(func(a *InstallArgs) string { return a.Product.String() }))
	}
	return append(steps,
		pipeline.NewStep("prepare directory", func(a *InstallArgs) error { return prepareDirectory(d, a) }).
			WithParams(func(a *InstallArgs) map[string]string {
				return map[string]string{"root": a.RootPath, "archive": a.Product.ArchivePath}
			}).
			WithSummary(func(a *InstallArgs) string { return strconv.Itoa(a.Extracted) + " files extracted" }),
		pipeline.NewStep("setup website", func(a *InstallArgs) error {
			inst, err := d.Instances.Create(a.siteConfig())
			if err != nil {
				return err
			}
			a.Instance = &inst
			return nil
		}).
			WithParams(func(a *InstallArgs) map[string]string {
				return map[string]string{"name": a.Name, "web_root": a.WebRootPath()}
			}).
			WithSummary(func(a *InstallArgs) string { return "app pool " + a.Instance.AppPool.Name }),
		pipeline.NewStep("grant permissions", func(a *InstallArgs) error {
			return grantPermissions(d, a.Instance, a.WebRootPath(), a.DataFolder())
		}).
			OnlyIf(func(a *InstallArgs) bool { return a.Instance != nil && d.Security != nil }).
			WithParams(func(a *InstallArgs) map[string]string {
				return map[string]string{"identity": poolAccount(a.Instance.AppPool)}
			}),
		pipeline.NewStep("apply configuration", func(a *InstallArgs) error {
			return applyDataFolder(d, a.WebRootPath(), a.DataFolder())
		}).
			WithParams(func(a *InstallArgs) map[string]string {
				return map[string]string{"data_folder": a.DataFolder()}
			}).
			WithSummary(func(a *InstallArgs) string { return "dataFolder = " + a.DataFolder() }),
		pipeline.NewStep("write registry entry", func(a *InstallArgs) error {
			return putEntry(d, a.Name, a.RootPath, a.Product.String())
		}).
			OnlyIf(func(*InstallArgs) bool { return d.Registry != nil }),
	)
}

func ensureAbsent(d *Deps, name string) error {
	_, err := d.Instances.Lookup(name)
	switch {
	case err == nil:
		return errors.Newf(errors.ErrInstanceExists, "instance %q already exists", name).
			WithDetail("instance", name)
	case errors.HasErrorCode(err, errors.ErrInstanceNotFound):
		return nil
	default:
		return err
	}
}

func ensureEmptyDir(d *Deps, dir string) error {
	exists, err := afero.DirExists(d.fs(), dir)
	if err != nil || !exists {
		return nil
	}
	empty, err := afero.IsEmpty(d.fs(), dir)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "failed to read root path").WithDetail("path", dir)
	}
	if !empty {
		return errors.Newf(errors.ErrAlreadyExists, "root path %s is not empty", dir).WithDetail("path", dir)
	}
	return nil
}

func resolveProduct(d *Deps, a *InstallArgs) error {
	p := d.Products.GetProduct(a.ProductName)
	if p.Synthetic {
		return errors.Newf(errors.ErrProductNotFound, "product %q is not in the repository", a.ProductName).
			WithDetail("product", a.ProductName)
	}
	if !p.IsStandalone {
		return errors.Newf(errors.ErrProductInvalid, "%s is a module and cannot be installed as an instance", p).
			WithDetail("product", p.String())
	}
	a.Product = p
	return nil
}

func prepareDirectory(d *Deps, a *InstallArgs) error {
	fs := d.fs()
	if err := fs.MkdirAll(a.RootPath, 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create root path").WithDetail("path", a.RootPath)
	}
	if a.Product.ArchivePath != "" {
		n, err := extractArchive(fs, a.Product.ArchivePath, a.RootPath)
		a.Extracted = n
		if err != nil {
			return err
		}
	}

	includeDir := filepath.Join(a.WebRootPath(), filepath.FromSlash(runtimeconfig.IncludeDir))
	for _, dir := range []string{includeDir, a.DataFolder()} {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, errors.ErrDirCreate, "failed to create directory").WithDetail("path", dir)
		}
	}

	webConfig := filepath.Join(a.WebRootPath(), runtimeconfig.WebConfigFile)
	if ok, _ := afero.Exists(fs, webConfig); !ok {
		logger := d.logger()
		logger.Warn().Str("path", webConfig).Msg("Product has no web.config, seeding a default one")
		if err := afero.WriteFile(fs, webConfig, []byte(seedWebConfig), 0644); err != nil {
			return errors.Wrap(err, errors.ErrFileWrite, "failed to write web.config").WithDetail("path", webConfig)
		}
	}
	return nil
}

// poolAccount is the account an application pool runs as.
func poolAccount(pool lifecycle.AppPool) string {
	if pool.IdentityType == lifecycle.IdentityApplicationPoolIdentity {
		return `IIS APPPOOL\` + pool.Name
	}
	return pool.Identity
}

func grantPermissions(d *Deps, inst *lifecycle.Instance, paths ...string) error {
	identity := poolAccount(inst.AppPool)
	for _, p := range paths {
		if err := d.Security.EnsureFullControl(p, identity); err != nil {
			return err
		}
	}
	return nil
}

// applyDataFolder writes the dataFolder include and checks that the
// effective configuration picked it up.
func applyDataFolder(d *Deps, webRoot, dataFolder string) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	root := doc.CreateElement("configuration")
	root.CreateAttr("xmlns:patch", "http://www.sitecore.net/xmlconfig/")
	variable, err := xmlconfig.EnsureElement(doc, "configuration/sitecore/sc.variable")
	if err != nil {
		return err
	}
	variable.CreateAttr("name", "dataFolder")
	variable.CreateAttr("value", filepath.ToSlash(dataFolder))

	path := filepath.Join(webRoot, filepath.FromSlash(runtimeconfig.IncludeDir), DataFolderInclude)
	if err := xmlconfig.Save(d.fs(), path, doc); err != nil {
		return err
	}

	got, err := runtimeconfig.New(webRoot, runtimeconfig.Options{FS: d.fs(), Logger: d.logger()}).Variable("dataFolder")
	if err != nil {
		return err
	}
	if got != filepath.ToSlash(dataFolder) {
		return errors.Newf(errors.ErrInternal, "effective dataFolder is %q, expected %q", got, filepath.ToSlash(dataFolder)).
			WithDetail("web_root", webRoot)
	}
	return nil
}

func putEntry(d *Deps, name, root, productName string) error {
	return d.Registry.PutEntry(lifecycle.RegistryEntry{
		Key:               name,
		InstanceName:      name,
		InstanceDirectory: root,
		Product:           productName,
	})
}
