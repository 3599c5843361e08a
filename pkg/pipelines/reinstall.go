package pipelines

import (
	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/lifecycle"
	"github.com/arthur-debert/simctl/pkg/pipeline"
)

// ReinstallPipeline wipes an instance and installs the same product again
// with the same site settings. The registry entry is overwritten rather than
// deleted, so the instance stays listed if the install half fails.
func ReinstallPipeline(d *Deps) *pipeline.Pipeline[*ReinstallArgs] {
	instance := func(a *ReinstallArgs) *lifecycle.Instance { return a.Delete.Instance }

	steps := []pipeline.Step[*ReinstallArgs]{
		pipeline.NewStep("locate instance", func(a *ReinstallArgs) error { return locateForReinstall(d, a) }).
			WithParams(func(a *ReinstallArgs) map[string]string {
				return map[string]string{"product": a.ProductName}
			}).
			WithSummary(func(a *ReinstallArgs) string { return a.Install.Product.String() }),
		stopStep[*ReinstallArgs](d, instance),
		deleteWebsiteStep[*ReinstallArgs](d, instance),
		deleteFilesStep[*ReinstallArgs](d, func(a *ReinstallArgs) string { return a.Delete.RootPath }),
	}
	for _, s := range installSteps(d, false) {
		steps = append(steps, &installStep{inner: s})
	}
	return pipeline.New[*ReinstallArgs](NameReinstall, steps...).
		WithValidators(func(a *ReinstallArgs) error { return validateName(a.Name) })
}

// locateForReinstall fills both halves of the arguments from the existing
// instance and resolves the product before anything is removed.
func locateForReinstall(d *Deps, a *ReinstallArgs) error {
	inst, err := d.Instances.Lookup(a.Name)
	if err != nil {
		return err
	}

	productName := a.ProductName
	if productName == "" && d.Registry != nil {
		entry, found, err := d.Registry.FindEntry(lifecycle.MatchesInstance(inst.Name, inst.RootPath))
		if err != nil {
			return err
		}
		if found {
			productName = entry.Product
		}
	}
	if productName == "" {
		return errors.Newf(errors.ErrProductNotFound, "no product is recorded for %s, pass one explicitly", inst.Name).
			WithDetail("instance", inst.Name)
	}

	host := ""
	if len(inst.HostNames) > 0 {
		host = inst.HostNames[0]
	}
	a.Delete.Name = inst.Name
	a.Delete.RootPath = inst.RootPath
	a.Delete.Instance = &inst

	a.Install.Name = inst.Name
	a.Install.HostName = host
	a.Install.ProductName = productName
	a.Install.RootPath = inst.RootPath
	a.Install.AppPoolIdentity = inst.AppPool.Identity
	a.Install.Net4 = inst.AppPool.Net4
	a.Install.Classic = inst.AppPool.Classic
	a.Install.Is32Bit = inst.AppPool.Is32Bit
	return resolveProduct(d, &a.Install)
}

// installStep runs an install step against the install half of reinstall
// arguments.
type installStep struct {
	inner pipeline.Step[*InstallArgs]
}

func (s *installStep) Name() string { return s.inner.Name() }

func (s *installStep) ShouldRun(a *ReinstallArgs) bool { return s.inner.ShouldRun(&a.Install) }

func (s *installStep) Run(a *ReinstallArgs) error { return s.inner.Run(&a.Install) }

func (s *installStep) Params(a *ReinstallArgs) map[string]string {
	if r, ok := s.inner.(pipeline.ParamReporter[*InstallArgs]); ok {
		return r.Params(&a.Install)
	}
	return nil
}

func (s *installStep) Summary(a *ReinstallArgs) string {
	if r, ok := s.inner.(pipeline.Summarizer[*InstallArgs]); ok {
		return r.Summary(&a.Install)
	}
	return ""
}
