package pipelines

import "github.com/arthur-debert/simctl/pkg/pipeline"

// Registries holds one pipeline registry per arguments type.
type Registries struct {
	Install   *pipeline.Registry[*InstallArgs]
	Delete    *pipeline.Registry[*DeleteArgs]
	Reinstall *pipeline.Registry[*ReinstallArgs]
	Import    *pipeline.Registry[*ImportArgs]
}

// Default builds the standard pipelines over d.
func Default(d *Deps) (*Registries, error) {
	install, err := pipeline.NewRegistry(InstallPipeline(d))
	if err != nil {
		return nil, err
	}
	del, err := pipeline.NewRegistry(DeletePipeline(d))
	if err != nil {
		return nil, err
	}
	reinstall, err := pipeline.NewRegistry(ReinstallPipeline(d))
	if err != nil {
		return nil, err
	}
	imp, err := pipeline.NewRegistry(ImportPipeline(d))
	if err != nil {
		return nil, err
	}
	return &Registries{Install: install, Delete: del, Reinstall: reinstall, Import: imp}, nil
}

// Names lists every registered pipeline.
func (r *Registries) Names() []string {
	var names []string
	names = append(names, r.Install.Names()...)
	names = append(names, r.Delete.Names()...)
	names = append(names, r.Reinstall.Names()...)
	names = append(names, r.Import.Names()...)
	return names
}
