package pipelines

import (
	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/lifecycle"
	"github.com/arthur-debert/simctl/pkg/pipeline"
	"github.com/spf13/afero"
)

// DeletePipeline removes an instance and everything it owns. Each step skips
// what is already gone, so deleting a half-installed instance works.
func DeletePipeline(d *Deps) *pipeline.Pipeline[*DeleteArgs] {
	return pipeline.New[*DeleteArgs](NameDelete,
		pipeline.NewStep("locate instance", func(a *DeleteArgs) error {
			inst, found, err := locate(d, a.Name)
			if err != nil || !found {
				return err
			}
			a.Instance = inst
			if a.RootPath == "" {
				a.RootPath = inst.RootPath
			}
			return nil
		}).
			WithSummary(func(a *DeleteArgs) string {
				if a.Instance == nil {
					return "no website found"
				}
				return a.Instance.RootPath
			}),
		stopStep[*DeleteArgs](d, func(a *DeleteArgs) *lifecycle.Instance { return a.Instance }),
		deleteWebsiteStep[*DeleteArgs](d, func(a *DeleteArgs) *lifecycle.Instance { return a.Instance }),
		pipeline.NewStep("delete registry entry", func(a *DeleteArgs) error {
			entry, found, err := d.Registry.FindEntry(lifecycle.MatchesInstance(a.Name, a.RootPath))
			if err != nil || !found {
				return err
			}
			return d.Registry.DeleteEntry(entry)
		}).
			OnlyIf(func(a *DeleteArgs) bool {
				if d.Registry == nil {
					return false
				}
				_, found, err := d.Registry.FindEntry(lifecycle.MatchesInstance(a.Name, a.RootPath))
				return err != nil || found
			}),
		deleteFilesStep[*DeleteArgs](d, func(a *DeleteArgs) string { return a.RootPath }),
	).WithValidators(func(a *DeleteArgs) error { return validateName(a.Name) })
}

// locate looks an instance up by name, treating a missing one as found=false.
func locate(d *Deps, name string) (*lifecycle.Instance, bool, error) {
	inst, err := d.Instances.Lookup(name)
	if errors.HasErrorCode(err, errors.ErrInstanceNotFound) {
		logger := d.logger()
		logger.Debug().Str("instance", name).Msg("No website to delete")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &inst, true, nil
}

func stopStep[A pipeline.Args](d *Deps, instance func(A) *lifecycle.Instance) *pipeline.FuncStep[A] {
	return pipeline.NewStep("stop", func(a A) error { return d.Instances.Stop(*instance(a)) }).
		OnlyIf(func(a A) bool {
			inst := instance(a)
			return inst != nil && inst.State != lifecycle.StateStopped
		})
}

func deleteWebsiteStep[A pipeline.Args](d *Deps, instance func(A) *lifecycle.Instance) *pipeline.FuncStep[A] {
	return pipeline.NewStep("delete website", func(a A) error { return d.Instances.Delete(*instance(a)) }).
		OnlyIf(func(a A) bool { return instance(a) != nil }).
		WithParams(func(a A) map[string]string { return map[string]string{"name": instance(a).Name} })
}

func deleteFilesStep[A pipeline.Args](d *Deps, root func(A) string) *pipeline.FuncStep[A] {
	return pipeline.NewStep("delete files", func(a A) error {
		if err := d.fs().RemoveAll(root(a)); err != nil {
			return errors.Wrap(err, errors.ErrFileWrite, "failed to delete instance files").
				WithDetail("path", root(a))
		}
		return nil
	}).
		OnlyIf(func(a A) bool {
			if root(a) == "" {
				return false
			}
			exists, _ := afero.Exists(d.fs(), root(a))
			return exists
		}).
		WithParams(func(a A) map[string]string { return map[string]string{"root": root(a)} })
}
