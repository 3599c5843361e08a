package pipelines

import (
	"strconv"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/lifecycle"
	"github.com/arthur-debert/simctl/pkg/pipeline"
	"github.com/spf13/afero"
)

// ImportPipeline registers an instance directory that was unpacked by other
// means, pointing its SQL connection strings at the given server.
func ImportPipeline(d *Deps) *pipeline.Pipeline[*ImportArgs] {
	return pipeline.New[*ImportArgs](NameImport,
		pipeline.NewStep("setup website", func(a *ImportArgs) error {
			inst, err := d.Instances.Create(a.siteConfig())
			if err != nil {
				return err
			}
			a.Instance = &inst
			return nil
		}).
			WithParams(func(a *ImportArgs) map[string]string {
				return map[string]string{"name": a.Name, "web_root": a.WebRootPath()}
			}),
		pipeline.NewStep("grant permissions", func(a *ImportArgs) error {
			paths := []string{a.WebRootPath()}
			if exists, _ := afero.DirExists(d.fs(), a.DataFolder()); exists {
				paths = append(paths, a.DataFolder())
			}
			return grantPermissions(d, a.Instance, paths...)
		}).
			OnlyIf(func(a *ImportArgs) bool {
				return a.Instance != nil && d.Security != nil
			}),
		pipeline.NewStep("update connection strings", func(a *ImportArgs) error {
			cs, err := lifecycle.LoadConnectionStrings(d.fs(), connectionStringsPath(a))
			if err != nil {
				return err
			}
			n, err := cs.RewriteSQL(a.Credentials, a.DatabaseSuffix)
			if err != nil {
				return err
			}
			a.Rewritten = n
			return cs.Save()
		}).
			OnlyIf(func(a *ImportArgs) bool {
				exists, _ := afero.Exists(d.fs(), connectionStringsPath(a))
				return exists
			}).
			WithParams(func(a *ImportArgs) map[string]string {
				return map[string]string{
					"data_source": a.Credentials.DataSource,
					"suffix":      strconv.Itoa(a.DatabaseSuffix),
				}
			}).
			WithSummary(func(a *ImportArgs) string { return strconv.Itoa(a.Rewritten) + " connection strings updated" }),
		pipeline.NewStep("write registry entry", func(a *ImportArgs) error {
			return putEntry(d, a.Name, a.RootPath, a.ProductName)
		}).
			OnlyIf(func(*ImportArgs) bool { return d.Registry != nil }),
	).WithValidators(
		func(a *ImportArgs) error { return validateName(a.Name) },
		func(a *ImportArgs) error { return ensureAbsent(d, a.Name) },
		func(a *ImportArgs) error {
			if a.RootPath == "" {
				return errors.New(errors.ErrInvalidInput, "root path is required")
			}
			if exists, _ := afero.DirExists(d.fs(), a.WebRootPath()); !exists {
				return errors.Newf(errors.ErrFileNotFound, "%s has no %s folder", a.RootPath, WebsiteDir).
					WithDetail("path", a.WebRootPath())
			}
			return nil
		},
		func(a *ImportArgs) error {
			if a.Credentials.DataSource == "" {
				return errors.New(errors.ErrInvalidInput, "SQL data source is required")
			}
			return nil
		},
	)
}

func connectionStringsPath(a *ImportArgs) string {
	return lifecycle.ConnectionStringsPath(a.WebRootPath())
}
