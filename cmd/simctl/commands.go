package simctl

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/simctl/pkg/display"
	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/logging"
	"github.com/arthur-debert/simctl/pkg/paths"
	"github.com/arthur-debert/simctl/pkg/pipeline"
	"github.com/arthur-debert/simctl/pkg/pipelines"
	"github.com/arthur-debert/simctl/pkg/runtimeconfig"
	"github.com/arthur-debert/simctl/pkg/sqlconn"
	"github.com/spf13/cobra"
)

// cancellable args can be stopped between steps.
type cancellable interface {
	pipeline.Args
	Cancel()
}

// runPipeline runs the named pipeline with progress output. An interrupt
// stops the run before its next step.
func runPipeline[A cancellable](cmd *cobra.Command, s *session, reg *pipeline.Registry[A], name string, args A) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		args.Cancel()
	}()

	runner := pipeline.NewRunner(reg, pipeline.Options{
		Hooks: []pipeline.Hook{
			pipeline.NewLogHook(logging.GetLogger("pipeline")),
			s.out.Progress(),
		},
	})
	result, err := runner.Run(name, args)
	if s.report || s.out.Format() == display.FormatJSON {
		if printErr := s.out.Result(result); printErr != nil {
			return printErr
		}
	} else {
		s.out.Outcome(result)
	}
	if err != nil && result != nil && s.out.Format() != display.FormatJSON {
		logger := logging.GetLogger("cmd")
		logger.Info().Msg(MsgPipelineFailedHint)
	}
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// siteFlags are the website settings shared by install and import.
type siteFlags struct {
	host     string
	identity string
	net4     bool
	classic  bool
	is32Bit  bool
}

func (f *siteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.host, "host", "", MsgFlagHost)
	cmd.Flags().StringVar(&f.identity, "identity", "", MsgFlagIdentity)
	cmd.Flags().BoolVar(&f.net4, "net4", true, MsgFlagNet4)
	cmd.Flags().BoolVar(&f.classic, "classic", false, MsgFlagClassic)
	cmd.Flags().BoolVar(&f.is32Bit, "32bit", false, MsgFlagIs32Bit)
}

// resolve fills unset flags from the instances configuration.
func (f siteFlags) resolve(cmd *cobra.Command, s *session, name string) siteFlags {
	inst := s.cfg.Instances
	out := f
	out.host = valueOr(f.host, s.cfg.HostName(name))
	out.identity = valueOr(f.identity, inst.AppPoolIdentity)
	out.net4 = boolOr(cmd, "net4", f.net4, inst.Net4)
	out.classic = boolOr(cmd, "classic", f.classic, inst.Classic)
	out.is32Bit = boolOr(cmd, "32bit", f.is32Bit, inst.Is32Bit)
	return out
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func boolOr(cmd *cobra.Command, flag string, v, fallback bool) bool {
	if cmd.Flags().Changed(flag) {
		return v
	}
	return fallback
}

func absPath(p string) string {
	if p == "" {
		return ""
	}
	p = paths.ExpandHome(p)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func newInstallCmd(load loader) *cobra.Command {
	var (
		productName string
		root        string
		site        siteFlags
	)
	cmd := &cobra.Command{
		Use:     "install <name>",
		Short:   MsgInstallShort,
		Long:    MsgInstallLong,
		Example: MsgInstallExample,
		GroupID: "sites",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(cmd)
			if err != nil {
				return err
			}
			if err := s.loadCatalog(); err != nil {
				return err
			}
			name := args[0]
			resolved := site.resolve(cmd, s, name)
			return runPipeline(cmd, s, s.registries.Install, pipelines.NameInstall, &pipelines.InstallArgs{
				Name:            name,
				HostName:        resolved.host,
				ProductName:     productName,
				RootPath:        valueOr(absPath(root), filepath.Join(s.cfg.Instances.Root, name)),
				AppPoolIdentity: resolved.identity,
				Net4:            resolved.net4,
				Classic:         resolved.classic,
				Is32Bit:         resolved.is32Bit,
			})
		},
	}
	cmd.Flags().StringVarP(&productName, "product", "p", "", MsgFlagProduct)
	cmd.Flags().StringVar(&root, "root", "", MsgFlagRoot)
	site.register(cmd)
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.RegisterFlagCompletionFunc("product", productCompletion(load))
	return cmd
}

func newDeleteCmd(load loader) *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:               "delete <name>",
		Short:             MsgDeleteShort,
		Long:              MsgDeleteLong,
		GroupID:           "sites",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: instanceCompletion(load),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(cmd)
			if err != nil {
				return err
			}
			return runPipeline(cmd, s, s.registries.Delete, pipelines.NameDelete, &pipelines.DeleteArgs{
				Name:     args[0],
				RootPath: absPath(root),
			})
		},
	}
	cmd.Flags().StringVar(&root, "root", "", MsgFlagRoot)
	return cmd
}

func newReinstallCmd(load loader) *cobra.Command {
	var productName string
	cmd := &cobra.Command{
		Use:               "reinstall <name>",
		Short:             MsgReinstallShort,
		Long:              MsgReinstallLong,
		GroupID:           "sites",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: instanceCompletion(load),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(cmd)
			if err != nil {
				return err
			}
			if err := s.loadCatalog(); err != nil {
				return err
			}
			return runPipeline(cmd, s, s.registries.Reinstall, pipelines.NameReinstall, &pipelines.ReinstallArgs{
				Name:        args[0],
				ProductName: productName,
			})
		},
	}
	cmd.Flags().StringVarP(&productName, "product", "p", "", MsgFlagProduct)
	_ = cmd.RegisterFlagCompletionFunc("product", productCompletion(load))
	return cmd
}

func newImportCmd(load loader) *cobra.Command {
	var (
		productName string
		site        siteFlags
		creds       sqlconn.Credentials
		suffix      int
	)
	cmd := &cobra.Command{
		Use:     "import <name> <root>",
		Short:   MsgImportShort,
		Long:    MsgImportLong,
		GroupID: "sites",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			resolved := site.resolve(cmd, s, name)
			sql := s.cfg.SQL
			return runPipeline(cmd, s, s.registries.Import, pipelines.NameImport, &pipelines.ImportArgs{
				Name:            name,
				HostName:        resolved.host,
				RootPath:        absPath(args[1]),
				ProductName:     productName,
				AppPoolIdentity: resolved.identity,
				Net4:            resolved.net4,
				Classic:         resolved.classic,
				Is32Bit:         resolved.is32Bit,
				Credentials: sqlconn.Credentials{
					DataSource: valueOr(creds.DataSource, sql.DataSource),
					UserID:     valueOr(creds.UserID, sql.UserID),
					Password:   valueOr(creds.Password, sql.Password),
				},
				DatabaseSuffix: suffix,
			})
		},
	}
	cmd.Flags().StringVarP(&productName, "product", "p", "", MsgFlagProduct)
	site.register(cmd)
	cmd.Flags().StringVar(&creds.DataSource, "data-source", "", MsgFlagDataSource)
	cmd.Flags().StringVar(&creds.UserID, "user", "", MsgFlagUserID)
	cmd.Flags().StringVar(&creds.Password, "password", "", MsgFlagPassword)
	cmd.Flags().IntVar(&suffix, "suffix", pipelines.NoDatabaseSuffix, MsgFlagSuffix)
	return cmd
}

func newInstancesCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "instances",
		Short:   MsgInstancesShort,
		GroupID: "sites",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgInstancesListShort,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(cmd)
			if err != nil {
				return err
			}
			instances, err := s.sites.List()
			if err != nil {
				return err
			}
			return s.out.Instances(instances)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:               "databases <instance>",
		Short:             MsgInstancesDatabasesShort,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: instanceCompletion(load),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(cmd)
			if err != nil {
				return err
			}
			inst, err := s.sites.Lookup(args[0])
			if err != nil {
				return err
			}
			dbs, err := runtimeconfig.New(inst.WebRootPath, runtimeconfig.Options{FS: s.fs}).Databases()
			if err != nil {
				return err
			}
			return s.out.Databases(dbs)
		},
	})
	return cmd
}

func newProductsCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Short:   MsgProductsShort,
		GroupID: "catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgProductsListShort,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(cmd)
			if err != nil {
				return err
			}
			if err := s.loadCatalog(); err != nil {
				return err
			}
			return s.out.Products(s.catalog.Products())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <product>",
		Short: MsgProductsShowShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(cmd)
			if err != nil {
				return err
			}
			if err := s.loadCatalog(); err != nil {
				return err
			}
			ref := strings.Join(args, " ")
			snap := s.catalog.Snapshot()
			pr, ok := snap.Lookup(ref)
			if !ok {
				return errors.Newf(errors.ErrProductNotFound, "product %q is not in the repository", ref).
					WithDetail("product", ref)
			}
			if !pr.IsStandalone {
				logger := logging.GetLogger("cmd")
				logger.Debug().Msgf(MsgNotStandalone, pr.String())
				return s.out.Product(pr, nil)
			}
			return s.out.Product(pr, snap.CompatibleModules(pr))
		},
		ValidArgsFunction: productCompletion(load),
	})

	var name, ver, rev string
	find := &cobra.Command{
		Use:   "find",
		Short: MsgProductsFindShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(cmd)
			if err != nil {
				return err
			}
			if err := s.loadCatalog(); err != nil {
				return err
			}
			return s.out.Products(s.catalog.GetProducts(name, ver, rev))
		},
	}
	find.Flags().StringVar(&name, "name", "", MsgFlagName)
	find.Flags().StringVar(&ver, "version", "", MsgFlagVersion)
	find.Flags().StringVar(&rev, "revision", "", MsgFlagRevision)
	cmd.AddCommand(find)

	return cmd
}

// productCompletion provides shell completion for product names
func productCompletion(load loader) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		s, err := load(cmd)
		if err != nil || s.loadCatalog() != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var names []string
		for _, pr := range s.catalog.Products() {
			if strings.HasPrefix(strings.ToLower(pr.String()), strings.ToLower(toComplete)) {
				names = append(names, pr.String())
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

// instanceCompletion provides shell completion for instance names
func instanceCompletion(load loader) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		s, err := load(cmd)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		instances, err := s.sites.List()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var names []string
		for _, inst := range instances {
			if strings.HasPrefix(inst.Name, toComplete) {
				names = append(names, inst.Name)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
