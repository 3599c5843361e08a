package simctl

import (
	"fmt"
	"os"

	"github.com/arthur-debert/simctl/internal/version"
	"github.com/arthur-debert/simctl/pkg/catalog"
	"github.com/arthur-debert/simctl/pkg/config"
	"github.com/arthur-debert/simctl/pkg/display"
	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/lifecycle"
	"github.com/arthur-debert/simctl/pkg/logging"
	"github.com/arthur-debert/simctl/pkg/paths"
	"github.com/arthur-debert/simctl/pkg/pipelines"
	"github.com/arthur-debert/simctl/pkg/product"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	verbosity  int
	repository string
	configFile string
	format     string
	report     bool
}

// session holds the collaborators commands run against. It is built on first
// use so that version and completion work without a valid configuration.
type session struct {
	cfg        *config.Config
	fs         afero.Fs
	out        *display.Printer
	catalog    *catalog.Catalog
	sites      *lifecycle.SiteStore
	registries *pipelines.Registries
	report     bool

	catalogLoaded bool
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	opts := &rootOptions{}
	var current *session

	// load builds the session once per command tree
	load := func(cmd *cobra.Command) (*session, error) {
		if current != nil {
			return current, nil
		}
		s, err := newSession(cmd, opts)
		if err != nil {
			return nil, err
		}
		current = s
		return s, nil
	}

	rootCmd := &cobra.Command{
		Use:     "simctl",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLoggerTo(cmd.ErrOrStderr(), opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&opts.repository, "repository", "", MsgFlagRepository)
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().BoolVar(&opts.report, "report", false, MsgFlagReport)

	rootCmd.AddGroup(&cobra.Group{ID: "sites", Title: "INSTANCES:"})
	rootCmd.AddGroup(&cobra.Group{ID: "catalog", Title: "CATALOG:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newInstallCmd(load))
	rootCmd.AddCommand(newDeleteCmd(load))
	rootCmd.AddCommand(newReinstallCmd(load))
	rootCmd.AddCommand(newImportCmd(load))
	rootCmd.AddCommand(newInstancesCmd(load))
	rootCmd.AddCommand(newConfigCmd(load))
	rootCmd.AddCommand(newProductsCmd(load))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

// loader returns the shared session for a command.
type loader func(cmd *cobra.Command) (*session, error)

func newSession(cmd *cobra.Command, opts *rootOptions) (*session, error) {
	format, err := display.ParseFormat(opts.format)
	if err != nil {
		return nil, err
	}

	overrides := map[string]interface{}{}
	if opts.repository != "" {
		overrides["repository"] = opts.repository
	}
	cfg, err := config.Load(config.LoadOptions{ConfigFile: opts.configFile, Overrides: overrides})
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	cat := catalog.New(catalog.Options{
		FS:         fs,
		Parser:     product.NewParser(cfg.Catalog.StandaloneProducts),
		Extensions: cfg.Catalog.Extensions,
	})
	sites := lifecycle.NewSiteStore(lifecycle.SiteStoreOptions{FS: fs, Path: cfg.State.SitesFile})
	deps := &pipelines.Deps{
		FS:        fs,
		Products:  cat,
		Instances: sites,
		Registry:  lifecycle.NewFileRegistry(lifecycle.FileRegistryOptions{FS: fs, Path: cfg.State.RegistryFile}),
		Security:  lifecycle.NewMemoryACL(lifecycle.MemoryACLOptions{FS: fs}),
	}
	registries, err := pipelines.Default(deps)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("cmd")
	logger.Debug().
		Str("repository", cfg.Repository).
		Str("sites", cfg.State.SitesFile).
		Str("registry", cfg.State.RegistryFile).
		Msg("Session ready")

	return &session{
		cfg:        cfg,
		fs:         fs,
		out:        display.NewPrinter(cmd.OutOrStdout(), format),
		catalog:    cat,
		sites:      sites,
		registries: registries,
		report:     opts.report,
	}, nil
}

// loadCatalog scans the repository once per session.
func (s *session) loadCatalog() error {
	if s.catalogLoaded {
		return nil
	}
	if s.cfg.Repository == "" {
		return errors.Newf(errors.ErrConfigValid, MsgNoRepository, paths.New().ConfigFile()).
			WithDetail("key", "repository")
	}
	report, err := s.catalog.Refresh(catalog.DirSource(s.cfg.Repository), nil)
	if err != nil {
		return err
	}
	logger := logging.GetLogger("cmd")
	logger.Info().
		Int("scanned", report.Scanned).
		Int("added", report.Added).
		Int("duplicates", report.Duplicates).
		Msg("Catalog loaded")
	s.catalogLoaded = true
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "man <dir>",
		Short:  MsgManShort,
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(args[0], 0755); err != nil {
				return errors.Wrap(err, errors.ErrDirCreate, "failed to create man page directory").
					WithDetail("path", args[0])
			}
			header := &doc.GenManHeader{Title: "SIMCTL", Section: "1"}
			return doc.GenManTree(cmd.Root(), header, args[0])
		},
	}
}
