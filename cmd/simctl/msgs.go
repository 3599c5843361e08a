package simctl

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort               = "Provision local site instances from a product repository"
	MsgProductsShort           = "Browse the product catalog"
	MsgProductsListShort       = "List every product in the repository"
	MsgProductsShowShort       = "Show a product and its compatible modules"
	MsgProductsFindShort       = "Find products by name, version and revision"
	MsgInstallShort            = "Install a new instance from a standalone product"
	MsgDeleteShort             = "Delete an instance, its files and registry entry"
	MsgDeleteLong              = "Delete stops the instance, removes the website and application pool, drops the registry entry and deletes the instance folder. Anything already gone is skipped."
	MsgReinstallShort          = "Delete an instance and install its product again"
	MsgReinstallLong           = "Reinstall removes an instance and installs it again from the product recorded in the registry, or from --product. The product is resolved before anything is deleted."
	MsgImportShort             = "Register an existing instance folder"
	MsgInstancesShort          = "Inspect provisioned instances"
	MsgInstancesListShort      = "List provisioned instances"
	MsgInstancesDatabasesShort = "List the connection strings of an instance"
	MsgConfigShort             = "Inspect and change instance configuration"
	MsgConfigEffectiveShort    = "Print the effective configuration of an instance"
	MsgConfigGetShort          = "Print one effective setting or sc.variable"
	MsgConfigSetShort          = "Set an element value in an instance web.config"
	MsgConfigDiffShort         = "Show what include files change in web.config"
	MsgConfigDefaultsShort     = "Print the built-in simctl settings"
	MsgVersionShort            = "Print version information"
	MsgManShort                = "Generate man pages"
	MsgCompletionShort         = "Generate shell completion script"

	// Status messages
	MsgVersionFormat      = "simctl version %s\n  commit: %s\n  built:  %s\n"
	MsgValueSet           = "%s = %q in %s"
	MsgNoDifferences      = "No differences"
	MsgDiffTruncated      = "Output truncated; use --max-lines 0 for the full diff"
	MsgProductsLoaded     = "%d products in %s"
	MsgNoRepository       = "no product repository configured; use --repository or set repository in %s"
	MsgNotStandalone      = "%s is a module; only standalone products list compatible modules"
	MsgPipelineFailedHint = "re-run with -v for step logs, or --report for the step table"

	// Flag descriptions
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagRepository = "Product repository directory (overrides repository)"
	MsgFlagConfig     = "Config file (default is $XDG_CONFIG_HOME/simctl/config.toml)"
	MsgFlagFormat     = "Output format: auto, term, text or json"
	MsgFlagReport     = "Print the full step table after a pipeline run"
	MsgFlagProduct    = "Product to install, e.g. \"Sitecore CMS 8.1 rev. 151003\""
	MsgFlagRoot       = "Instance root directory"
	MsgFlagHost       = "Host name bound to the website"
	MsgFlagIdentity   = "Application pool identity"
	MsgFlagNet4       = "Run the application pool on .NET 4"
	MsgFlagClassic    = "Use the classic pipeline mode"
	MsgFlagIs32Bit    = "Enable 32-bit applications"
	MsgFlagName       = "Filter by product name"
	MsgFlagVersion    = "Filter by version"
	MsgFlagRevision   = "Filter by revision"
	MsgFlagDataSource = "SQL server the imported databases live on"
	MsgFlagUserID     = "SQL user id"
	MsgFlagPassword   = "SQL password"
	MsgFlagSuffix     = "Append _<n> to every initial catalog (-1 keeps names)"
	MsgFlagVariable   = "Read an sc.variable instead of a setting"
	MsgFlagMaxLines   = "Truncate the diff after this many lines (0 for no limit)"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/install-long.txt
	msgInstallLongRaw string
	MsgInstallLong = strings.TrimSpace(msgInstallLongRaw)

	//go:embed msgs/install-example.txt
	msgInstallExampleRaw string
	MsgInstallExample = strings.TrimRight(msgInstallExampleRaw, "\n")

	//go:embed msgs/import-long.txt
	msgImportLongRaw string
	MsgImportLong = strings.TrimSpace(msgImportLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate = strings.TrimSpace(msgUsageTemplateRaw)
)
