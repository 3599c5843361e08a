package lifecycle

import (
	"os"
	"strings"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/logging"
	"github.com/rs/zerolog"
)

// Account is a resolved security principal.
type Account struct {
	Name string
	SID  string
}

// Equal compares by SID when both sides have one, by name otherwise.
func (a Account) Equal(b Account) bool {
	if a.SID != "" && b.SID != "" {
		return a.SID == b.SID
	}
	return strings.EqualFold(a.Name, b.Name)
}

func (a Account) String() string { return a.Name }

// Well-known principals.
var (
	NetworkService = Account{Name: `NT AUTHORITY\NETWORK SERVICE`, SID: "S-1-5-20"}
	LocalSystem    = Account{Name: `NT AUTHORITY\SYSTEM`, SID: "S-1-5-18"}
	LocalService   = Account{Name: `NT AUTHORITY\LOCAL SERVICE`, SID: "S-1-5-19"}
	Everyone       = Account{Name: "Everyone", SID: "S-1-1-0"}
)

var wellKnownAliases = []struct {
	suffixes []string
	account  Account
}{
	{[]string{"NetworkService", "Network Service"}, NetworkService},
	{[]string{"LocalSystem", "Local System"}, LocalSystem},
	{[]string{"LocalService", "Local Service"}, LocalService},
}

// AccountLookup translates a machine or domain qualified account name.
type AccountLookup func(qualified string) (Account, error)

// IdentityResolverOptions configures an IdentityResolver.
type IdentityResolverOptions struct {
	// Machine qualifies bare account names; defaults to the host name.
	Machine string
	Lookup  AccountLookup
	Logger  zerolog.Logger
}

// IdentityResolver turns configured identity names into accounts: well-known
// aliases first, then a qualified lookup, then the raw qualified name.
type IdentityResolver struct {
	machine string
	lookup  AccountLookup
	logger  zerolog.Logger
}

// NewIdentityResolver creates a resolver.
func NewIdentityResolver(opts IdentityResolverOptions) *IdentityResolver {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("lifecycle.identity")
	}
	machine := opts.Machine
	if machine == "" {
		if host, err := os.Hostname(); err == nil {
			machine = strings.ToUpper(host)
		} else {
			machine = "LOCALHOST"
		}
	}
	return &IdentityResolver{machine: machine, lookup: opts.Lookup, logger: logger}
}

// Qualify prefixes bare names with the machine name and rewrites ".\name".
func (r *IdentityResolver) Qualify(name string) string {
	switch {
	case strings.HasPrefix(name, `.\`):
		return r.machine + `\` + strings.TrimLeft(name[2:], `\`)
	case !strings.Contains(name, `\`):
		return r.machine + `\` + name
	default:
		return name
	}
}

// Resolve returns the account for name.
func (r *IdentityResolver) Resolve(name string) (Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Account{}, errors.New(errors.ErrInvalidInput, "identity name is required")
	}

	lower := strings.ToLower(name)
	for _, alias := range wellKnownAliases {
		for _, suffix := range alias.suffixes {
			if strings.HasSuffix(lower, strings.ToLower(suffix)) {
				return alias.account, nil
			}
		}
	}

	qualified := r.Qualify(name)
	if r.lookup != nil {
		account, err := r.lookup(qualified)
		if err == nil && account.Name != "" {
			return account, nil
		}
		r.logger.Warn().Err(err).Str("identity", qualified).Msg("Account lookup failed, using raw account name")
	}
	return Account{Name: qualified}, nil
}
