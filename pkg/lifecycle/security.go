package lifecycle

import (
	"path"
	"strings"
	"sync"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Rights is a set of filesystem access rights.
type Rights uint32

const (
	RightRead Rights = 1 << iota
	RightWrite
	RightExecute
	RightDelete
	RightChangePermissions

	RightModify      = RightRead | RightWrite | RightExecute | RightDelete
	RightFullControl = RightModify | RightChangePermissions
)

// SecurityProvider manages filesystem access control.
type SecurityProvider interface {
	// EnsureFullControl grants identity full control of path unless it
	// already has it.
	EnsureFullControl(path, identity string) error
	// HasPermission reports whether identity holds all of rights on path.
	HasPermission(path, identity string, rights Rights) (bool, error)
}

type accessRule struct {
	account Account
	rights  Rights
}

// MemoryACLOptions configures a MemoryACL.
type MemoryACLOptions struct {
	FS       afero.Fs
	Resolver *IdentityResolver
	Logger   zerolog.Logger
}

// MemoryACL is a SecurityProvider that checks paths against an afero
// filesystem and keeps access rules in memory. Rules on a directory apply to
// everything below it.
type MemoryACL struct {
	mu       sync.RWMutex
	fs       afero.Fs
	resolver *IdentityResolver
	logger   zerolog.Logger
	rules    map[string][]accessRule
	locked   map[string]bool
}

var _ SecurityProvider = (*MemoryACL)(nil)

// NewMemoryACL creates an empty access table.
func NewMemoryACL(opts MemoryACLOptions) *MemoryACL {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("lifecycle.security")
	}
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = NewIdentityResolver(IdentityResolverOptions{Logger: logger})
	}
	return &MemoryACL{
		fs:       fs,
		resolver: resolver,
		logger:   logger,
		rules:    make(map[string][]accessRule),
		locked:   make(map[string]bool),
	}
}

func aclKey(p string) string {
	return normalizePath(p)
}

// Grant adds a rule without checking existing ones.
func (m *MemoryACL) Grant(p, identity string, rights Rights) error {
	account, err := m.resolver.Resolve(identity)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addRule(p, account, rights)
	return nil
}

func (m *MemoryACL) addRule(p string, account Account, rights Rights) {
	k := aclKey(p)
	if m.locked[k] {
		return
	}
	m.rules[k] = append(m.rules[k], accessRule{account: account, rights: rights})
}

// Lock makes later grants on p ineffective, as a read-only volume would.
func (m *MemoryACL) Lock(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked[aclKey(p)] = true
}

func (m *MemoryACL) kind(p string) (string, error) {
	info, err := m.fs.Stat(p)
	if err != nil {
		return "", errors.Newf(errors.ErrFileNotFound, "file or directory not found: %s", p).
			WithDetail("path", p)
	}
	if info.IsDir() {
		return "folder", nil
	}
	return "file", nil
}

// allowed checks the rules on p and its ancestors. Rules for Everyone count
// for every account.
func (m *MemoryACL) allowed(p string, account Account, want Rights) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k := aclKey(p)
	for {
		for _, rule := range m.rules[k] {
			if (rule.account.Equal(account) || rule.account.Equal(Everyone)) && rule.rights&want == want {
				return true
			}
		}
		parent := path.Dir(k)
		if parent == k || parent == "." || k == "" {
			return false
		}
		k = parent
	}
}

func (m *MemoryACL) HasPermission(p, identity string, rights Rights) (bool, error) {
	if _, err := m.kind(p); err != nil {
		return false, err
	}
	account, err := m.resolver.Resolve(identity)
	if err != nil {
		return false, err
	}
	return m.allowed(p, account, rights), nil
}

func (m *MemoryACL) EnsureFullControl(p, identity string) error {
	if strings.TrimSpace(p) == "" {
		return errors.New(errors.ErrInvalidInput, "path is required")
	}
	kind, err := m.kind(p)
	if err != nil {
		return err
	}
	account, err := m.resolver.Resolve(identity)
	if err != nil {
		return err
	}
	if m.allowed(p, account, RightFullControl) {
		return nil
	}

	m.logger.Info().
		Str("identity", account.Name).
		Str("path", p).
		Msgf("Granting full access to the %s", kind)

	m.mu.Lock()
	m.addRule(p, account, RightFullControl)
	m.mu.Unlock()

	if !m.allowed(p, account, RightFullControl) {
		return errors.Newf(errors.ErrPermission,
			"the Full Control access to the '%s' %s isn't permitted for %s. Please fix it and then restart the process",
			p, kind, account.Name).
			WithDetail("path", p).
			WithDetail("identity", account.Name)
	}
	return nil
}
