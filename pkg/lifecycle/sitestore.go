package lifecycle

import (
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/logging"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// siteState is the on-disk layout of the sites file.
type siteState struct {
	NextID int64      `toml:"next_id"`
	Sites  []Instance `toml:"site"`
}

// SiteStoreOptions configures a SiteStore.
type SiteStoreOptions struct {
	FS     afero.Fs
	Path   string
	Logger zerolog.Logger
	Now    func() time.Time
}

// SiteStore is an InstanceProvider that keeps sites in a TOML file. Every
// operation reads and rewrites the whole file under a mutex.
type SiteStore struct {
	mu     sync.Mutex
	fs     afero.Fs
	path   string
	logger zerolog.Logger
	now    func() time.Time
}

var _ InstanceProvider = (*SiteStore)(nil)

// NewSiteStore creates a store backed by opts.Path.
func NewSiteStore(opts SiteStoreOptions) *SiteStore {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("lifecycle.sites")
	}
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SiteStore{fs: fs, path: opts.Path, logger: logger, now: now}
}

func (s *SiteStore) load() (*siteState, error) {
	state := &siteState{NextID: 1}
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if exists, _ := afero.Exists(s.fs, s.path); !exists {
			return state, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read sites file").
			WithDetail("path", s.path)
	}
	if err := toml.Unmarshal(data, state); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse sites file").
			WithDetail("path", s.path)
	}
	if state.NextID < 1 {
		state.NextID = 1
	}
	return state, nil
}

func (s *SiteStore) save(state *siteState) error {
	data, err := toml.Marshal(state)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode sites file")
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create state directory").
			WithDetail("path", filepath.Dir(s.path))
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write sites file").
			WithDetail("path", s.path)
	}
	return nil
}

// ChooseAppPoolName returns name, or name_1, name_2, ... for the first one
// not already taken.
func ChooseAppPoolName(name string, taken func(string) bool) string {
	candidate := name
	for i := 1; taken(candidate); i++ {
		candidate = name + "_" + strconv.Itoa(i)
	}
	return candidate
}

// Create provisions a site and its application pool, and starts it.
func (s *SiteStore) Create(cfg SiteConfig) (Instance, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return Instance{}, errors.New(errors.ErrInvalidInput, "site name is required")
	}
	if strings.TrimSpace(cfg.WebRootPath) == "" {
		return Instance{}, errors.New(errors.ErrInvalidInput, "web root path is required").
			WithDetail("site", cfg.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return Instance{}, err
	}
	if i := findByName(state, cfg.Name); i >= 0 {
		return Instance{}, errors.Newf(errors.ErrInstanceExists, "site %q already exists", cfg.Name).
			WithDetail("site", cfg.Name)
	}

	pools := make(map[string]bool, len(state.Sites))
	for _, site := range state.Sites {
		pools[strings.ToLower(site.AppPool.Name)] = true
	}
	poolName := ChooseAppPoolName(cfg.Name, func(n string) bool { return pools[strings.ToLower(n)] })

	hostNames := cfg.HostNames
	if len(hostNames) == 0 {
		hostNames = []string{cfg.Name}
	}
	identity := cfg.AppPoolIdentity
	if strings.TrimSpace(identity) == "" {
		identity = string(DefaultAppPoolIdentity)
	}

	inst := Instance{
		ID:          state.NextID,
		Name:        cfg.Name,
		HostNames:   append([]string(nil), hostNames...),
		RootPath:    cfg.RootPath,
		WebRootPath: cfg.WebRootPath,
		DataFolder:  cfg.DataFolder,
		AppPool: AppPool{
			Name:         poolName,
			Identity:     identity,
			IdentityType: GetIdentityType(identity),
			Net4:         cfg.Net4,
			Classic:      cfg.Classic,
			Is32Bit:      cfg.Is32Bit,
		},
		State:     StateStarted,
		CreatedAt: s.now().UTC(),
	}
	state.NextID++
	state.Sites = append(state.Sites, inst)

	if err := s.save(state); err != nil {
		return Instance{}, err
	}

	s.logger.Info().
		Int64("id", inst.ID).
		Str("site", inst.Name).
		Str("app_pool", poolName).
		Strs("hosts", inst.HostNames).
		Msg("Site created")
	return inst, nil
}

func findByName(state *siteState, name string) int {
	for i, site := range state.Sites {
		if strings.EqualFold(site.Name, name) {
			return i
		}
	}
	return -1
}

func findByID(state *siteState, id int64) int {
	for i, site := range state.Sites {
		if site.ID == id {
			return i
		}
	}
	return -1
}

func notFound(name string) error {
	return errors.Newf(errors.ErrInstanceNotFound, "site %q not found", name).
		WithDetail("site", name)
}

// Lookup finds a site by name, case-insensitively.
func (s *SiteStore) Lookup(name string) (Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return Instance{}, err
	}
	if i := findByName(state, name); i >= 0 {
		return state.Sites[i], nil
	}
	return Instance{}, notFound(name)
}

// LookupByPath finds the site whose root or web root is path.
func (s *SiteStore) LookupByPath(path string) (Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return Instance{}, err
	}
	for _, site := range state.Sites {
		if SamePath(site.RootPath, path) || SamePath(site.WebRootPath, path) {
			return site, nil
		}
	}
	return Instance{}, errors.Newf(errors.ErrInstanceNotFound, "no site at %q", path).
		WithDetail("path", path)
}

// List returns all sites in creation order.
func (s *SiteStore) List() ([]Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return nil, err
	}
	return state.Sites, nil
}

// update applies fn to the stored record for inst and saves.
func (s *SiteStore) update(inst Instance, op string, fn func(*Instance)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	i := findByID(state, inst.ID)
	if i < 0 {
		return notFound(inst.Name)
	}
	fn(&state.Sites[i])
	if err := s.save(state); err != nil {
		return err
	}
	s.logger.Debug().Str("site", inst.Name).Str("op", op).Msg("Site updated")
	return nil
}

func (s *SiteStore) Start(inst Instance) error {
	return s.update(inst, "start", func(i *Instance) { i.State = StateStarted })
}

func (s *SiteStore) Stop(inst Instance) error {
	return s.update(inst, "stop", func(i *Instance) {
		i.State = StateStopped
		i.ProcessIDs = nil
	})
}

func (s *SiteStore) Recycle(inst Instance) error {
	return s.update(inst, "recycle", func(i *Instance) {
		i.RecycledAt = s.now().UTC()
		i.ProcessIDs = nil
	})
}

// ProcessIDs returns the worker processes recorded for a running site.
func (s *SiteStore) ProcessIDs(inst Instance) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return nil, err
	}
	i := findByID(state, inst.ID)
	if i < 0 {
		return nil, notFound(inst.Name)
	}
	if state.Sites[i].State != StateStarted {
		return nil, nil
	}
	return state.Sites[i].ProcessIDs, nil
}

// Delete removes the site and its application pool.
func (s *SiteStore) Delete(inst Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	i := findByID(state, inst.ID)
	if i < 0 {
		return notFound(inst.Name)
	}
	state.Sites = append(state.Sites[:i], state.Sites[i+1:]...)
	if err := s.save(state); err != nil {
		return err
	}
	s.logger.Info().Str("site", inst.Name).Msg("Site deleted")
	return nil
}
